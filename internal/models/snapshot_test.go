package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyPayload(t *testing.T) {
	p := EmptyPayload()

	assert.Equal(t, WaitingLabel, p.Metadata.LastUpdate)
	assert.Empty(t, p.Metadata.TimestampFull)
	for _, tf := range Timeframes {
		assert.NotNil(t, p.Series.ByTimeframe(tf))
		assert.Empty(t, p.Series.ByTimeframe(tf))
		assert.Empty(t, p.Scores.ByTimeframe(tf))
	}
	assert.Equal(t, "...", p.Setups.Setup1h)
	assert.Equal(t, "...", p.Setups.Setup4h)
	assert.Equal(t, "...", p.Setups.SetupDaily)

	assert.NoError(t, p.Validate())
}

func TestPayloadValidate_KeySetMismatch(t *testing.T) {
	p := EmptyPayload()
	p.Series.H1 = map[string]float64{"EUR": 0.5, "USD": -0.2}
	p.Scores.H1 = map[string]int{"EUR": 3}
	assert.Error(t, p.Validate())

	// Same sizes but different symbols is still a mismatch.
	p.Scores.H1 = map[string]int{"EUR": 3, "JPY": -1}
	assert.Error(t, p.Validate())

	p.Scores.H1 = map[string]int{"EUR": 3, "USD": -2}
	assert.NoError(t, p.Validate())
}

func TestDecodePayload_RoundTrip(t *testing.T) {
	p := EmptyPayload()
	p.Series.H4 = map[string]float64{"GBP": 1.25}
	p.Scores.H4 = map[string]int{"GBP": 7}

	blob, err := json.Marshal(p)
	require.NoError(t, err)

	decoded, err := DecodePayload(string(blob))
	require.NoError(t, err)
	assert.Equal(t, 1.25, decoded.Series.H4["GBP"])
	assert.Equal(t, 7, decoded.Scores.H4["GBP"])
}

func TestDecodePayload_Malformed(t *testing.T) {
	_, err := DecodePayload("{not json")
	assert.Error(t, err)
}

func TestUserPermissions(t *testing.T) {
	var u User
	u.SetPermissions([]string{"live", "history"})
	assert.Equal(t, []string{"live", "history"}, u.PermissionList())

	u.SetPermissions(nil)
	assert.Equal(t, []string{}, u.PermissionList())

	u.Permissions = "garbage"
	assert.Equal(t, []string{}, u.PermissionList())
}

func TestUserProfileHidesSecrets(t *testing.T) {
	u := User{ID: 4, Username: "ana", PasswordHash: "x", Role: RoleUser}
	u.SetPermissions([]string{"live"})

	encoded, err := json.Marshal(u.Profile())
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), `"x"`)
	assert.Contains(t, string(encoded), `"permissions":["live"]`)
}
