package client

import "strength-tracker/internal/models"

// View identifiers, in presentation order. The first visible view is the
// default active view for a session.
const (
	ViewLive     = "live"
	ViewExcel    = "excel"
	ViewTerminal = "terminal"
	ViewHistory  = "history"
)

// AllViews is the ordered full view set.
var AllViews = []string{ViewLive, ViewExcel, ViewTerminal, ViewHistory}

// VisibleViews resolves which views a user may open: admins see everything
// regardless of their stored permission set, everyone else gets the ordered
// intersection of their permissions with the known views.
func VisibleViews(profile models.Profile) []string {
	if profile.Role == models.RoleAdmin {
		return append([]string(nil), AllViews...)
	}
	visible := make([]string, 0, len(AllViews))
	for _, view := range AllViews {
		for _, perm := range profile.Permissions {
			if perm == view {
				visible = append(visible, view)
				break
			}
		}
	}
	return visible
}
