package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"strength-tracker/internal/models"
	"strength-tracker/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type APIHandler struct {
	snapshots store.SnapshotStore
	users     store.UserStore
	jwtSecret []byte
	hub       *Hub
}

func SetupRoutes(r *gin.RouterGroup, db *gorm.DB, jwtSecret string) *APIHandler {
	handler := &APIHandler{
		snapshots: store.NewSnapshotStore(db),
		users:     store.NewUserStore(db),
		jwtSecret: []byte(jwtSecret),
		hub:       NewHub(),
	}

	r.POST("/login", handler.Login)

	authed := r.Group("", handler.RequireAuth())
	{
		authed.GET("/live-data", handler.GetLiveData)
		authed.GET("/live-stream", handler.LiveStream)
		// The live and excel views render the same table the history view
		// does, so any of the three grants access.
		authed.GET("/history", handler.RequireView("history", "live", "excel"), handler.GetHistory)
		authed.GET("/history/export", handler.RequireView("excel"), handler.ExportHistory)

		admin := authed.Group("", handler.RequireAdmin())
		{
			admin.GET("/users", handler.ListUsers)
			admin.POST("/users", handler.CreateUser)
			admin.DELETE("/users/:id", handler.DeleteUser)
			admin.POST("/ingest", handler.Ingest)
		}
	}

	return handler
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Secret   string `json:"secret" binding:"required"`
}

type loginResponse struct {
	models.Profile
	Token string `json:"token"`
}

func (h *APIHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and secret are required"})
		return
	}

	user, err := h.users.Authenticate(req.Username, req.Secret)
	if errors.Is(err, store.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		h.storageError(c, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		logrus.WithError(err).Error("failed to sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token signing failed"})
		return
	}
	c.JSON(http.StatusOK, loginResponse{Profile: user.Profile(), Token: token})
}

// GetLiveData serves the newest snapshot payload, or the empty-state payload
// while the log is empty.
func (h *APIHandler) GetLiveData(c *gin.Context) {
	snapshot, err := h.snapshots.Latest()
	if err != nil {
		h.storageError(c, err)
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusOK, models.EmptyPayload())
		return
	}
	payload, err := models.DecodePayload(snapshot.Payload)
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// periodWindow maps the API period vocabulary onto store windows.
func periodWindow(period string) (time.Duration, bool) {
	switch period {
	case "week":
		return store.WindowWeek, true
	case "month":
		return store.WindowMonth, true
	}
	return 0, false
}

func (h *APIHandler) GetHistory(c *gin.Context) {
	window, ok := periodWindow(c.Query("period"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be week or month"})
		return
	}
	entries, err := h.snapshots.Range(window)
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Ingest appends one engine-produced snapshot and pushes it to stream
// subscribers.
func (h *APIHandler) Ingest(c *gin.Context) {
	var payload models.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed snapshot payload"})
		return
	}
	if err := payload.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.snapshots.Append(payload)
	if err != nil {
		h.storageError(c, err)
		return
	}
	h.hub.Broadcast(payload)
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *APIHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List()
	if err != nil {
		h.storageError(c, err)
		return
	}
	profiles := make([]models.Profile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.Profile())
	}
	c.JSON(http.StatusOK, profiles)
}

type createUserRequest struct {
	Username    string   `json:"username" binding:"required"`
	Secret      string   `json:"secret" binding:"required"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func (h *APIHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and secret are required"})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleUser {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be admin or user"})
		return
	}

	user, err := h.users.Create(req.Username, req.Secret, req.Role, req.Permissions)
	if errors.Is(err, store.ErrUsernameTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
		return
	}
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

func (h *APIHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	err = h.users.Delete(uint(id))
	switch {
	case errors.Is(err, store.ErrProtectedUser):
		c.JSON(http.StatusForbidden, gin.H{"error": "the admin account cannot be deleted"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case err != nil:
		h.storageError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	}
}

func (h *APIHandler) storageError(c *gin.Context, err error) {
	logrus.WithError(err).Error("storage failure")
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
}
