package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/services"
)

// AdminUserHandler handles account moderation
type AdminUserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewAdminUserHandler creates a new AdminUserHandler
func NewAdminUserHandler(userService services.UserServicer, auditService services.AuditServicer) *AdminUserHandler {
	return &AdminUserHandler{userService: userService, auditService: auditService}
}

// BanStatusResponse reports a user's ban state
type BanStatusResponse struct {
	ID       string `json:"id"`
	IsBanned bool   `json:"is_banned"`
}

// BanUser bans a user.
// @Summary     Ban a user (admin)
// @Description Ban a user. Their refresh token is revoked; access tokens expire on their own.
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} BanStatusResponse "User banned"
// @Failure     400 {object} ErrorResponse "Invalid user ID or self-ban"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not an admin"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/users/{id}/ban [post]
func (h *AdminUserHandler) BanUser(c *gin.Context) {
	h.setBanned(c, true)
}

// UnbanUser lifts a ban.
// @Summary     Unban a user (admin)
// @Description Lift a ban so the user can log in again
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} BanStatusResponse "User unbanned"
// @Failure     400 {object} ErrorResponse "Invalid user ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not an admin"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/users/{id}/unban [post]
func (h *AdminUserHandler) UnbanUser(c *gin.Context) {
	h.setBanned(c, false)
}

func (h *AdminUserHandler) setBanned(c *gin.Context, banned bool) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	targetID := c.Param("id")
	if _, err := uuid.Parse(targetID); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid id"))
		return
	}
	if banned && targetID == actorID {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Admins cannot ban themselves"))
		return
	}

	user, err := h.userService.SetBanned(c.Request.Context(), targetID, banned)
	if err != nil {
		respondWithError(c, err)
		return
	}

	action := actionUnban
	if banned {
		action = actionBan
	}
	h.auditService.Log(c.Request.Context(), actorID, action, resourceUser, user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, BanStatusResponse{ID: user.ID, IsBanned: user.IsBanned})
}
