package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
)

func setupAdminUserRouter(handler *AdminUserHandler) *gin.Engine {
	r := gin.New()
	admin := r.Group("/admin", injectUser(testUserID, true))
	admin.POST("/users/:id/ban", handler.BanUser)
	admin.POST("/users/:id/unban", handler.UnbanUser)
	return r
}

func TestAdminUserHandler(t *testing.T) {
	t.Run("bans and audits", func(t *testing.T) {
		var gotID string
		var gotBanned bool
		userSvc := &mockUserService{
			setBannedFn: func(id string, banned bool) (*models.User, error) {
				gotID, gotBanned = id, banned
				return &models.User{Base: models.Base{ID: id}, IsBanned: banned}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupAdminUserRouter(NewAdminUserHandler(userSvc, audit))

		rec := doRequest(r, http.MethodPost, "/admin/users/"+otherUserID+"/ban", "")

		assertStatus(t, rec, http.StatusOK)
		if gotID != otherUserID || !gotBanned {
			t.Errorf("unexpected call id=%s banned=%v", gotID, gotBanned)
		}
		if parseJSON(t, rec)["is_banned"] != true {
			t.Error("expected is_banned true")
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "ban" || audit.entries[0].resourceID != otherUserID {
			t.Errorf("unexpected audit entries %+v", audit.entries)
		}
	})

	t.Run("unbans", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupAdminUserRouter(NewAdminUserHandler(&mockUserService{}, audit))

		rec := doRequest(r, http.MethodPost, "/admin/users/"+otherUserID+"/unban", "")

		assertStatus(t, rec, http.StatusOK)
		if parseJSON(t, rec)["is_banned"] != false {
			t.Error("expected is_banned false")
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "unban" {
			t.Errorf("unexpected audit entries %+v", audit.entries)
		}
	})

	t.Run("rejects self-ban", func(t *testing.T) {
		r := setupAdminUserRouter(NewAdminUserHandler(&mockUserService{}, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/admin/users/"+testUserID+"/ban", "")

		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		r := setupAdminUserRouter(NewAdminUserHandler(&mockUserService{}, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/admin/users/42/ban", "")

		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("returns 404 for unknown user", func(t *testing.T) {
		userSvc := &mockUserService{
			setBannedFn: func(string, bool) (*models.User, error) { return nil, apperrors.ErrUserNotFound },
		}
		r := setupAdminUserRouter(NewAdminUserHandler(userSvc, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/admin/users/"+otherUserID+"/ban", "")

		assertStatus(t, rec, http.StatusNotFound)
		assertErrorCode(t, parseJSON(t, rec), "USER_NOT_FOUND")
	})
}
