package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "")
}

const testSecret = "test-secret"

func newIssuer() *TokenIssuer {
	return NewTokenIssuer(testSecret, 15*time.Minute, time.Hour)
}

func testUser(role models.Role) *models.User {
	return &models.User{
		Base:  models.Base{ID: "0190d7a4-8f8b-7c3e-9d4a-1b2c3d4e5f60"},
		Email: "user@example.com",
		Role:  role,
	}
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func setupAuthRouter(issuer *TokenIssuer, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(issuer)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetString(UserIDKey),
			"is_admin": c.GetBool(IsAdminKey),
		})
	})
	r.GET("/test", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	issuer := newIssuer()
	r := setupAuthRouter(issuer)

	t.Run("sets principal from access token", func(t *testing.T) {
		token, err := issuer.GenerateAccessToken(testUser(models.RoleAdmin))
		if err != nil {
			t.Fatal(err)
		}

		rec := doRequest(r, "Bearer "+token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := parseBody(t, rec)
		if body["user_id"] != testUser("").ID {
			t.Errorf("unexpected user_id %v", body["user_id"])
		}
		if body["is_admin"] != true {
			t.Error("expected admin flag from role claim")
		}
	})

	t.Run("regular user is not admin", func(t *testing.T) {
		token, _ := issuer.GenerateAccessToken(testUser(models.RoleUser))
		body := parseBody(t, doRequest(r, "Bearer "+token))
		if body["is_admin"] != false {
			t.Error("expected non-admin")
		}
	})

	tests := []struct {
		name     string
		header   func() string
		wantCode string
	}{
		{"missing header", func() string { return "" }, "UNAUTHORIZED"},
		{"malformed header", func() string { return "Token abc" }, "UNAUTHORIZED"},
		{"garbage token", func() string { return "Bearer not-a-jwt" }, "INVALID_TOKEN"},
		{"refresh token rejected", func() string {
			token, _ := issuer.GenerateRefreshToken(testUser(models.RoleUser))
			return "Bearer " + token
		}, "INVALID_TOKEN"},
		{"foreign signature rejected", func() string {
			token, _ := NewTokenIssuer("other-secret", time.Minute, time.Hour).GenerateAccessToken(testUser(models.RoleAdmin))
			return "Bearer " + token
		}, "INVALID_TOKEN"},
		{"expired token rejected", func() string {
			old := newIssuer()
			old.now = func() time.Time { return time.Now().Add(-time.Hour) }
			token, _ := old.GenerateAccessToken(testUser(models.RoleUser))
			return "Bearer " + token
		}, "INVALID_TOKEN"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(r, tc.header())
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if code := errorCode(t, rec); code != tc.wantCode {
				t.Errorf("expected %s, got %s", tc.wantCode, code)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	issuer := newIssuer()
	r := setupAuthRouter(issuer, RequireAdmin())

	t.Run("admin passes", func(t *testing.T) {
		token, _ := issuer.GenerateAccessToken(testUser(models.RoleAdmin))
		if rec := doRequest(r, "Bearer "+token); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("user is forbidden", func(t *testing.T) {
		token, _ := issuer.GenerateAccessToken(testUser(models.RoleUser))
		rec := doRequest(r, "Bearer "+token)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "FORBIDDEN" {
			t.Errorf("expected FORBIDDEN, got %s", code)
		}
	})
}

func TestTokenIssuer_RefreshTokens(t *testing.T) {
	issuer := newIssuer()
	user := testUser(models.RoleUser)

	first, err := issuer.GenerateRefreshToken(user)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := issuer.GenerateRefreshToken(user)
	if first == second {
		t.Error("consecutive refresh tokens must differ")
	}

	claims, err := issuer.ValidateRefreshToken(first)
	if err != nil {
		t.Fatalf("expected valid refresh token, got %v", err)
	}
	if claims.UserID != user.ID || claims.Subject != user.ID {
		t.Errorf("unexpected claims %+v", claims)
	}

	access, _ := issuer.GenerateAccessToken(user)
	if _, err := issuer.ValidateRefreshToken(access); err == nil {
		t.Error("access token must not validate as refresh token")
	}
}

func TestHashToken(t *testing.T) {
	h := HashToken("abc")
	if len(h) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h))
	}
	if h != HashToken("abc") || h == HashToken("abd") {
		t.Error("hash must be deterministic and input-sensitive")
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging(), ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db down")))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})
	r.GET("/notfound", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrCategoryNotFound)
	})

	cases := []struct {
		path   string
		status int
		code   string
	}{
		{"/app", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/plain", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/notfound", http.StatusNotFound, "CATEGORY_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, http.NoBody)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if code := errorCode(t, rec); code != tc.code {
				t.Errorf("expected %s, got %s", tc.code, code)
			}
			if rec.Body.String() == "" || rec.Header().Get("X-Request-ID") == "" {
				t.Error("expected request id header")
			}
		})
	}
}

func TestRequestLogging_ReusesValidRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	const id = "0190d7a4-8f8b-7c3e-9d4a-1b2c3d4e5f60"
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("X-Request-ID", id)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != id {
		t.Errorf("expected %s, got %s", id, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("X-Request-ID", "not a uuid")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() == "not a uuid" {
		t.Error("malformed request id must be replaced")
	}
}
