package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spendwise/internal/access"
	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/middleware"
	"spendwise/internal/pagination"
	"spendwise/internal/query"
)

// Audit actions and resource types.
const (
	actionCreate       = "create"
	actionUpdate       = "update"
	actionDelete       = "delete"
	actionToggleActive = "toggle_active"
	actionBan          = "ban"
	actionUnban        = "unban"

	resourceCategory    = "category"
	resourceTransaction = "transaction"
	resourceUser        = "user"
)

const dateOnly = "2006-01-02"

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// currentPrincipal builds the access principal from the values set by
// AuthMiddleware.
func currentPrincipal(c *gin.Context) (access.Principal, error) {
	userID, err := getUserID(c)
	if err != nil {
		return access.Principal{}, err
	}
	return access.Principal{UserID: userID, IsAdmin: c.GetBool(middleware.IsAdminKey)}, nil
}

// parsePathID parses a uint path parameter.
// Returns ErrInvalidInput if the parameter is not a valid positive integer.
func parsePathID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return uint(id), nil
}

// principalAndID resolves the caller and the :id path parameter, writing the
// error response itself when either is missing.
func principalAndID(c *gin.Context) (access.Principal, uint, bool) {
	p, err := currentPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return p, 0, false
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return p, 0, false
	}
	return p, id, true
}

// parseBoolQuery reads an optional boolean query parameter. Absent means false.
func parseBoolQuery(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.WithMessage(apperrors.ErrInvalidInput, name+" must be a boolean")
	}
	return v, nil
}

// bindPage binds page, page_size, sort_by and is_descending from the query string.
func bindPage(c *gin.Context) (pagination.PageRequest, error) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		return page, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	page.Defaults()
	return page, nil
}

func categorySort(page pagination.PageRequest) (query.CategorySort, error) {
	sort, err := query.ParseCategorySort(page.SortBy, page.IsDescending)
	if err != nil {
		return sort, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"sort_by must be one of: "+strings.Join(query.AcceptedCategorySortFields(), ", "))
	}
	return sort, nil
}

func transactionSort(sortBy string, descending bool) (query.TransactionSort, error) {
	sort, err := query.ParseTransactionSort(sortBy, descending)
	if err != nil {
		return sort, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"sort_by must be one of: "+strings.Join(query.AcceptedTransactionSortFields(), ", "))
	}
	return sort, nil
}

// optionalOwner turns an empty user_id query value into no filter. Anything
// else must be a UUID.
func optionalOwner(c *gin.Context) (*string, error) {
	owner := strings.TrimSpace(c.Query("user_id"))
	if owner == "" {
		return nil, nil
	}
	if _, err := uuid.Parse(owner); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user_id must be a valid UUID")
	}
	return &owner, nil
}

// parseDateParam accepts an RFC 3339 timestamp or a bare date. A bare date
// used as an upper bound covers the whole day.
func parseDateParam(name, value string, upperBound bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, value)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			name+" must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
	}
	if upperBound {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
				"request_id", middleware.RequestID(c),
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"request_id", middleware.RequestID(c),
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse represents a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}
