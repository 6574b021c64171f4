package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/services"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CategoryRequest represents the payload for creating or renaming a category
type CategoryRequest struct {
	Name string `json:"name" binding:"required,category_name"`
}

// AdminCategoryRequest represents the payload for an admin-created category.
// A missing user_id creates a global category.
type AdminCategoryRequest struct {
	Name   string  `json:"name" binding:"required,category_name"`
	UserID *string `json:"user_id" binding:"omitempty,uuid"`
}

// CategoryListResponse represents a page of categories
type CategoryListResponse = pagination.PageResponse[models.CategoryView]

// ToggleActiveResponse reports a category's state after a toggle
type ToggleActiveResponse struct {
	ID       uint `json:"id"`
	IsActive bool `json:"is_active"`
}

// ListCategories lists the categories visible to the caller.
// @Summary     List categories
// @Description List the caller's own categories and the active global ones
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number (default 1)"
// @Param       page_size query int false "Page size (default 20, max 100)"
// @Param       sort_by query string false "Sort field: id or name"
// @Param       is_descending query bool false "Sort descending"
// @Param       include_inactive query bool false "Also list the caller's inactive categories"
// @Success     200 {object} CategoryListResponse "Page of categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	p, err := currentPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	sort, err := categorySort(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	includeInactive, err := parseBoolQuery(c, "include_inactive")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.categoryService.ListForUser(c.Request.Context(), p, page, sort, includeInactive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(*result, (*models.Category).View))
}

// CreateCategory creates a category owned by the caller.
// @Summary     Create a category
// @Description Create a new category owned by the authenticated user
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CategoryRequest true "Category details"
// @Success     201 {object} models.CategoryView "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	p, err := currentPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateForUser(c.Request.Context(), p, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, p.UserID, actionCreate, category.ID, map[string]any{"name": category.Name})

	c.JSON(http.StatusCreated, gin.H{"category": category.View()})
}

// GetCategory returns one category.
// @Summary     Get category by ID
// @Description Get a category the caller owns, or a global one
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {object} models.CategoryView "Category"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}

	category, err := h.categoryService.GetByID(c.Request.Context(), p, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category.View()})
}

// UpdateCategory renames a category.
// @Summary     Rename a category
// @Description Rename a category the caller owns. Admins may rename any category.
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Param       request body CategoryRequest true "New name"
// @Success     200 {object} models.CategoryView "Category updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), p, id, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, p.UserID, actionUpdate, id, map[string]any{"name": category.Name})

	c.JSON(http.StatusOK, gin.H{"category": category.View()})
}

// ToggleActive flips a category between active and inactive.
// @Summary     Toggle category activity
// @Description Flip is_active on a category the caller owns and return the new state
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {object} ToggleActiveResponse "New state"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id}/toggle-active [patch]
func (h *CategoryHandler) ToggleActive(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}

	active, err := h.categoryService.ToggleActive(c.Request.Context(), p, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, p.UserID, actionToggleActive, id, map[string]any{"is_active": active})

	c.JSON(http.StatusOK, ToggleActiveResponse{ID: id, IsActive: active})
}

// DeleteCategory deletes a category. Its transactions become uncategorized.
// @Summary     Delete a category
// @Description Delete a category the caller owns. Transactions referencing it lose their category.
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {object} MessageResponse "Category deleted"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), p, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, p.UserID, actionDelete, id, nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Category deleted successfully"})
}

// AdminListCategories lists every category.
// @Summary     List all categories (admin)
// @Description List every category, including inactive and global ones
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number (default 1)"
// @Param       page_size query int false "Page size (default 20, max 100)"
// @Param       sort_by query string false "Sort field: id or name"
// @Param       is_descending query bool false "Sort descending"
// @Param       user_id query string false "Only categories owned by this user"
// @Success     200 {object} CategoryListResponse "Page of categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not an admin"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/categories [get]
func (h *CategoryHandler) AdminListCategories(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	sort, err := categorySort(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	owner, err := optionalOwner(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.categoryService.ListForAdmin(c.Request.Context(), page, sort, owner)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(*result, (*models.Category).View))
}

// AdminCreateCategory creates a category for any owner, or a global one.
// @Summary     Create a category (admin)
// @Description Create a category owned by user_id, or a global category when user_id is omitted
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AdminCategoryRequest true "Category details"
// @Success     201 {object} models.CategoryView "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not an admin"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/categories [post]
func (h *CategoryHandler) AdminCreateCategory(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AdminCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateForAdmin(c.Request.Context(), req.Name, req.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, actorID, actionCreate, category.ID, map[string]any{"name": category.Name, "user_id": category.UserID})

	c.JSON(http.StatusCreated, gin.H{"category": category.View()})
}

func (h *CategoryHandler) audit(c *gin.Context, actorID, action string, id uint, changes map[string]any) {
	h.auditService.Log(c.Request.Context(), actorID, action, resourceCategory,
		strconv.FormatUint(uint64(id), 10), c.ClientIP(), changes)
}
