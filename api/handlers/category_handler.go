package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/backstage/services/catalog/internal/service"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	service service.Service
}

// NewCategoryHandler creates a new CategoryHandler instance
func NewCategoryHandler(svc service.Service) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// CreateCategory handles category creation
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var cmd service.CreateCategoryCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	res, err := h.service.CreateCategory(c.Request.Context(), cmd)
	respond(c, http.StatusCreated, res, err)
}

// UpdateCategory handles updating a category
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var cmd service.UpdateCategoryCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}
	cmd.ID = id

	res, err := h.service.UpdateCategory(c.Request.Context(), cmd)
	respond(c, http.StatusOK, res, err)
}

// DeleteCategory handles soft-deleting a category
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := h.service.DeleteCategory(c.Request.Context(), service.DeleteCategoryCommand{ID: id})
	respond(c, http.StatusOK, res, err)
}

// GetCategory handles category retrieval by ID
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := h.service.GetCategoryByID(c.Request.Context(), id)
	respond(c, http.StatusOK, res, err)
}

// ListCategories handles filtered, ordered, paged category listing
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	query, ok := listQuery(c)
	if !ok {
		return
	}

	res, err := h.service.ListCategories(c.Request.Context(), query)
	respond(c, http.StatusOK, res, err)
}
