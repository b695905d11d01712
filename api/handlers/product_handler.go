package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"example.com/backstage/services/catalog/internal/service"
)

// ProductHandler handles product-related requests
type ProductHandler struct {
	service service.Service
}

// NewProductHandler creates a new ProductHandler instance
func NewProductHandler(svc service.Service) *ProductHandler {
	return &ProductHandler{service: svc}
}

// CreateProduct handles product creation
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var cmd service.CreateProductCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	res, err := h.service.CreateProduct(c.Request.Context(), cmd)
	respond(c, http.StatusCreated, res, err)
}

// UpdateProduct handles updating a product's scalar fields
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var cmd service.UpdateProductCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}
	cmd.ID = id

	res, err := h.service.UpdateProduct(c.Request.Context(), cmd)
	respond(c, http.StatusOK, res, err)
}

// DeleteProduct handles soft-deleting a product
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := h.service.DeleteProduct(c.Request.Context(), service.DeleteProductCommand{ID: id})
	respond(c, http.StatusOK, res, err)
}

// GetProduct handles product retrieval by ID
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := h.service.GetProductByID(c.Request.Context(), id)
	respond(c, http.StatusOK, res, err)
}

// ListProducts handles filtered, ordered, paged product listing
func (h *ProductHandler) ListProducts(c *gin.Context) {
	query, ok := listQuery(c)
	if !ok {
		return
	}

	res, err := h.service.ListProducts(c.Request.Context(), query)
	respond(c, http.StatusOK, res, err)
}

// pathID parses the :id path parameter as a UUID.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

// listQuery reads the filter-order-page parameters from the query string.
func listQuery(c *gin.Context) (service.ListQuery, bool) {
	pageNumber, err := strconv.Atoi(c.DefaultQuery("pageNumber", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid pageNumber",
		})
		return service.ListQuery{}, false
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid pageSize",
		})
		return service.ListQuery{}, false
	}

	return service.ListQuery{
		Filter:     c.Query("filter"),
		Order:      c.Query("order"),
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}, true
}
