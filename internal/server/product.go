package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/smallbiznis/lokapasar/internal/product/domain"
)

type createProductRequest struct {
	CategoryID  string         `json:"category_id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Type        string         `json:"type"`
	Metadata    map[string]any `json:"metadata"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), productdomain.CreateRequest{
		CategoryID:  strings.TrimSpace(req.CategoryID),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        strings.TrimSpace(req.Type),
		Metadata:    req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Page       int    `form:"page"`
		Limit      int    `form:"limit"`
		Search     string `form:"search"`
		CategoryID string `form:"category_id"`
		Active     string `form:"is_active"`
		InStock    string `form:"in_stock"`
		IsOnSale   string `form:"is_on_sale"`
		MinPrice   string `form:"min_price"`
		MaxPrice   string `form:"max_price"`
		Mode       string `form:"mode"`
		SortBy     string `form:"sort_by"`
		OrderBy    string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active, err := parseOptionalBool(query.Active)
	if err != nil {
		AbortWithError(c, newValidationError("is_active", "invalid_is_active", "invalid is_active"))
		return
	}
	inStock, err := parseOptionalBool(query.InStock)
	if err != nil {
		AbortWithError(c, newValidationError("in_stock", "invalid_in_stock", "invalid in_stock"))
		return
	}
	isOnSale, err := parseOptionalBool(query.IsOnSale)
	if err != nil {
		AbortWithError(c, newValidationError("is_on_sale", "invalid_is_on_sale", "invalid is_on_sale"))
		return
	}
	minPrice, err := parseOptionalInt64(query.MinPrice)
	if err != nil {
		AbortWithError(c, newValidationError("min_price", "invalid_min_price", "invalid min_price"))
		return
	}
	maxPrice, err := parseOptionalInt64(query.MaxPrice)
	if err != nil {
		AbortWithError(c, newValidationError("max_price", "invalid_max_price", "invalid max_price"))
		return
	}

	resp, meta, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		Page:       query.Page,
		Limit:      query.Limit,
		Search:     strings.TrimSpace(query.Search),
		CategoryID: strings.TrimSpace(query.CategoryID),
		IsActive:   active,
		InStock:    inStock,
		IsOnSale:   isOnSale,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Mode:       strings.TrimSpace(query.Mode),
		SortBy:     strings.TrimSpace(query.SortBy),
		OrderBy:    strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, listResponse(resp, meta))
}

func (s *Server) GetProductByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.productSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	resp, err := s.productSvc.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateProductRequest struct {
	CategoryID  *string        `json:"category_id"`
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Update(c.Request.Context(), productdomain.UpdateRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.productSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) UploadProductImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		AbortWithError(c, newValidationError("image", "missing_image", "image file is required"))
		return
	}

	position := 0
	if raw := strings.TrimSpace(c.PostForm("position")); raw != "" {
		position, err = strconv.Atoi(raw)
		if err != nil || position < 0 {
			AbortWithError(c, newValidationError("position", "invalid_position", "invalid position"))
			return
		}
	}

	content, err := file.Open()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	defer content.Close()

	resp, err := s.productSvc.UploadImage(c.Request.Context(), productdomain.UploadImageRequest{
		ProductID: strings.TrimSpace(c.Param("id")),
		Filename:  file.Filename,
		Content:   content,
		Position:  position,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProductImage(c *gin.Context) {
	productID := strings.TrimSpace(c.Param("id"))
	imageID := strings.TrimSpace(c.Param("image_id"))
	if err := s.productSvc.DeleteImage(c.Request.Context(), productID, imageID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
