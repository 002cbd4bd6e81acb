package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	variantdomain "github.com/smallbiznis/lokapasar/internal/variant/domain"
)

type createVariantRequest struct {
	Size   *string `json:"size"`
	Amount *int64  `json:"amount"`
	Unit   *string `json:"unit"`

	Price              int64  `json:"price"`
	DiscountPrice      *int64 `json:"discount_price"`
	DiscountPercentage *int   `json:"discount_percentage"`

	Stock       int   `json:"stock"`
	WeightGrams int   `json:"weight_grams"`
	IsActive    *bool `json:"is_active"`
}

func (s *Server) CreateVariant(c *gin.Context) {
	var req createVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.variantSvc.Create(c.Request.Context(), variantdomain.CreateRequest{
		ProductID:          strings.TrimSpace(c.Param("id")),
		Size:               req.Size,
		Amount:             req.Amount,
		Unit:               req.Unit,
		Price:              req.Price,
		DiscountPrice:      req.DiscountPrice,
		DiscountPercentage: req.DiscountPercentage,
		Stock:              req.Stock,
		WeightGrams:        req.WeightGrams,
		IsActive:           req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProductVariants(c *gin.Context) {
	productID := strings.TrimSpace(c.Param("id"))
	resp, err := s.variantSvc.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetVariantByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.variantSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateVariantRequest struct {
	Price              *int64 `json:"price"`
	DiscountPrice      *int64 `json:"discount_price"`
	DiscountPercentage *int   `json:"discount_percentage"`
	ClearDiscount      bool   `json:"clear_discount"`

	Stock       *int  `json:"stock"`
	WeightGrams *int  `json:"weight_grams"`
	IsActive    *bool `json:"is_active"`
}

func (s *Server) UpdateVariant(c *gin.Context) {
	var req updateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.variantSvc.Update(c.Request.Context(), variantdomain.UpdateRequest{
		ID:                 strings.TrimSpace(c.Param("id")),
		Price:              req.Price,
		DiscountPrice:      req.DiscountPrice,
		DiscountPercentage: req.DiscountPercentage,
		ClearDiscount:      req.ClearDiscount,
		Stock:              req.Stock,
		WeightGrams:        req.WeightGrams,
		IsActive:           req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteVariant(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.variantSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
