package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	shippingdomain "github.com/smallbiznis/lokapasar/internal/shipping/domain"
)

type shippingQuoteRequest struct {
	Country     string `json:"country"`
	WeightGrams int    `json:"weight_grams"`
}

func (s *Server) QuoteShipping(c *gin.Context) {
	var req shippingQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.shippingSvc.Quote(c.Request.Context(), shippingdomain.QuoteRequest{
		Country:     strings.TrimSpace(req.Country),
		WeightGrams: req.WeightGrams,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
