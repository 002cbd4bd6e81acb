package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reviewdomain "github.com/smallbiznis/lokapasar/internal/review/domain"
)

type createReviewRequest struct {
	Rating  int     `json:"rating"`
	Title   *string `json:"title"`
	Comment *string `json:"comment"`
}

func (s *Server) CreateReview(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewSvc.Create(c.Request.Context(), reviewdomain.CreateRequest{
		ProductID: strings.TrimSpace(c.Param("id")),
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProductReviews(c *gin.Context) {
	var query struct {
		Page    int    `form:"page"`
		Limit   int    `form:"limit"`
		SortBy  string `form:"sort_by"`
		OrderBy string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, meta, err := s.reviewSvc.ListByProduct(c.Request.Context(), reviewdomain.ListRequest{
		ProductID: strings.TrimSpace(c.Param("id")),
		Page:      query.Page,
		Limit:     query.Limit,
		SortBy:    strings.TrimSpace(query.SortBy),
		OrderBy:   strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, listResponse(resp, meta))
}

func (s *Server) DeleteReview(c *gin.Context) {
	id := strings.TrimSpace(c.Param("review_id"))
	if err := s.reviewSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
