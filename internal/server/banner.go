package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	bannerdomain "github.com/smallbiznis/lokapasar/internal/banner/domain"
)

func (s *Server) CreateBanner(c *gin.Context) {
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

	startsAt, err := parseOptionalTime(c.PostForm("starts_at"), false)
	if err != nil {
		AbortWithError(c, newValidationError("starts_at", "invalid_starts_at", "invalid starts_at"))
		return
	}
	endsAt, err := parseOptionalTime(c.PostForm("ends_at"), true)
	if err != nil {
		AbortWithError(c, newValidationError("ends_at", "invalid_ends_at", "invalid ends_at"))
		return
	}

	var targetURL *string
	if raw := strings.TrimSpace(c.PostForm("target_url")); raw != "" {
		targetURL = &raw
	}

	content, err := file.Open()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	defer content.Close()

	resp, err := s.bannerSvc.Create(c.Request.Context(), bannerdomain.CreateRequest{
		Title:         strings.TrimSpace(c.PostForm("title")),
		TargetURL:     targetURL,
		Position:      position,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		ImageFilename: file.Filename,
		ImageContent:  content,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ListLiveBanners serves the storefront carousel: active banners whose
// schedule window covers now, ordered by position.
func (s *Server) ListLiveBanners(c *gin.Context) {
	resp, err := s.bannerSvc.ListLive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBanners(c *gin.Context) {
	var query struct {
		Page      int    `form:"page"`
		Limit     int    `form:"limit"`
		Search    string `form:"search"`
		Active    string `form:"is_active"`
		StartDate string `form:"start_date"`
		EndDate   string `form:"end_date"`
		SortBy    string `form:"sort_by"`
		OrderBy   string `form:"order_by"`
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
	startDate, err := parseOptionalTime(query.StartDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return
	}
	endDate, err := parseOptionalTime(query.EndDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return
	}

	resp, meta, err := s.bannerSvc.List(c.Request.Context(), bannerdomain.ListRequest{
		Page:      query.Page,
		Limit:     query.Limit,
		Search:    strings.TrimSpace(query.Search),
		IsActive:  active,
		StartDate: startDate,
		EndDate:   endDate,
		SortBy:    strings.TrimSpace(query.SortBy),
		OrderBy:   strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, listResponse(resp, meta))
}

type updateBannerRequest struct {
	Title     *string `json:"title"`
	TargetURL *string `json:"target_url"`
	Position  *int    `json:"position"`
	IsActive  *bool   `json:"is_active"`
	StartsAt  *string `json:"starts_at"`
	EndsAt    *string `json:"ends_at"`
}

func (s *Server) UpdateBanner(c *gin.Context) {
	var req updateBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := bannerdomain.UpdateRequest{
		ID:        strings.TrimSpace(c.Param("id")),
		Title:     req.Title,
		TargetURL: req.TargetURL,
		Position:  req.Position,
		IsActive:  req.IsActive,
	}

	if req.StartsAt != nil {
		startsAt, err := parseOptionalTime(*req.StartsAt, false)
		if err != nil {
			AbortWithError(c, newValidationError("starts_at", "invalid_starts_at", "invalid starts_at"))
			return
		}
		update.StartsAt = startsAt
	}
	if req.EndsAt != nil {
		endsAt, err := parseOptionalTime(*req.EndsAt, true)
		if err != nil {
			AbortWithError(c, newValidationError("ends_at", "invalid_ends_at", "invalid ends_at"))
			return
		}
		update.EndsAt = endsAt
	}

	resp, err := s.bannerSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBanner(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.bannerSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
