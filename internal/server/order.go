package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/smallbiznis/lokapasar/internal/order/domain"
)

type checkoutRequest struct {
	Email string `json:"email"`
	Items []struct {
		VariantID string `json:"variant_id"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`

	ShipToName    string `json:"ship_to_name"`
	ShipToAddress string `json:"ship_to_address"`
	ShipToCity    string `json:"ship_to_city"`
	ShipToPostal  string `json:"ship_to_postal"`
	ShipToCountry string `json:"ship_to_country"`
}

func (s *Server) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]orderdomain.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderdomain.CheckoutItem{
			VariantID: strings.TrimSpace(item.VariantID),
			Quantity:  item.Quantity,
		})
	}

	resp, err := s.orderSvc.Checkout(c.Request.Context(), orderdomain.CheckoutRequest{
		Email:         strings.TrimSpace(req.Email),
		Items:         items,
		ShipToName:    strings.TrimSpace(req.ShipToName),
		ShipToAddress: strings.TrimSpace(req.ShipToAddress),
		ShipToCity:    strings.TrimSpace(req.ShipToCity),
		ShipToPostal:  strings.TrimSpace(req.ShipToPostal),
		ShipToCountry: strings.TrimSpace(req.ShipToCountry),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMyOrders(c *gin.Context) {
	req, ok := s.bindOrderListRequest(c)
	if !ok {
		return
	}

	resp, meta, err := s.orderSvc.ListMine(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, listResponse(resp, meta))
}

func (s *Server) GetMyOrderByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.orderSvc.GetMine(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrderReceipt(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	receipt, err := s.orderSvc.Receipt(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := io.ReadAll(receipt)
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="receipt-`+id+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (s *Server) ListOrders(c *gin.Context) {
	req, ok := s.bindOrderListRequest(c)
	if !ok {
		return
	}

	resp, meta, err := s.orderSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, listResponse(resp, meta))
}

func (s *Server) GetOrderByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.orderSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.UpdateStatus(c.Request.Context(), orderdomain.UpdateStatusRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) bindOrderListRequest(c *gin.Context) (orderdomain.ListRequest, bool) {
	var query struct {
		Page          int    `form:"page"`
		Limit         int    `form:"limit"`
		Search        string `form:"search"`
		Status        string `form:"status"`
		PaymentStatus string `form:"payment_status"`
		StartDate     string `form:"start_date"`
		EndDate       string `form:"end_date"`
		SortBy        string `form:"sort_by"`
		OrderBy       string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return orderdomain.ListRequest{}, false
	}

	startDate, err := parseOptionalTime(query.StartDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return orderdomain.ListRequest{}, false
	}
	endDate, err := parseOptionalTime(query.EndDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return orderdomain.ListRequest{}, false
	}

	return orderdomain.ListRequest{
		Page:          query.Page,
		Limit:         query.Limit,
		Search:        strings.TrimSpace(query.Search),
		Status:        strings.TrimSpace(query.Status),
		PaymentStatus: strings.TrimSpace(query.PaymentStatus),
		StartDate:     startDate,
		EndDate:       endDate,
		SortBy:        strings.TrimSpace(query.SortBy),
		OrderBy:       strings.TrimSpace(query.OrderBy),
	}, true
}
