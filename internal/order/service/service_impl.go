package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activationdomain "github.com/smallbiznis/lokapasar/internal/activation/domain"
	"github.com/smallbiznis/lokapasar/internal/clock"
	"github.com/smallbiznis/lokapasar/internal/observability/metrics"
	"github.com/smallbiznis/lokapasar/internal/order/domain"
	paymentdomain "github.com/smallbiznis/lokapasar/internal/payment/domain"
	productdomain "github.com/smallbiznis/lokapasar/internal/product/domain"
	"github.com/smallbiznis/lokapasar/internal/providers/email"
	"github.com/smallbiznis/lokapasar/internal/providers/pdf"
	shippingdomain "github.com/smallbiznis/lokapasar/internal/shipping/domain"
	"github.com/smallbiznis/lokapasar/internal/usercontext"
	variantdomain "github.com/smallbiznis/lokapasar/internal/variant/domain"
	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"github.com/smallbiznis/lokapasar/pkg/db/pagination"
)

const defaultCurrency = "EUR"

// checkoutTimeout bounds the multi-write checkout transaction. Exceeding it
// aborts the whole operation; the caller retries.
const checkoutTimeout = 8 * time.Second

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	GenID       *snowflake.Node
	Repo        domain.Repository
	VariantRepo variantdomain.Repository
	ProductRepo productdomain.Repository
	Activation  activationdomain.Service
	Shipping    shippingdomain.Service
	Checkout    paymentdomain.CheckoutClient
	Email       email.Provider
	PDF         pdf.Provider
	Metrics     *metrics.Metrics
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	repo        domain.Repository
	variantRepo variantdomain.Repository
	productRepo productdomain.Repository
	activation  activationdomain.Service
	shipping    shippingdomain.Service
	checkout    paymentdomain.CheckoutClient
	email       email.Provider
	pdf         pdf.Provider
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		repo:        p.Repo,
		variantRepo: p.VariantRepo,
		productRepo: p.ProductRepo,
		activation:  p.Activation,
		shipping:    p.Shipping,
		checkout:    p.Checkout,
		email:       p.Email,
		pdf:         p.PDF,
		metrics:     p.Metrics,
	}
}

type checkoutLine struct {
	variantID int64
	quantity  int
}

func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrNoUser
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	lines := make([]checkoutLine, 0, len(req.Items))
	for _, item := range req.Items {
		variantID, err := snowflake.ParseString(strings.TrimSpace(item.VariantID))
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		if item.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
		lines = append(lines, checkoutLine{variantID: variantID.Int64(), quantity: item.Quantity})
	}

	// First pass reads the cart to price shipping before any write. The
	// provider call must stay outside the transaction below; stock is
	// re-checked inside it.
	totalWeight := 0
	for _, line := range lines {
		variant, err := s.variantRepo.FindByID(ctx, s.db, line.variantID)
		if err != nil {
			return nil, err
		}
		if variant == nil || !variant.IsActive {
			return nil, domain.ErrVariantUnavailable
		}
		if variant.Stock < line.quantity {
			return nil, domain.ErrInsufficientStock
		}
		totalWeight += variant.WeightGrams * line.quantity
	}

	var shippingAmount int64
	currency := defaultCurrency
	if strings.TrimSpace(req.ShipToCountry) != "" && totalWeight > 0 {
		quote, err := s.shipping.Quote(ctx, shippingdomain.QuoteRequest{
			Country:     req.ShipToCountry,
			WeightGrams: totalWeight,
		})
		if err != nil {
			return nil, err
		}
		shippingAmount = quote.Amount
		currency = quote.Currency
	}

	now := s.clock.Now()
	order := &domain.Order{
		ID:            s.genID.Generate().Int64(),
		Number:        ulid.Make().String(),
		UserID:        userID.Int64(),
		Email:         email,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentUnpaid,
		Currency:      currency,
		Shipping:      shippingAmount,
		ShipToName:    strings.TrimSpace(req.ShipToName),
		ShipToAddress: strings.TrimSpace(req.ShipToAddress),
		ShipToCity:    strings.TrimSpace(req.ShipToCity),
		ShipToPostal:  strings.TrimSpace(req.ShipToPostal),
		ShipToCountry: strings.ToUpper(strings.TrimSpace(req.ShipToCountry)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	txCtx, cancel := context.WithTimeout(ctx, checkoutTimeout)
	defer cancel()

	err := s.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		var subtotal int64
		touchedProducts := map[int64]struct{}{}

		for _, line := range lines {
			variant, err := s.variantRepo.FindByID(txCtx, tx, line.variantID)
			if err != nil {
				return err
			}
			if variant == nil || !variant.IsActive {
				return domain.ErrVariantUnavailable
			}
			if variant.Stock < line.quantity {
				return domain.ErrInsufficientStock
			}

			product, err := s.productRepo.FindByID(txCtx, tx, variant.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrVariantUnavailable
			}

			unit := variant.Price
			if variant.DiscountPrice != nil {
				unit = *variant.DiscountPrice
			}
			lineTotal := unit * int64(line.quantity)
			subtotal += lineTotal

			order.Items = append(order.Items, domain.OrderItem{
				ID:           s.genID.Generate().Int64(),
				OrderID:      order.ID,
				ProductID:    variant.ProductID,
				VariantID:    variant.ID,
				ProductTitle: product.Title,
				VariantName:  variant.Name,
				SKU:          variant.SKU,
				UnitPrice:    unit,
				Quantity:     line.quantity,
				Total:        lineTotal,
				CreatedAt:    now,
			})

			variant.Stock -= line.quantity
			if variant.Stock == 0 {
				variant.IsActive = false
			}
			variant.UpdatedAt = now
			if err := s.variantRepo.Update(txCtx, tx, variant); err != nil {
				return err
			}
			touchedProducts[variant.ProductID] = struct{}{}
		}

		order.Subtotal = subtotal
		order.Total = subtotal + order.Shipping

		if err := s.repo.Create(txCtx, tx, order); err != nil {
			return err
		}

		for productID := range touchedProducts {
			if err := s.activation.ReconcileProduct(txCtx, tx, productID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated(ctx, order.Status)
	}
	s.log.Info("order created",
		zap.String("number", order.Number),
		zap.Int64("total", order.Total),
		zap.Int("items", len(order.Items)),
	)

	resp := &domain.CheckoutResponse{Order: s.toResponse(order)}

	session, err := s.checkout.CreateCheckoutSession(ctx, paymentdomain.CheckoutParams{
		OrderID:       order.ID,
		OrderNumber:   order.Number,
		Amount:        order.Total,
		Currency:      order.Currency,
		Description:   fmt.Sprintf("Order %s", order.Number),
		CustomerEmail: order.Email,
	})
	if err != nil {
		// The order stays pending; payment can be retried through support
		// tooling. Surfacing the failure beats silently dropping it.
		s.log.Error("checkout session failed",
			zap.String("number", order.Number),
			zap.Error(err),
		)
		return nil, err
	}

	order.PaymentProvider = "stripe"
	order.PaymentRef = session.ID
	order.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}

	resp.PaymentURL = session.URL
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(order)
	return &resp, nil
}

func (s *Service) GetMine(ctx context.Context, id string) (*domain.Response, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrNoUser
	}

	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID.Int64() {
		return nil, domain.ErrNotOwner
	}
	resp := s.toResponse(order)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, *pagination.Meta, error) {
	return s.list(ctx, req, nil)
}

func (s *Service) ListMine(ctx context.Context, req domain.ListRequest) ([]domain.Response, *pagination.Meta, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, nil, domain.ErrNoUser
	}
	return s.list(ctx, req, map[string]any{"user_id": userID.Int64()})
}

func (s *Service) list(ctx context.Context, req domain.ListRequest, extraWhere map[string]any) ([]domain.Response, *pagination.Meta, error) {
	if req.Status != "" && !domain.ValidStatus(req.Status) {
		return nil, nil, domain.ErrInvalidStatus
	}
	if req.PaymentStatus != "" && !domain.ValidPaymentStatus(req.PaymentStatus) {
		return nil, nil, domain.ErrInvalidStatus
	}

	desc, err := listquery.Build(listquery.Options{
		Page:          req.Page,
		Limit:         req.Limit,
		DefaultLimit:  pagination.DefaultAdminLimit,
		Search:        strings.TrimSpace(req.Search),
		SearchColumn:  "number",
		Status:        req.Status,
		StatusColumn:  "status",
		PaymentStatus: req.PaymentStatus,
		PaymentColumn: "payment_status",
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		DateColumn:    "created_at",
		ExtraWhere:    extraWhere,
		SortBy:        strings.TrimSpace(req.SortBy),
		OrderBy:       strings.TrimSpace(req.OrderBy),
		SortColumns: map[string]bool{
			"created_at": true,
			"updated_at": true,
			"total":      true,
		},
	})
	if err != nil {
		return nil, nil, err
	}

	items, total, err := s.repo.List(ctx, s.db, desc)
	if err != nil {
		return nil, nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i]))
	}
	meta := pagination.NewMeta(desc.Page, total)
	return resp, &meta, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (*domain.Response, error) {
	if !domain.ValidStatus(req.Status) {
		return nil, domain.ErrInvalidStatus
	}

	order, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	order.Status = req.Status
	order.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}

	resp := s.toResponse(order)
	return &resp, nil
}

func (s *Service) Receipt(ctx context.Context, id string) (io.Reader, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrNoUser
	}

	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID.Int64() {
		return nil, domain.ErrNotOwner
	}
	if order.PaymentStatus != domain.PaymentPaid {
		return nil, domain.ErrNotPaid
	}

	data := pdf.ReceiptData{
		StoreName:     "Lokapasar",
		OrderNumber:   order.Number,
		DatePaid:      order.UpdatedAt.Format("2006-01-02"),
		BillToName:    order.ShipToName,
		BillToAddress: shippingAddress(order),
		BillToEmail:   order.Email,
		ShipToName:    order.ShipToName,
		ShipToAddress: shippingAddress(order),
		Subtotal:      formatAmount(order.Subtotal, order.Currency),
		Shipping:      formatAmount(order.Shipping, order.Currency),
		Total:         formatAmount(order.Total, order.Currency),
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, pdf.ReceiptItem{
			Description: fmt.Sprintf("%s (%s)", item.VariantName, item.SKU),
			Qty:         item.Quantity,
			UnitPrice:   formatAmount(item.UnitPrice, order.Currency),
			Amount:      formatAmount(item.Total, order.Currency),
		})
	}

	return s.pdf.GenerateReceipt(ctx, data)
}

func (s *Service) ApplyPaymentEvent(ctx context.Context, event *paymentdomain.PaymentEvent) error {
	if event == nil {
		return paymentdomain.ErrInvalidEvent
	}

	order, err := s.repo.FindByID(ctx, s.db, event.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}

	switch event.Type {
	case paymentdomain.EventTypePaymentSucceeded:
		if order.PaymentStatus == domain.PaymentPaid {
			return nil
		}
		order.PaymentStatus = domain.PaymentPaid
		if order.Status == domain.StatusPending {
			order.Status = domain.StatusPaid
		}
	case paymentdomain.EventTypePaymentFailed:
		if order.PaymentStatus == domain.PaymentPaid {
			// A stale failure after a success is provider noise.
			return nil
		}
		order.PaymentStatus = domain.PaymentFailed
	case paymentdomain.EventTypeRefunded:
		order.PaymentStatus = domain.PaymentRefunded
		order.Status = domain.StatusCancelled
	default:
		return paymentdomain.ErrEventIgnored
	}

	order.PaymentProvider = event.Provider
	if event.ProviderPaymentID != "" {
		order.PaymentRef = event.ProviderPaymentID
	}
	order.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordPaymentEvent(ctx, event.Provider, event.Type)
	}

	if event.Type == paymentdomain.EventTypePaymentSucceeded {
		s.sendConfirmation(ctx, order)
	}
	return nil
}

// sendConfirmation is best effort: a mail failure never fails the payment
// transition that triggered it.
func (s *Service) sendConfirmation(ctx context.Context, order *domain.Order) {
	data := email.OrderConfirmation{
		Number:      order.Number,
		ShippingFee: formatAmount(order.Shipping, order.Currency),
		Total:       formatAmount(order.Total, order.Currency),
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, email.OrderConfirmationItem{
			Title:     item.VariantName,
			Quantity:  item.Quantity,
			UnitPrice: formatAmount(item.UnitPrice, order.Currency),
		})
	}

	body, err := email.RenderOrderConfirmation(data)
	if err != nil {
		s.log.Warn("render confirmation failed", zap.String("number", order.Number), zap.Error(err))
		return
	}
	subject := fmt.Sprintf("Order %s confirmed", order.Number)
	if err := s.email.Send(ctx, []string{order.Email}, subject, body); err != nil {
		s.log.Warn("confirmation email failed", zap.String("number", order.Number), zap.Error(err))
	}
}

func (s *Service) find(ctx context.Context, id string) (*domain.Order, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID.Int64())
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (s *Service) toResponse(o *domain.Order) domain.Response {
	resp := domain.Response{
		ID:              snowflake.ID(o.ID).String(),
		Number:          o.Number,
		UserID:          snowflake.ID(o.UserID).String(),
		Email:           o.Email,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentProvider: o.PaymentProvider,
		Currency:        o.Currency,
		Subtotal:        o.Subtotal,
		Shipping:        o.Shipping,
		Total:           o.Total,
		ShipToName:      o.ShipToName,
		ShipToAddress:   o.ShipToAddress,
		ShipToCity:      o.ShipToCity,
		ShipToPostal:    o.ShipToPostal,
		ShipToCountry:   o.ShipToCountry,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, domain.ItemResponse{
			ID:           snowflake.ID(item.ID).String(),
			ProductID:    snowflake.ID(item.ProductID).String(),
			VariantID:    snowflake.ID(item.VariantID).String(),
			ProductTitle: item.ProductTitle,
			VariantName:  item.VariantName,
			SKU:          item.SKU,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
			Total:        item.Total,
		})
	}
	return resp
}

func shippingAddress(o *domain.Order) string {
	parts := make([]string, 0, 4)
	for _, part := range []string{o.ShipToAddress, o.ShipToPostal, o.ShipToCity, o.ShipToCountry} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

func formatAmount(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}
