package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activationservice "github.com/smallbiznis/lokapasar/internal/activation/service"
	categorydomain "github.com/smallbiznis/lokapasar/internal/category/domain"
	"github.com/smallbiznis/lokapasar/internal/clock"
	"github.com/smallbiznis/lokapasar/internal/order/domain"
	"github.com/smallbiznis/lokapasar/internal/order/repository"
	paymentdomain "github.com/smallbiznis/lokapasar/internal/payment/domain"
	"github.com/smallbiznis/lokapasar/internal/providers/pdf"
	productdomain "github.com/smallbiznis/lokapasar/internal/product/domain"
	productrepository "github.com/smallbiznis/lokapasar/internal/product/repository"
	shippingdomain "github.com/smallbiznis/lokapasar/internal/shipping/domain"
	"github.com/smallbiznis/lokapasar/internal/usercontext"
	variantdomain "github.com/smallbiznis/lokapasar/internal/variant/domain"
	variantrepository "github.com/smallbiznis/lokapasar/internal/variant/repository"
	"github.com/smallbiznis/lokapasar/pkg/db"
)

type stubCheckout struct {
	session *paymentdomain.CheckoutSession
	err     error
	calls   []paymentdomain.CheckoutParams
}

func (s *stubCheckout) CreateCheckoutSession(_ context.Context, params paymentdomain.CheckoutParams) (*paymentdomain.CheckoutSession, error) {
	s.calls = append(s.calls, params)
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

type stubEmail struct {
	sent []string
}

func (s *stubEmail) Send(_ context.Context, to []string, subject string, _ string) error {
	s.sent = append(s.sent, subject)
	return nil
}

type stubPDF struct{}

func (stubPDF) GenerateReceipt(_ context.Context, _ pdf.ReceiptData) (io.Reader, error) {
	return bytes.NewReader([]byte("%PDF-1.7 receipt")), nil
}

type stubShipping struct {
	quote *shippingdomain.Quote
	err   error
}

func (s *stubShipping) Quote(_ context.Context, _ shippingdomain.QuoteRequest) (*shippingdomain.Quote, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.quote, nil
}

type fixture struct {
	svc      domain.Service
	conn     *gorm.DB
	checkout *stubCheckout
	email    *stubEmail
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&categorydomain.Category{},
		&productdomain.Product{},
		&productdomain.ProductImage{},
		&variantdomain.Variant{},
		&domain.Order{},
		&domain.OrderItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	checkout := &stubCheckout{session: &paymentdomain.CheckoutSession{
		ID:  "cs_test_123",
		URL: "https://pay.example/cs_test_123",
	}}
	mail := &stubEmail{}

	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		Clock:       clk,
		GenID:       node,
		Repo:        repository.Provide(),
		VariantRepo: variantrepository.Provide(),
		ProductRepo: productrepository.Provide(),
		Activation: activationservice.New(activationservice.Params{
			Log:   zap.NewNop(),
			Clock: clk,
		}),
		Shipping: &stubShipping{quote: &shippingdomain.Quote{
			Provider: "static",
			Zone:     "eu",
			Currency: "EUR",
			Amount:   500,
		}},
		Checkout: checkout,
		Email:    mail,
		PDF:      stubPDF{},
	})
	return &fixture{svc: svc, conn: conn, checkout: checkout, email: mail}
}

// seedVariant creates a category, a product, and one variant with the given
// stock. Returns the variant ID.
func (f *fixture) seedVariant(t *testing.T, stock int, price int64) int64 {
	t.Helper()
	now := time.Now().UTC()

	category := categorydomain.Category{
		ID: 1, Name: "Coffee", Slug: "coffee", IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.conn.Create(&category).Error)

	product := productdomain.Product{
		ID: 10, CategoryID: category.ID, Title: "House Blend Beans", Slug: "house-blend-beans",
		Type: productdomain.TypeAmount, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.conn.Create(&product).Error)

	variant := variantdomain.Variant{
		ID: 100, ProductID: product.ID, SKU: "HOUSE-BLEND-250-G-AB12CD",
		Name: "House Blend Beans 250 g", Attribute: "250 g",
		Price: price, Stock: stock, WeightGrams: 250, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.conn.Create(&variant).Error)
	return variant.ID
}

func userCtx(id int64) context.Context {
	return usercontext.WithUserID(context.Background(), snowflake.ID(id))
}

func TestCheckout_HappyPath(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 5, 1000)
	ctx := userCtx(777)

	resp, err := f.svc.Checkout(ctx, domain.CheckoutRequest{
		Email: "buyer@example.com",
		Items: []domain.CheckoutItem{
			{VariantID: snowflake.ID(variantID).String(), Quantity: 2},
		},
		ShipToName:    "Ada Buyer",
		ShipToAddress: "Kaiserstr. 1",
		ShipToCity:    "Berlin",
		ShipToPostal:  "10115",
		ShipToCountry: "de",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, resp.Order.Status)
	assert.Equal(t, domain.PaymentUnpaid, resp.Order.PaymentStatus)
	assert.EqualValues(t, 2000, resp.Order.Subtotal)
	assert.EqualValues(t, 500, resp.Order.Shipping)
	assert.EqualValues(t, 2500, resp.Order.Total)
	assert.Equal(t, "EUR", resp.Order.Currency)
	assert.Equal(t, "DE", resp.Order.ShipToCountry)
	assert.Len(t, resp.Order.Number, 26, "order numbers are ULIDs")
	assert.Equal(t, "https://pay.example/cs_test_123", resp.PaymentURL)

	require.Len(t, f.checkout.calls, 1)
	assert.EqualValues(t, 2500, f.checkout.calls[0].Amount)
	assert.Equal(t, "buyer@example.com", f.checkout.calls[0].CustomerEmail)

	var variant variantdomain.Variant
	require.NoError(t, f.conn.First(&variant, "id = ?", variantID).Error)
	assert.Equal(t, 3, variant.Stock)
	assert.True(t, variant.IsActive)
}

func TestCheckout_DiscountedUnitPrice(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 5, 1000)
	discount := int64(800)
	require.NoError(t, f.conn.Model(&variantdomain.Variant{}).
		Where("id = ?", variantID).
		Updates(map[string]any{"discount_price": discount, "is_on_sale": true}).Error)

	resp, err := f.svc.Checkout(userCtx(777), domain.CheckoutRequest{
		Email: "buyer@example.com",
		Items: []domain.CheckoutItem{
			{VariantID: snowflake.ID(variantID).String(), Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1600, resp.Order.Subtotal)
	assert.EqualValues(t, 0, resp.Order.Shipping, "no destination means no shipping quote")
}

func TestCheckout_DepletingStockDeactivates(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 2, 1000)

	_, err := f.svc.Checkout(userCtx(777), domain.CheckoutRequest{
		Email: "buyer@example.com",
		Items: []domain.CheckoutItem{
			{VariantID: snowflake.ID(variantID).String(), Quantity: 2},
		},
	})
	require.NoError(t, err)

	var variant variantdomain.Variant
	require.NoError(t, f.conn.First(&variant, "id = ?", variantID).Error)
	assert.Equal(t, 0, variant.Stock)
	assert.False(t, variant.IsActive)

	// Sole variant sold out, so product and category turn off with it.
	var product productdomain.Product
	require.NoError(t, f.conn.First(&product, "id = ?", variant.ProductID).Error)
	assert.False(t, product.IsActive)
	var category categorydomain.Category
	require.NoError(t, f.conn.First(&category, "id = ?", product.CategoryID).Error)
	assert.False(t, category.IsActive)
}

func TestCheckout_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 5, 1000)
	item := domain.CheckoutItem{VariantID: snowflake.ID(variantID).String(), Quantity: 1}

	_, err := f.svc.Checkout(context.Background(), domain.CheckoutRequest{
		Email: "buyer@example.com", Items: []domain.CheckoutItem{item},
	})
	assert.ErrorIs(t, err, domain.ErrNoUser)

	ctx := userCtx(777)

	_, err = f.svc.Checkout(ctx, domain.CheckoutRequest{Email: "buyer@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = f.svc.Checkout(ctx, domain.CheckoutRequest{
		Email: "not-an-email", Items: []domain.CheckoutItem{item},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = f.svc.Checkout(ctx, domain.CheckoutRequest{
		Email: "buyer@example.com",
		Items: []domain.CheckoutItem{{VariantID: item.VariantID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.svc.Checkout(ctx, domain.CheckoutRequest{
		Email: "buyer@example.com",
		Items: []domain.CheckoutItem{{VariantID: item.VariantID, Quantity: 6}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestCheckout_InactiveVariantUnavailable(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 5, 1000)
	require.NoError(t, f.conn.Model(&variantdomain.Variant{}).
		Where("id = ?", variantID).
		Update("is_active", false).Error)

	_, err := f.svc.Checkout(userCtx(777), domain.CheckoutRequest{
		Email: "buyer@example.com",
		Items: []domain.CheckoutItem{
			{VariantID: snowflake.ID(variantID).String(), Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, domain.ErrVariantUnavailable)
}

func TestCheckout_SessionFailureKeepsOrderPending(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 5, 1000)
	f.checkout.err = errors.New("provider down")

	_, err := f.svc.Checkout(userCtx(777), domain.CheckoutRequest{
		Email: "buyer@example.com",
		Items: []domain.CheckoutItem{
			{VariantID: snowflake.ID(variantID).String(), Quantity: 1},
		},
	})
	require.Error(t, err)

	// The order and its stock movement survive; only the payment session is
	// missing and can be recreated later.
	var order domain.Order
	require.NoError(t, f.conn.First(&order).Error)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PaymentUnpaid, order.PaymentStatus)
	assert.Empty(t, order.PaymentRef)

	var variant variantdomain.Variant
	require.NoError(t, f.conn.First(&variant, "id = ?", variantID).Error)
	assert.Equal(t, 4, variant.Stock)
}

func (f *fixture) checkoutOne(t *testing.T, userID int64, variantID int64) *domain.Response {
	t.Helper()
	resp, err := f.svc.Checkout(userCtx(userID), domain.CheckoutRequest{
		Email: "buyer@example.com",
		Items: []domain.CheckoutItem{
			{VariantID: snowflake.ID(variantID).String(), Quantity: 1},
		},
	})
	require.NoError(t, err)
	return &resp.Order
}

func TestApplyPaymentEvent_SucceededThenReplay(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 5, 1000)
	order := f.checkoutOne(t, 777, variantID)

	orderID, err := snowflake.ParseString(order.ID)
	require.NoError(t, err)

	event := &paymentdomain.PaymentEvent{
		Provider:          "stripe",
		ProviderPaymentID: "pi_123",
		Type:              paymentdomain.EventTypePaymentSucceeded,
		OrderID:           orderID.Int64(),
	}
	require.NoError(t, f.svc.ApplyPaymentEvent(context.Background(), event))

	got, err := f.svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, got.Status)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
	assert.Len(t, f.email.sent, 1, "confirmation mail goes out on success")

	// A replayed success is absorbed without a second transition or mail.
	require.NoError(t, f.svc.ApplyPaymentEvent(context.Background(), event))
	assert.Len(t, f.email.sent, 1)
}

func TestApplyPaymentEvent_StaleFailureIgnoredAfterPaid(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 5, 1000)
	order := f.checkoutOne(t, 777, variantID)

	orderID, err := snowflake.ParseString(order.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.ApplyPaymentEvent(context.Background(), &paymentdomain.PaymentEvent{
		Provider: "stripe", Type: paymentdomain.EventTypePaymentSucceeded, OrderID: orderID.Int64(),
	}))
	require.NoError(t, f.svc.ApplyPaymentEvent(context.Background(), &paymentdomain.PaymentEvent{
		Provider: "stripe", Type: paymentdomain.EventTypePaymentFailed, OrderID: orderID.Int64(),
	}))

	got, err := f.svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
}

func TestApplyPaymentEvent_RefundCancels(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 5, 1000)
	order := f.checkoutOne(t, 777, variantID)

	orderID, err := snowflake.ParseString(order.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.ApplyPaymentEvent(context.Background(), &paymentdomain.PaymentEvent{
		Provider: "stripe", Type: paymentdomain.EventTypeRefunded, OrderID: orderID.Int64(),
	}))

	got, err := f.svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, domain.PaymentRefunded, got.PaymentStatus)
}

func TestApplyPaymentEvent_UnknownType(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 5, 1000)
	order := f.checkoutOne(t, 777, variantID)

	orderID, err := snowflake.ParseString(order.ID)
	require.NoError(t, err)

	err = f.svc.ApplyPaymentEvent(context.Background(), &paymentdomain.PaymentEvent{
		Provider: "stripe", Type: "payment.unknown", OrderID: orderID.Int64(),
	})
	assert.ErrorIs(t, err, paymentdomain.ErrEventIgnored)
}

func TestGetMine_Ownership(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 5, 1000)
	order := f.checkoutOne(t, 777, variantID)

	got, err := f.svc.GetMine(userCtx(777), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.GetMine(userCtx(888), order.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestListMine_FiltersByUser(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 5, 1000)
	mine := f.checkoutOne(t, 777, variantID)
	f.checkoutOne(t, 888, variantID)

	items, meta, err := f.svc.ListMine(userCtx(777), domain.ListRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)
	assert.EqualValues(t, 1, meta.Total)
}

func TestReceipt_RequiresPayment(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 5, 1000)
	order := f.checkoutOne(t, 777, variantID)

	_, err := f.svc.Receipt(userCtx(777), order.ID)
	assert.ErrorIs(t, err, domain.ErrNotPaid)

	orderID, parseErr := snowflake.ParseString(order.ID)
	require.NoError(t, parseErr)
	require.NoError(t, f.svc.ApplyPaymentEvent(context.Background(), &paymentdomain.PaymentEvent{
		Provider: "stripe", Type: paymentdomain.EventTypePaymentSucceeded, OrderID: orderID.Int64(),
	}))

	reader, err := f.svc.Receipt(userCtx(777), order.ID)
	require.NoError(t, err)
	doc, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "%PDF")

	_, err = f.svc.Receipt(userCtx(888), order.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	variantID := f.seedVariant(t, 5, 1000)
	order := f.checkoutOne(t, 777, variantID)

	got, err := f.svc.UpdateStatus(context.Background(), domain.UpdateStatusRequest{
		ID: order.ID, Status: domain.StatusShipped,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, got.Status)

	_, err = f.svc.UpdateStatus(context.Background(), domain.UpdateStatusRequest{
		ID: order.ID, Status: "teleported",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
