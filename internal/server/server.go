package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/smallbiznis/lokapasar/internal/activation"
	"github.com/smallbiznis/lokapasar/internal/banner"
	bannerdomain "github.com/smallbiznis/lokapasar/internal/banner/domain"
	"github.com/smallbiznis/lokapasar/internal/category"
	categorydomain "github.com/smallbiznis/lokapasar/internal/category/domain"
	"github.com/smallbiznis/lokapasar/internal/config"
	"github.com/smallbiznis/lokapasar/internal/observability"
	obsmiddleware "github.com/smallbiznis/lokapasar/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/lokapasar/internal/observability/metrics"
	obstracing "github.com/smallbiznis/lokapasar/internal/observability/tracing"
	"github.com/smallbiznis/lokapasar/internal/order"
	orderdomain "github.com/smallbiznis/lokapasar/internal/order/domain"
	"github.com/smallbiznis/lokapasar/internal/payment"
	"github.com/smallbiznis/lokapasar/internal/payment/webhook"
	"github.com/smallbiznis/lokapasar/internal/product"
	productdomain "github.com/smallbiznis/lokapasar/internal/product/domain"
	"github.com/smallbiznis/lokapasar/internal/providers/email"
	"github.com/smallbiznis/lokapasar/internal/providers/pdf"
	"github.com/smallbiznis/lokapasar/internal/providers/storage"
	"github.com/smallbiznis/lokapasar/internal/ratelimit"
	"github.com/smallbiznis/lokapasar/internal/review"
	reviewdomain "github.com/smallbiznis/lokapasar/internal/review/domain"
	"github.com/smallbiznis/lokapasar/internal/shipping"
	shippingdomain "github.com/smallbiznis/lokapasar/internal/shipping/domain"
	"github.com/smallbiznis/lokapasar/internal/variant"
	variantdomain "github.com/smallbiznis/lokapasar/internal/variant/domain"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	activation.Module,
	category.Module,
	product.Module,
	variant.Module,
	review.Module,
	banner.Module,
	order.Module,
	payment.Module,
	shipping.Module,
	ratelimit.Module,
	email.Module,
	pdf.Module,
	storage.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config

	categorySvc categorydomain.Service
	productSvc  productdomain.Service
	variantSvc  variantdomain.Service
	reviewSvc   reviewdomain.Service
	bannerSvc   bannerdomain.Service
	shippingSvc shippingdomain.Service
	orderSvc    orderdomain.Service
	webhookSvc  *webhook.Service

	checkoutLimiter *ratelimit.CheckoutLimiter
	metrics         *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin *gin.Engine
	Cfg config.Config

	CategorySvc categorydomain.Service
	ProductSvc  productdomain.Service
	VariantSvc  variantdomain.Service
	ReviewSvc   reviewdomain.Service
	BannerSvc   bannerdomain.Service
	ShippingSvc shippingdomain.Service
	OrderSvc    orderdomain.Service
	WebhookSvc  *webhook.Service

	CheckoutLimiter *ratelimit.CheckoutLimiter `optional:"true"`
	Metrics         *obsmetrics.Metrics        `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		categorySvc:     p.CategorySvc,
		productSvc:      p.ProductSvc,
		variantSvc:      p.VariantSvc,
		reviewSvc:       p.ReviewSvc,
		bannerSvc:       p.BannerSvc,
		shippingSvc:     p.ShippingSvc,
		orderSvc:        p.OrderSvc,
		webhookSvc:      p.WebhookSvc,
		checkoutLimiter: p.CheckoutLimiter,
		metrics:         p.Metrics,
	}

	svc.engine.Use(svc.UserContext())
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Catalog --------
	api.GET("/categories", s.ListCategories)
	api.GET("/categories/:id", s.GetCategoryByID)
	api.GET("/categories/slug/:slug", s.GetCategoryBySlug)

	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProductByID)
	api.GET("/products/slug/:slug", s.GetProductBySlug)
	api.GET("/products/:id/variants", s.ListProductVariants)

	// -------- Reviews --------
	api.GET("/products/:id/reviews", s.ListProductReviews)
	api.POST("/products/:id/reviews", s.UserRequired(), s.CreateReview)
	api.DELETE("/reviews/:review_id", s.UserRequired(), s.DeleteReview)

	// -------- Banners --------
	api.GET("/banners", s.ListLiveBanners)

	// -------- Shipping --------
	api.POST("/shipping/quote", s.QuoteShipping)

	// -------- Checkout & Orders --------
	api.POST("/checkout", s.UserRequired(), s.CheckoutRateLimit(), s.Checkout)
	api.GET("/orders", s.UserRequired(), s.ListMyOrders)
	api.GET("/orders/:id", s.UserRequired(), s.GetMyOrderByID)
	api.GET("/orders/:id/receipt", s.UserRequired(), s.GetOrderReceipt)

	// -------- Payment Webhooks --------
	api.POST("/payments/webhooks/:provider", s.HandlePaymentWebhook)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.UserRequired())

	// -------- Categories --------
	admin.GET("/categories", s.ListCategories)
	admin.POST("/categories", s.CreateCategory)
	admin.GET("/categories/:id", s.GetCategoryByID)
	admin.PATCH("/categories/:id", s.UpdateCategory)
	admin.DELETE("/categories/:id", s.DeleteCategory)

	// -------- Products --------
	admin.GET("/products", s.ListProducts)
	admin.POST("/products", s.CreateProduct)
	admin.GET("/products/:id", s.GetProductByID)
	admin.PATCH("/products/:id", s.UpdateProduct)
	admin.DELETE("/products/:id", s.DeleteProduct)
	admin.POST("/products/:id/images", s.UploadProductImage)
	admin.DELETE("/products/:id/images/:image_id", s.DeleteProductImage)

	// -------- Variants --------
	admin.GET("/products/:id/variants", s.ListProductVariants)
	admin.POST("/products/:id/variants", s.CreateVariant)
	admin.GET("/variants/:id", s.GetVariantByID)
	admin.PATCH("/variants/:id", s.UpdateVariant)
	admin.DELETE("/variants/:id", s.DeleteVariant)

	// -------- Banners --------
	admin.GET("/banners", s.ListBanners)
	admin.POST("/banners", s.CreateBanner)
	admin.PATCH("/banners/:id", s.UpdateBanner)
	admin.DELETE("/banners/:id", s.DeleteBanner)

	// -------- Orders --------
	admin.GET("/orders", s.ListOrders)
	admin.GET("/orders/:id", s.GetOrderByID)
	admin.PATCH("/orders/:id/status", s.UpdateOrderStatus)
}
