package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activationdomain "github.com/smallbiznis/lokapasar/internal/activation/domain"
	"github.com/smallbiznis/lokapasar/internal/clock"
	productdomain "github.com/smallbiznis/lokapasar/internal/product/domain"
	"github.com/smallbiznis/lokapasar/internal/variant/domain"
	"github.com/smallbiznis/lokapasar/pkg/db"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	GenID       *snowflake.Node
	Repo        domain.Repository
	ProductRepo productdomain.Repository
	Activation  activationdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	repo        domain.Repository
	productRepo productdomain.Repository
	activation  activationdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("variant.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		repo:        p.Repo,
		productRepo: p.ProductRepo,
		activation:  p.Activation,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	product, err := s.productRepo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, productdomain.ErrNotFound
	}

	attribute, err := distinguishingAttribute(product.Type, req.Size, req.Amount, req.Unit)
	if err != nil {
		return nil, err
	}

	if req.Price <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	if req.Stock < 0 || req.WeightGrams < 0 {
		return nil, domain.ErrInvalidStock
	}
	if err := validateDiscount(req.Price, req.DiscountPrice, req.DiscountPercentage); err != nil {
		return nil, err
	}

	// Duplicate attributes are rejected before the transaction starts. The
	// composite unique index still backs this up under concurrent creates.
	existing, err := s.repo.FindByAttribute(ctx, s.db, product.ID, attribute)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateAttribute
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	if req.Stock == 0 {
		active = false
	}

	now := s.clock.Now()
	v := &domain.Variant{
		ID:                 s.genID.Generate().Int64(),
		ProductID:          product.ID,
		SKU:                generateSKU(product.Title, attribute),
		Name:               fmt.Sprintf("%s %s", product.Title, attribute),
		Attribute:          attribute,
		Size:               req.Size,
		Amount:             req.Amount,
		Unit:               req.Unit,
		Price:              req.Price,
		DiscountPrice:      req.DiscountPrice,
		DiscountPercentage: req.DiscountPercentage,
		IsOnSale:           req.DiscountPrice != nil,
		Stock:              req.Stock,
		WeightGrams:        req.WeightGrams,
		IsActive:           active,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.createWithRetry(ctx, tx, v); err != nil {
			return err
		}
		// New inventory unconditionally reactivates inactive ancestors,
		// whatever the variant's own flag.
		return s.activation.ReactivateAncestors(ctx, tx, product.ID)
	})
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(v)
	return &resp, nil
}

// createWithRetry inserts the variant, regenerating the SKU once when the
// random suffix collides. An attribute collision is a real conflict and is
// never retried. Each insert runs in a nested transaction so that on postgres
// a unique violation rolls back to a savepoint instead of aborting the
// enclosing transaction; without it the follow-up lookup and retry would fail
// with SQLSTATE 25P02.
func (s *Service) createWithRetry(ctx context.Context, tx *gorm.DB, v *domain.Variant) error {
	err := tx.Transaction(func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, v)
	})
	if err == nil {
		return nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return err
	}

	existing, findErr := s.repo.FindByAttribute(ctx, tx, v.ProductID, v.Attribute)
	if findErr != nil {
		return findErr
	}
	if existing != nil {
		return domain.ErrDuplicateAttribute
	}

	v.SKU = generateSKU(v.Name, v.Attribute)
	s.log.Warn("sku collision, regenerated",
		zap.Int64("product_id", v.ProductID),
		zap.String("sku", v.SKU),
	)
	err = tx.Transaction(func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, v)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrDuplicateAttribute
		}
		return err
	}
	return nil
}

func (s *Service) ListByProduct(ctx context.Context, productIDRaw string) ([]domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(productIDRaw))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	items, err := s.repo.FindByProduct(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	variantID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, variantID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	variantID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, variantID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, domain.ErrInvalidPrice
		}
		item.Price = *req.Price
	}
	if req.ClearDiscount {
		item.DiscountPrice = nil
		item.DiscountPercentage = nil
	} else {
		if req.DiscountPrice != nil {
			item.DiscountPrice = req.DiscountPrice
		}
		if req.DiscountPercentage != nil {
			item.DiscountPercentage = req.DiscountPercentage
		}
	}
	if err := validateDiscount(item.Price, item.DiscountPrice, item.DiscountPercentage); err != nil {
		return nil, err
	}
	item.IsOnSale = item.DiscountPrice != nil

	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, domain.ErrInvalidStock
		}
		item.Stock = *req.Stock
	}
	if req.WeightGrams != nil {
		if *req.WeightGrams < 0 {
			return nil, domain.ErrInvalidStock
		}
		item.WeightGrams = *req.WeightGrams
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	// Depleted stock always deactivates, whatever the request said.
	if item.Stock == 0 {
		item.IsActive = false
	}

	item.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, item); err != nil {
			return err
		}
		return s.activation.ReconcileProduct(ctx, tx, item.ProductID)
	})
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	variantID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, variantID.Int64())
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		if err := s.repo.Delete(ctx, tx, item.ID); err != nil {
			return err
		}
		return s.activation.ReconcileProduct(ctx, tx, item.ProductID)
	})
}

func distinguishingAttribute(productType string, size *string, amount *int64, unit *string) (string, error) {
	switch productType {
	case productdomain.TypeAmount:
		if amount == nil || *amount <= 0 {
			return "", domain.ErrMissingAmount
		}
		unitValue := ""
		if unit != nil {
			unitValue = strings.TrimSpace(*unit)
		}
		if unitValue == "" {
			return "", domain.ErrMissingAmount
		}
		return fmt.Sprintf("%d %s", *amount, unitValue), nil
	default:
		if size == nil || strings.TrimSpace(*size) == "" {
			return "", domain.ErrMissingSize
		}
		return strings.TrimSpace(*size), nil
	}
}

func validateDiscount(price int64, discountPrice *int64, discountPercentage *int) error {
	if discountPrice != nil && (*discountPrice <= 0 || *discountPrice >= price) {
		return domain.ErrInvalidDiscount
	}
	if discountPercentage != nil && (*discountPercentage <= 0 || *discountPercentage >= 100) {
		return domain.ErrInvalidDiscount
	}
	return nil
}

// generateSKU derives a SKU from the product title and the distinguishing
// attribute plus a short random suffix. Uniqueness is practical, not proven;
// the insert path retries once on a suffix collision.
func generateSKU(title, attribute string) string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return strings.ToUpper(fmt.Sprintf("%s-%s-%s",
		slug.Make(title),
		slug.Make(attribute),
		hex.EncodeToString(buf),
	))
}

func (s *Service) toResponse(v *domain.Variant) domain.Response {
	return domain.Response{
		ID:                 snowflake.ID(v.ID).String(),
		ProductID:          snowflake.ID(v.ProductID).String(),
		SKU:                v.SKU,
		Name:               v.Name,
		Attribute:          v.Attribute,
		Size:               v.Size,
		Amount:             v.Amount,
		Unit:               v.Unit,
		Price:              v.Price,
		DiscountPrice:      v.DiscountPrice,
		DiscountPercentage: v.DiscountPercentage,
		IsOnSale:           v.IsOnSale,
		Stock:              v.Stock,
		WeightGrams:        v.WeightGrams,
		IsActive:           v.IsActive,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}
