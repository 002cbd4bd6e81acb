package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/lokapasar/internal/clock"
	productdomain "github.com/smallbiznis/lokapasar/internal/product/domain"
	"github.com/smallbiznis/lokapasar/internal/review/domain"
	"github.com/smallbiznis/lokapasar/internal/usercontext"
	"github.com/smallbiznis/lokapasar/pkg/db"
	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"github.com/smallbiznis/lokapasar/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	GenID       *snowflake.Node
	Repo        domain.Repository
	ProductRepo productdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	repo        domain.Repository
	productRepo productdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("review.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		repo:        p.Repo,
		productRepo: p.ProductRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrNoUser
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	if req.Rating < 1 || req.Rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	product, err := s.productRepo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, productdomain.ErrNotFound
	}

	existing, err := s.repo.FindByProductAndUser(ctx, s.db, product.ID, userID.Int64())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyReviewed
	}

	now := s.clock.Now()
	rv := &domain.Review{
		ID:        s.genID.Generate().Int64(),
		ProductID: product.ID,
		UserID:    userID.Int64(),
		Rating:    req.Rating,
		Title:     trimPtr(req.Title),
		Comment:   trimPtr(req.Comment),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, s.db, rv); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyReviewed
		}
		return nil, err
	}

	resp := s.toResponse(rv)
	return &resp, nil
}

func (s *Service) ListByProduct(ctx context.Context, req domain.ListRequest) ([]domain.Response, *pagination.Meta, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, nil, domain.ErrInvalidID
	}

	desc, err := listquery.Build(listquery.Options{
		Page:         req.Page,
		Limit:        req.Limit,
		DefaultLimit: pagination.DefaultStorefrontLimit,
		ExtraWhere:   map[string]any{"product_id": productID.Int64()},
		SortBy:       strings.TrimSpace(req.SortBy),
		OrderBy:      strings.TrimSpace(req.OrderBy),
		SortColumns: map[string]bool{
			"created_at": true,
			"rating":     true,
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

func (s *Service) Delete(ctx context.Context, id string) error {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.ErrNoUser
	}

	reviewID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	rv, err := s.repo.FindByID(ctx, s.db, reviewID.Int64())
	if err != nil {
		return err
	}
	if rv == nil {
		return domain.ErrNotFound
	}
	if rv.UserID != userID.Int64() {
		return domain.ErrNotOwner
	}

	return s.repo.Delete(ctx, s.db, rv.ID)
}

func (s *Service) toResponse(rv *domain.Review) domain.Response {
	return domain.Response{
		ID:        snowflake.ID(rv.ID).String(),
		ProductID: snowflake.ID(rv.ProductID).String(),
		UserID:    snowflake.ID(rv.UserID).String(),
		Rating:    rv.Rating,
		Title:     rv.Title,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
	}
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
