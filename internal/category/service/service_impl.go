package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/lokapasar/internal/category/domain"
	"github.com/smallbiznis/lokapasar/internal/clock"
	"github.com/smallbiznis/lokapasar/pkg/db"
	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"github.com/smallbiznis/lokapasar/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("category.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	description := trimPtr(req.Description)

	now := s.clock.Now()
	c := &domain.Category{
		ID:          s.genID.Generate().Int64(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: description,
		IsActive:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, s.db, c); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}

	resp := s.toResponse(c)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, *pagination.Meta, error) {
	mode, ok := listquery.ParseMode(strings.TrimSpace(req.Mode))
	if !ok {
		mode = listquery.ModeAll
	}

	opts := listquery.Options{
		Page:         req.Page,
		Limit:        req.Limit,
		DefaultLimit: pagination.DefaultStorefrontLimit,
		Search:       strings.TrimSpace(req.Search),
		SearchColumn: "name",
		IsActive:     req.IsActive,
		Mode:         mode,
		Relation: listquery.Relation{
			Table:       "products",
			ForeignKey:  "category_id",
			ParentTable: "categories",
		},
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
		SortColumns: map[string]bool{
			"created_at": true,
			"updated_at": true,
			"name":       true,
		},
	}
	if mode != listquery.ModeAll {
		active := true
		opts.NestedActive = &active
	}

	desc, err := listquery.Build(opts)
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

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	categoryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, categoryID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) GetBySlug(ctx context.Context, categorySlug string) (*domain.Response, error) {
	categorySlug = strings.TrimSpace(categorySlug)
	if categorySlug == "" {
		return nil, domain.ErrNotFound
	}

	item, err := s.repo.FindBySlug(ctx, s.db, categorySlug)
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
	categoryID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, categoryID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
		item.Slug = slug.Make(name)
	}
	if req.Description != nil {
		item.Description = trimPtr(req.Description)
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	categoryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, categoryID.Int64())
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		var productCount int64
		if err := tx.Table("products").Where("category_id = ?", item.ID).Count(&productCount).Error; err != nil {
			return err
		}
		if productCount > 0 {
			return domain.ErrHasProducts
		}

		return s.repo.Delete(ctx, tx, item.ID)
	})
}

func (s *Service) toResponse(c *domain.Category) domain.Response {
	return domain.Response{
		ID:          snowflake.ID(c.ID).String(),
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
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
