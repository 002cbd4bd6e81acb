package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/lokapasar/internal/banner/domain"
	"github.com/smallbiznis/lokapasar/internal/clock"
	"github.com/smallbiznis/lokapasar/internal/providers/storage"
	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"github.com/smallbiznis/lokapasar/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Repo    domain.Repository
	Storage storage.Provider
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	genID   *snowflake.Node
	repo    domain.Repository
	storage storage.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("banner.service"),
		clock:   p.Clock,
		genID:   p.GenID,
		repo:    p.Repo,
		storage: p.Storage,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	if req.StartsAt != nil && req.EndsAt != nil && req.StartsAt.After(*req.EndsAt) {
		return nil, domain.ErrInvalidWindow
	}

	now := s.clock.Now()
	b := &domain.Banner{
		ID:        s.genID.Generate().Int64(),
		Title:     title,
		TargetURL: trimPtr(req.TargetURL),
		Position:  req.Position,
		IsActive:  true,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.ImageContent != nil {
		upload, err := s.storage.Upload(ctx, req.ImageFilename, req.ImageContent)
		if err != nil {
			return nil, err
		}
		b.ImageURL = upload.URL
		b.PublicID = upload.PublicID
	}

	if err := s.repo.Create(ctx, s.db, b); err != nil {
		if b.PublicID != "" {
			if delErr := s.storage.Delete(ctx, b.PublicID); delErr != nil {
				s.log.Warn("compensating image delete failed",
					zap.String("public_id", b.PublicID),
					zap.Error(delErr),
				)
			}
		}
		return nil, err
	}

	resp := s.toResponse(b)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, *pagination.Meta, error) {
	desc, err := listquery.Build(listquery.Options{
		Page:         req.Page,
		Limit:        req.Limit,
		DefaultLimit: pagination.DefaultAdminLimit,
		Search:       strings.TrimSpace(req.Search),
		SearchColumn: "title",
		IsActive:     req.IsActive,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		DateColumn:   "created_at",
		SortBy:       strings.TrimSpace(req.SortBy),
		OrderBy:      strings.TrimSpace(req.OrderBy),
		SortColumns: map[string]bool{
			"created_at": true,
			"position":   true,
			"title":      true,
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

func (s *Service) ListLive(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.FindLive(ctx, s.db, s.clock.Now())
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	bannerID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, bannerID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		item.Title = title
	}
	if req.TargetURL != nil {
		item.TargetURL = trimPtr(req.TargetURL)
	}
	if req.Position != nil {
		item.Position = *req.Position
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if req.StartsAt != nil {
		item.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		item.EndsAt = req.EndsAt
	}
	if item.StartsAt != nil && item.EndsAt != nil && item.StartsAt.After(*item.EndsAt) {
		return nil, domain.ErrInvalidWindow
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	bannerID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, bannerID.Int64())
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, item.ID); err != nil {
		return err
	}

	if item.PublicID != "" {
		if err := s.storage.Delete(ctx, item.PublicID); err != nil {
			s.log.Warn("orphaned image cleanup failed",
				zap.String("public_id", item.PublicID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *Service) toResponse(b *domain.Banner) domain.Response {
	return domain.Response{
		ID:        snowflake.ID(b.ID).String(),
		Title:     b.Title,
		ImageURL:  b.ImageURL,
		TargetURL: b.TargetURL,
		Position:  b.Position,
		IsActive:  b.IsActive,
		StartsAt:  b.StartsAt,
		EndsAt:    b.EndsAt,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
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
