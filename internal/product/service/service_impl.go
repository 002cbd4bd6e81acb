package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	activationdomain "github.com/smallbiznis/lokapasar/internal/activation/domain"
	categorydomain "github.com/smallbiznis/lokapasar/internal/category/domain"
	"github.com/smallbiznis/lokapasar/internal/clock"
	"github.com/smallbiznis/lokapasar/internal/product/domain"
	"github.com/smallbiznis/lokapasar/internal/providers/storage"
	"github.com/smallbiznis/lokapasar/pkg/db"
	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"github.com/smallbiznis/lokapasar/pkg/db/option"
	"github.com/smallbiznis/lokapasar/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	GenID        *snowflake.Node
	Repo         domain.Repository
	CategoryRepo categorydomain.Repository
	Activation   activationdomain.Service
	Storage      storage.Provider
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	genID        *snowflake.Node
	repo         domain.Repository
	categoryRepo categorydomain.Repository
	activation   activationdomain.Service
	storage      storage.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("product.service"),
		clock:        p.Clock,
		genID:        p.GenID,
		repo:         p.Repo,
		categoryRepo: p.CategoryRepo,
		activation:   p.Activation,
		storage:      p.Storage,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	productType := strings.TrimSpace(req.Type)
	if productType == "" {
		productType = domain.TypeSize
	}
	if productType != domain.TypeSize && productType != domain.TypeAmount {
		return nil, domain.ErrInvalidType
	}

	categoryID, err := snowflake.ParseString(strings.TrimSpace(req.CategoryID))
	if err != nil {
		return nil, domain.ErrInvalidCategory
	}
	category, err := s.categoryRepo.FindByID(ctx, s.db, categoryID.Int64())
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, categorydomain.ErrNotFound
	}

	now := s.clock.Now()
	p := &domain.Product{
		ID:          s.genID.Generate().Int64(),
		CategoryID:  category.ID,
		Title:       title,
		Slug:        slug.Make(title),
		Description: trimPtr(req.Description),
		Type:        productType,
		// A product with no variants has no sellable inventory yet.
		IsActive:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Create(ctx, s.db, p); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrTitleTaken
		}
		return nil, err
	}

	resp := s.toResponse(p)
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
		SearchColumn: "title",
		IsActive:     req.IsActive,
		// Price bounds live on variants, so they are validated here but
		// rendered into the variant EXISTS condition below.
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		Mode:     mode,
		Relation: listquery.Relation{
			Table:       "product_variants",
			ForeignKey:  "product_id",
			ParentTable: "products",
		},
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
		SortColumns: map[string]bool{
			"created_at": true,
			"updated_at": true,
			"title":      true,
		},
	}
	if mode != listquery.ModeAll {
		active := true
		opts.NestedActive = &active
	}
	if req.CategoryID != "" {
		categoryID, err := snowflake.ParseString(strings.TrimSpace(req.CategoryID))
		if err != nil {
			return nil, nil, domain.ErrInvalidCategory
		}
		opts.ExtraWhere = map[string]any{"category_id": categoryID.Int64()}
	}

	desc, err := listquery.Build(opts)
	if err != nil {
		return nil, nil, err
	}
	if variantCond := variantFilter(req); variantCond != nil {
		desc.Where = append(desc.Where, variantCond)
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

// variantFilter renders stock/sale/price criteria as a single EXISTS over the
// product's variants, so "in stock" means "has at least one variant in stock".
func variantFilter(req domain.ListRequest) option.QueryOption {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if req.InStock != nil {
		if *req.InStock {
			conditions = append(conditions, "product_variants.stock > 0")
		} else {
			conditions = append(conditions, "product_variants.stock <= 0")
		}
	}
	if req.IsOnSale != nil {
		conditions = append(conditions, "product_variants.is_on_sale = ?")
		args = append(args, *req.IsOnSale)
	}
	if req.MinPrice != nil {
		conditions = append(conditions, "product_variants.price >= ?")
		args = append(args, *req.MinPrice)
	}
	if req.MaxPrice != nil {
		conditions = append(conditions, "product_variants.price <= ?")
		args = append(args, *req.MaxPrice)
	}
	if len(conditions) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		"EXISTS (SELECT 1 FROM product_variants WHERE product_variants.product_id = products.id AND %s)",
		strings.Join(conditions, " AND "),
	)
	return option.Where(query, args...)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) GetBySlug(ctx context.Context, productSlug string) (*domain.Response, error) {
	productSlug = strings.TrimSpace(productSlug)
	if productSlug == "" {
		return nil, domain.ErrNotFound
	}

	item, err := s.repo.FindBySlug(ctx, s.db, productSlug)
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
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	previousCategoryID := item.CategoryID

	if req.CategoryID != nil {
		categoryID, err := snowflake.ParseString(strings.TrimSpace(*req.CategoryID))
		if err != nil {
			return nil, domain.ErrInvalidCategory
		}
		category, err := s.categoryRepo.FindByID(ctx, s.db, categoryID.Int64())
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, categorydomain.ErrNotFound
		}
		item.CategoryID = category.ID
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		item.Title = title
		item.Slug = slug.Make(title)
	}
	if req.Description != nil {
		item.Description = trimPtr(req.Description)
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, item); err != nil {
			return err
		}
		if err := s.activation.ReconcileCategory(ctx, tx, item.CategoryID); err != nil {
			return err
		}
		if previousCategoryID != item.CategoryID {
			return s.activation.ReconcileCategory(ctx, tx, previousCategoryID)
		}
		return nil
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrTitleTaken
		}
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	var orphanedPublicIDs []string

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, productID.Int64())
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		for _, img := range item.Images {
			if img.PublicID != "" {
				orphanedPublicIDs = append(orphanedPublicIDs, img.PublicID)
			}
		}

		if err := tx.Exec("DELETE FROM product_variants WHERE product_id = ?", item.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM product_images WHERE product_id = ?", item.ID).Error; err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, item.ID); err != nil {
			return err
		}
		return s.activation.ReconcileCategory(ctx, tx, item.CategoryID)
	})
	if err != nil {
		return err
	}

	// Stored images are not transactional with the row deletes. Cleanup
	// failures leave orphans that are logged, never retried.
	for _, publicID := range orphanedPublicIDs {
		if err := s.storage.Delete(ctx, publicID); err != nil {
			s.log.Warn("orphaned image cleanup failed",
				zap.String("public_id", publicID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *Service) UploadImage(ctx context.Context, req domain.UploadImageRequest) (*domain.ImageResponse, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	upload, err := s.storage.Upload(ctx, req.Filename, req.Content)
	if err != nil {
		return nil, err
	}

	img := &domain.ProductImage{
		ID:        s.genID.Generate().Int64(),
		ProductID: item.ID,
		URL:       upload.URL,
		PublicID:  upload.PublicID,
		Position:  req.Position,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.AddImage(ctx, s.db, img); err != nil {
		// Compensating delete so a failed row insert does not strand the
		// uploaded asset.
		if delErr := s.storage.Delete(ctx, upload.PublicID); delErr != nil {
			s.log.Warn("compensating image delete failed",
				zap.String("public_id", upload.PublicID),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	return &domain.ImageResponse{
		ID:       snowflake.ID(img.ID).String(),
		URL:      img.URL,
		Position: img.Position,
	}, nil
}

func (s *Service) DeleteImage(ctx context.Context, productIDRaw, imageIDRaw string) error {
	productID, err := snowflake.ParseString(strings.TrimSpace(productIDRaw))
	if err != nil {
		return domain.ErrInvalidID
	}
	imageID, err := snowflake.ParseString(strings.TrimSpace(imageIDRaw))
	if err != nil {
		return domain.ErrInvalidID
	}

	img, err := s.repo.FindImage(ctx, s.db, productID.Int64(), imageID.Int64())
	if err != nil {
		return err
	}
	if img == nil {
		return domain.ErrImageNotFound
	}

	if err := s.repo.DeleteImage(ctx, s.db, productID.Int64(), imageID.Int64()); err != nil {
		return err
	}

	if img.PublicID != "" {
		if err := s.storage.Delete(ctx, img.PublicID); err != nil {
			s.log.Warn("orphaned image cleanup failed",
				zap.String("public_id", img.PublicID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *Service) toResponse(p *domain.Product) domain.Response {
	resp := domain.Response{
		ID:          snowflake.ID(p.ID).String(),
		CategoryID:  snowflake.ID(p.CategoryID).String(),
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		Type:        p.Type,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if len(p.Metadata) > 0 {
		resp.Metadata = map[string]any(p.Metadata)
	}
	for _, img := range p.Images {
		resp.Images = append(resp.Images, domain.ImageResponse{
			ID:       snowflake.ID(img.ID).String(),
			URL:      img.URL,
			Position: img.Position,
		})
	}
	return resp
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
