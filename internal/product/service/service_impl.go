package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/integrity"
	"github.com/smallbiznis/storefront/internal/product/domain"
	storedomain "github.com/smallbiznis/storefront/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Stores storedomain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	stores storedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("product.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		stores: p.Stores,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	// Limits count characters, not bytes.
	if utf8.RuneCountInString(name) > domain.MaxNameLen {
		return nil, domain.ErrNameTooLong
	}

	description := strings.TrimSpace(req.Description)
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLen {
		return nil, domain.ErrDescriptionTooLong
	}

	// Currency is an opaque code; only the declared length is checked.
	// Price is intentionally unbounded, negative values pass through.
	currency := strings.TrimSpace(req.Currency)
	if utf8.RuneCountInString(currency) > domain.MaxCurrencyLen {
		return nil, domain.ErrCurrencyTooLong
	}

	storeID, err := snowflake.ParseString(strings.TrimSpace(req.StoreID))
	if err != nil || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: description,
		StoreID:     storeID,
		Price:       req.Price,
		Currency:    currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Metadata != nil {
		product.Metadata = datatypes.JSONMap(req.Metadata)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store, err := s.stores.FindByID(ctx, tx, storeID)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("%w: unknown store reference", integrity.ErrReferentialIntegrity)
		}

		existing, err := s.repo.FindByName(ctx, tx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: product name %q taken", integrity.ErrUniquenessViolation, name)
		}

		if err := s.repo.Insert(ctx, tx, &product); err != nil {
			return integrity.Translate(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(&product)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, integrity.ErrNotFound
	}

	resp := toResponse(product)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{
		Name:     strings.TrimSpace(req.Name),
		Currency: strings.TrimSpace(req.Currency),
	}
	if raw := strings.TrimSpace(req.StoreID); raw != "" {
		storeID, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidStore
		}
		filter.StoreID = storeID.Int64()
	}

	products, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(products))
	for i := range products {
		resp = append(resp, toResponse(&products[i]))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	productID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var resp domain.Response
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return integrity.ErrNotFound
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return domain.ErrInvalidName
			}
			if utf8.RuneCountInString(name) > domain.MaxNameLen {
				return domain.ErrNameTooLong
			}
			if name != product.Name {
				existing, err := s.repo.FindByName(ctx, tx, name)
				if err != nil {
					return err
				}
				if existing != nil && existing.ID != product.ID {
					return fmt.Errorf("%w: product name %q taken", integrity.ErrUniquenessViolation, name)
				}
			}
			product.Name = name
		}
		if req.Description != nil {
			description := strings.TrimSpace(*req.Description)
			if utf8.RuneCountInString(description) > domain.MaxDescriptionLen {
				return domain.ErrDescriptionTooLong
			}
			product.Description = description
		}
		if req.Price != nil {
			product.Price = *req.Price
		}
		if req.Currency != nil {
			currency := strings.TrimSpace(*req.Currency)
			if utf8.RuneCountInString(currency) > domain.MaxCurrencyLen {
				return domain.ErrCurrencyTooLong
			}
			product.Currency = currency
		}

		product.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, product); err != nil {
			return integrity.Translate(err)
		}

		resp = toResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes a product and cascades into its order lines.
func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return integrity.ErrNotFound
		}

		if err := s.repo.RemoveOrderLines(ctx, tx, productID); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, productID); err != nil {
			return integrity.Translate(err)
		}
		return nil
	})
}

func (s *Service) CountByStore(ctx context.Context, storeID string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(storeID))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidStore
	}
	return s.repo.CountByStore(ctx, s.db, id)
}

func toResponse(product *domain.Product) domain.Response {
	return domain.Response{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		StoreID:     product.StoreID.String(),
		Price:       product.Price,
		Currency:    product.Currency,
		Metadata:    product.Metadata,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
