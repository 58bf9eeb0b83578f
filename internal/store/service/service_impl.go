package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/integrity"
	"github.com/smallbiznis/storefront/internal/store/domain"
	userdomain "github.com/smallbiznis/storefront/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Users userdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	users userdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("store.service"),
		genID: p.GenID,
		repo:  p.Repo,
		users: p.Users,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name, description, err := validateNameDescription(req.Name, req.Description)
	if err != nil {
		return nil, err
	}

	adminRaw := strings.TrimSpace(req.AdminID)
	if adminRaw == "" {
		return nil, domain.ErrInvalidAdmin
	}
	adminID, err := snowflake.ParseString(adminRaw)
	if err != nil || adminID == 0 {
		return nil, domain.ErrInvalidAdmin
	}

	managerIDs, err := parseManagerIDs(req.ManagerIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	store := domain.Store{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: description,
		AdminID:     adminID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Metadata != nil {
		store.Metadata = datatypes.JSONMap(req.Metadata)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireUsers(ctx, tx, append([]snowflake.ID{adminID}, managerIDs...)); err != nil {
			return err
		}

		existing, err := s.repo.FindByName(ctx, tx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: store name %q taken", integrity.ErrUniquenessViolation, name)
		}

		if err := s.repo.Insert(ctx, tx, &store); err != nil {
			return integrity.Translate(err)
		}
		return s.repo.ReplaceManagers(ctx, tx, store.ID, managerIDs)
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(&store, managerIDs)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	storeID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	store, err := s.repo.FindByID(ctx, s.db, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, integrity.ErrNotFound
	}

	managerIDs, err := s.repo.ManagerIDs(ctx, s.db, storeID)
	if err != nil {
		return nil, err
	}

	resp := toResponse(store, managerIDs)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{Name: strings.TrimSpace(req.Name)}
	if raw := strings.TrimSpace(req.AdminID); raw != "" {
		adminID, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidAdmin
		}
		filter.AdminID = adminID.Int64()
	}

	stores, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(stores))
	for i := range stores {
		managerIDs, err := s.repo.ManagerIDs(ctx, s.db, stores[i].ID)
		if err != nil {
			return nil, err
		}
		resp = append(resp, toResponse(&stores[i], managerIDs))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	storeID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var resp domain.Response
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store, err := s.repo.FindByID(ctx, tx, storeID)
		if err != nil {
			return err
		}
		if store == nil {
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
			if name != store.Name {
				existing, err := s.repo.FindByName(ctx, tx, name)
				if err != nil {
					return err
				}
				if existing != nil && existing.ID != store.ID {
					return fmt.Errorf("%w: store name %q taken", integrity.ErrUniquenessViolation, name)
				}
			}
			store.Name = name
		}
		if req.Description != nil {
			description := strings.TrimSpace(*req.Description)
			if utf8.RuneCountInString(description) > domain.MaxDescriptionLen {
				return domain.ErrDescriptionTooLong
			}
			store.Description = description
		}
		if req.AdminID != nil {
			adminID, err := snowflake.ParseString(strings.TrimSpace(*req.AdminID))
			if err != nil || adminID == 0 {
				return domain.ErrInvalidAdmin
			}
			if err := s.requireUsers(ctx, tx, []snowflake.ID{adminID}); err != nil {
				return err
			}
			store.AdminID = adminID
		}

		managerIDs, err := s.repo.ManagerIDs(ctx, tx, storeID)
		if err != nil {
			return err
		}
		if req.ManagerIDs != nil {
			managerIDs, err = parseManagerIDs(req.ManagerIDs)
			if err != nil {
				return err
			}
			if err := s.requireUsers(ctx, tx, managerIDs); err != nil {
				return err
			}
			if err := s.repo.ReplaceManagers(ctx, tx, storeID, managerIDs); err != nil {
				return err
			}
		}

		store.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, store); err != nil {
			return integrity.Translate(err)
		}

		resp = toResponse(store, managerIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes a store unless products or orders still reference it.
func (s *Service) Delete(ctx context.Context, id string) error {
	storeID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store, err := s.repo.FindByID(ctx, tx, storeID)
		if err != nil {
			return err
		}
		if store == nil {
			return integrity.ErrNotFound
		}

		products, err := s.repo.CountProducts(ctx, tx, storeID)
		if err != nil {
			return err
		}
		if products > 0 {
			return integrity.Protectedf("store has %d product(s)", products)
		}

		orders, err := s.repo.CountOrders(ctx, tx, storeID)
		if err != nil {
			return err
		}
		if orders > 0 {
			return integrity.Protectedf("store has %d order(s)", orders)
		}

		if err := s.repo.ReplaceManagers(ctx, tx, storeID, nil); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, storeID); err != nil {
			return integrity.Translate(err)
		}
		return nil
	})
}

func (s *Service) requireUsers(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) error {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[snowflake.ID]struct{}, len(ids))
	unique := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	users, err := s.users.FindByIDs(ctx, tx, unique)
	if err != nil {
		return err
	}
	if len(users) != len(unique) {
		return fmt.Errorf("%w: unknown user reference", integrity.ErrReferentialIntegrity)
	}
	return nil
}

func validateNameDescription(rawName, rawDescription string) (string, string, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return "", "", domain.ErrInvalidName
	}
	// Limits count characters, not bytes.
	if utf8.RuneCountInString(name) > domain.MaxNameLen {
		return "", "", domain.ErrNameTooLong
	}
	description := strings.TrimSpace(rawDescription)
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLen {
		return "", "", domain.ErrDescriptionTooLong
	}
	return name, description, nil
}

func parseManagerIDs(raw []string) ([]snowflake.ID, error) {
	ids := make([]snowflake.ID, 0, len(raw))
	for _, value := range raw {
		id, err := snowflake.ParseString(strings.TrimSpace(value))
		if err != nil || id == 0 {
			return nil, integrity.Validationf("manager_ids", "invalid_id")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func toResponse(store *domain.Store, managerIDs []snowflake.ID) domain.Response {
	managers := make([]string, 0, len(managerIDs))
	for _, id := range managerIDs {
		managers = append(managers, id.String())
	}
	return domain.Response{
		ID:          store.ID.String(),
		Name:        store.Name,
		Description: store.Description,
		AdminID:     store.AdminID.String(),
		ManagerIDs:  managers,
		Metadata:    store.Metadata,
		CreatedAt:   store.CreatedAt,
		UpdatedAt:   store.UpdatedAt,
	}
}
