package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/integrity"
	"github.com/smallbiznis/storefront/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, domain.ErrInvalidUsername
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = "staff"
	}
	switch role {
	case "admin", "staff":
	default:
		return nil, domain.ErrInvalidRole
	}

	user := domain.User{
		ID:        s.genID.Generate(),
		Username:  username,
		Email:     strings.TrimSpace(req.Email),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		return nil, integrity.Translate(err)
	}

	resp := toResponse(&user)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, integrity.ErrNotFound
	}

	resp := toResponse(user)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	users, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Username: strings.TrimSpace(req.Username),
		Role:     strings.TrimSpace(req.Role),
	})
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(users))
	for i := range users {
		resp = append(resp, toResponse(&users[i]))
	}
	return resp, nil
}

// Delete removes a user. Users referenced as a store admin or an order
// customer are protected; manager memberships are unlinked silently.
func (s *Service) Delete(ctx context.Context, id string) error {
	userID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.repo.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return integrity.ErrNotFound
		}

		stores, err := s.repo.CountAdministeredStores(ctx, tx, userID)
		if err != nil {
			return err
		}
		if stores > 0 {
			return integrity.Protectedf("user administers %d store(s)", stores)
		}

		orders, err := s.repo.CountCustomerOrders(ctx, tx, userID)
		if err != nil {
			return err
		}
		if orders > 0 {
			return integrity.Protectedf("user is the customer of %d order(s)", orders)
		}

		if err := s.repo.RemoveManagerLinks(ctx, tx, userID); err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, tx, userID); err != nil {
			return integrity.Translate(err)
		}
		return nil
	})
}

func toResponse(user *domain.User) domain.Response {
	return domain.Response{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
