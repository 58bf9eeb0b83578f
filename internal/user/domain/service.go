package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/storefront/internal/integrity"
)

type CreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type ListFilter struct {
	Username string
	Role     string
}

type ListRequest struct {
	Username string
	Role     string
}

type Response struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidUsername = integrity.Validationf("username", "required")
	ErrInvalidRole     = integrity.Validationf("role", "unknown_role")
	ErrInvalidID       = integrity.Validationf("id", "invalid_id")
)
