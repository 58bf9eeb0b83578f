package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/storefront/internal/integrity"
)

const (
	MaxNameLen        = 50
	MaxDescriptionLen = 256
	MaxCurrencyLen    = 3
)

type CreateRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	StoreID     string         `json:"store_id"`
	Price       float64        `json:"price"`
	Currency    string         `json:"currency"`
	Metadata    map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID          string
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Currency    *string  `json:"currency"`
}

type ListFilter struct {
	Name     string
	StoreID  int64
	Currency string
}

type ListRequest struct {
	Name     string
	StoreID  string
	Currency string
}

type Response struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	StoreID     string         `json:"store_id"`
	Price       float64        `json:"price"`
	Currency    string         `json:"currency"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	CountByStore(ctx context.Context, storeID string) (int64, error)
}

var (
	ErrInvalidName        = integrity.Validationf("name", "required")
	ErrNameTooLong        = integrity.Validationf("name", "too_long")
	ErrDescriptionTooLong = integrity.Validationf("description", "too_long")
	ErrInvalidStore       = integrity.Validationf("store_id", "required")
	ErrCurrencyTooLong    = integrity.Validationf("currency", "too_long")
	ErrInvalidID          = integrity.Validationf("id", "invalid_id")
)
