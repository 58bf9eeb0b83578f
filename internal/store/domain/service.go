package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/storefront/internal/integrity"
)

const (
	MaxNameLen        = 50
	MaxDescriptionLen = 256
)

type CreateRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	AdminID     string         `json:"admin_id"`
	ManagerIDs  []string       `json:"manager_ids"`
	Metadata    map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID          string
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	AdminID     *string  `json:"admin_id"`
	ManagerIDs  []string `json:"manager_ids"`
}

type ListFilter struct {
	Name    string
	AdminID int64
}

type ListRequest struct {
	Name    string
	AdminID string
}

type Response struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	AdminID     string         `json:"admin_id"`
	ManagerIDs  []string       `json:"manager_ids"`
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
}

var (
	ErrInvalidName        = integrity.Validationf("name", "required")
	ErrNameTooLong        = integrity.Validationf("name", "too_long")
	ErrDescriptionTooLong = integrity.Validationf("description", "too_long")
	ErrInvalidAdmin       = integrity.Validationf("admin_id", "required")
	ErrInvalidID          = integrity.Validationf("id", "invalid_id")
)
