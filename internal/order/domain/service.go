package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/storefront/internal/integrity"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CreateRequest struct {
	StoreID    string        `json:"store_id"`
	CustomerID string        `json:"customer_id"`
	Items      []ItemRequest `json:"items"`
}

type ListRequest struct {
	PageToken   string
	PageSize    int
	StoreID     string
	CustomerID  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type Response struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	StoreID    string         `json:"store_id"`
	CustomerID string         `json:"customer_id"`
	Items      []ItemResponse `json:"items"`
}

type ListResponse struct {
	pagination.PageInfo
	Orders []Response `json:"orders"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Delete(ctx context.Context, id string) error

	AddItem(ctx context.Context, orderID string, item ItemRequest) (*Response, error)
	UpdateItemQuantity(ctx context.Context, orderID, productID string, quantity int64) (*Response, error)
	RemoveItem(ctx context.Context, orderID, productID string) (*Response, error)
}

var (
	ErrInvalidStore     = integrity.Validationf("store_id", "required")
	ErrInvalidCustomer  = integrity.Validationf("customer_id", "required")
	ErrInvalidProduct   = integrity.Validationf("product_id", "required")
	ErrNegativeQuantity = integrity.Validationf("quantity", "negative")
	ErrInvalidID        = integrity.Validationf("id", "invalid_id")
	ErrInvalidPageToken = integrity.Validationf("page_token", "invalid_cursor")
)
