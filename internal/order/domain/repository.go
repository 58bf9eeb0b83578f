package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	StoreID     int64
	CustomerID  int64
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Order, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertLine(ctx context.Context, db *gorm.DB, line *OrderProduct) error
	FindLine(ctx context.Context, db *gorm.DB, orderID, productID snowflake.ID) (*OrderProduct, error)
	UpdateLineQuantity(ctx context.Context, db *gorm.DB, lineID snowflake.ID, quantity int64) error
	DeleteLine(ctx context.Context, db *gorm.DB, lineID snowflake.ID) error
	LinesByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]OrderProduct, error)
	RemoveLines(ctx context.Context, db *gorm.DB, orderID snowflake.ID) error
}
