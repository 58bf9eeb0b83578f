package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, store *Store) error
	Update(ctx context.Context, db *gorm.DB, store *Store) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Store, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Store, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Store, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	ManagerIDs(ctx context.Context, db *gorm.DB, storeID snowflake.ID) ([]snowflake.ID, error)
	ReplaceManagers(ctx context.Context, db *gorm.DB, storeID snowflake.ID, userIDs []snowflake.ID) error

	// Protect-on-delete dependents.
	CountProducts(ctx context.Context, db *gorm.DB, storeID snowflake.ID) (int64, error)
	CountOrders(ctx context.Context, db *gorm.DB, storeID snowflake.ID) (int64, error)
}
