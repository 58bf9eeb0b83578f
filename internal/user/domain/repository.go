package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]User, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]User, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// Protect-on-delete dependents.
	CountAdministeredStores(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	CountCustomerOrders(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	RemoveManagerLinks(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
