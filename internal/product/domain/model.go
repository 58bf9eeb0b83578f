package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Product struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"type:varchar(50);not null;uniqueIndex:ux_products_name" json:"name"`
	Description string            `gorm:"type:varchar(256)" json:"description"`
	StoreID     snowflake.ID      `gorm:"column:store_id;not null;index" json:"store_id"`
	Price       float64           `gorm:"not null" json:"price"`
	Currency    string            `gorm:"type:varchar(3);not null" json:"currency"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string { return "products" }
