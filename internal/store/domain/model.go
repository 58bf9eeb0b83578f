package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Store struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"type:varchar(50);not null;uniqueIndex:ux_stores_name" json:"name"`
	Description string            `gorm:"type:varchar(256)" json:"description"`
	AdminID     snowflake.ID      `gorm:"column:admin_id;not null;index" json:"admin_id"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Store) TableName() string { return "stores" }

// StoreManager links a store to a managing user. The composite key keeps
// the pair unique; rows are removed silently when either side goes away.
type StoreManager struct {
	StoreID snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"store_id"`
	UserID  snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
}

func (StoreManager) TableName() string { return "store_managers" }
