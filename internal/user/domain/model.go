package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type User struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Username  string       `gorm:"type:text;not null;uniqueIndex:ux_users_username" json:"username"`
	Email     string       `gorm:"type:text" json:"email"`
	Role      string       `gorm:"type:text;not null;default:'staff'" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (User) TableName() string { return "users" }
