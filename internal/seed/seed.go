package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/config"
	userdomain "github.com/smallbiznis/storefront/internal/user/domain"
	"gorm.io/gorm"
)

// EnsureDefaultAdmin seeds the bootstrap administrator for fresh installs.
func EnsureDefaultAdmin(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user userdomain.User
		err := tx.WithContext(ctx).
			Where("username = ?", cfg.Bootstrap.DefaultAdminUsername).
			First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		user = userdomain.User{
			ID:        node.Generate(),
			Username:  cfg.Bootstrap.DefaultAdminUsername,
			Email:     cfg.Bootstrap.DefaultAdminEmail,
			Role:      "admin",
			CreatedAt: time.Now().UTC(),
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}
