package migration

import (
	"github.com/smallbiznis/storefront/internal/config"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/internal/seed"
	storedomain "github.com/smallbiznis/storefront/internal/store/domain"
	userdomain "github.com/smallbiznis/storefront/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql/sqlite development modes derive the schema from the models.
			if err := conn.AutoMigrate(
				&userdomain.User{},
				&storedomain.Store{},
				&storedomain.StoreManager{},
				&productdomain.Product{},
				&orderdomain.Order{},
				&orderdomain.OrderProduct{},
			); err != nil {
				return err
			}
		}

		if cfg.Bootstrap.EnsureDefaultAdmin {
			return seed.EnsureDefaultAdmin(conn, cfg)
		}
		return nil
	}),
)
