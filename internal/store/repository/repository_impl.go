package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/store/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, store *domain.Store) error {
	return db.WithContext(ctx).Create(store).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, store *domain.Store) error {
	return db.WithContext(ctx).
		Model(&domain.Store{}).
		Where("id = ?", store.ID).
		Updates(map[string]any{
			"name":        store.Name,
			"description": store.Description,
			"admin_id":    store.AdminID,
			"updated_at":  store.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Store, error) {
	var store domain.Store
	err := db.WithContext(ctx).Where("id = ?", id).First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Store, error) {
	var store domain.Store
	err := db.WithContext(ctx).Where("name = ?", name).First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Store, error) {
	stmt := db.WithContext(ctx).Model(&domain.Store{})
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.AdminID != 0 {
		stmt = stmt.Where("admin_id = ?", filter.AdminID)
	}
	var stores []domain.Store
	err := stmt.Order("created_at desc, id desc").Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Store{}).Error
}

func (r *repo) ManagerIDs(ctx context.Context, db *gorm.DB, storeID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Table("store_managers").
		Where("store_id = ?", storeID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) ReplaceManagers(ctx context.Context, db *gorm.DB, storeID snowflake.ID, userIDs []snowflake.ID) error {
	if err := db.WithContext(ctx).Exec(`DELETE FROM store_managers WHERE store_id = ?`, storeID).Error; err != nil {
		return err
	}
	for _, userID := range userIDs {
		link := domain.StoreManager{StoreID: storeID, UserID: userID}
		if err := db.WithContext(ctx).Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) CountProducts(ctx context.Context, db *gorm.DB, storeID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Table("products").Where("store_id = ?", storeID).Count(&count).Error
	return count, err
}

func (r *repo) CountOrders(ctx context.Context, db *gorm.DB, storeID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Table("orders").Where("store_id = ?", storeID).Count(&count).Error
	return count, err
}
