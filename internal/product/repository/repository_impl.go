package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"currency":    product.Currency,
			"updated_at":  product.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).Where("name = ?", name).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Product, error) {
	stmt := db.WithContext(ctx).Model(&domain.Product{})
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.StoreID != 0 {
		stmt = stmt.Where("store_id = ?", filter.StoreID)
	}
	if filter.Currency != "" {
		stmt = stmt.Where("currency = ?", filter.Currency)
	}
	var products []domain.Product
	err := stmt.Order("created_at desc, id desc").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{}).Error
}

func (r *repo) CountByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	return count, err
}

func (r *repo) RemoveOrderLines(ctx context.Context, db *gorm.DB, productID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM order_products WHERE product_id = ?`, productID).Error
}
