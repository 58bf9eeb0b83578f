package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/order/domain"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Order, error) {
	stmt := db.WithContext(ctx).Model(&domain.Order{})
	if filter.StoreID != 0 {
		stmt = stmt.Where("store_id = ?", filter.StoreID)
	}
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)", createdAt, createdAt, id)
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}

	var orders []*domain.Order
	err := stmt.Order("created_at desc, id desc").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Order{}).Error
}

func (r *repo) InsertLine(ctx context.Context, db *gorm.DB, line *domain.OrderProduct) error {
	return db.WithContext(ctx).Create(line).Error
}

func (r *repo) FindLine(ctx context.Context, db *gorm.DB, orderID, productID snowflake.ID) (*domain.OrderProduct, error) {
	var line domain.OrderProduct
	err := db.WithContext(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

func (r *repo) UpdateLineQuantity(ctx context.Context, db *gorm.DB, lineID snowflake.ID, quantity int64) error {
	return db.WithContext(ctx).
		Model(&domain.OrderProduct{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

func (r *repo) DeleteLine(ctx context.Context, db *gorm.DB, lineID snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", lineID).Delete(&domain.OrderProduct{}).Error
}

func (r *repo) LinesByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.OrderProduct, error) {
	var lines []domain.OrderProduct
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) RemoveLines(ctx context.Context, db *gorm.DB, orderID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM order_products WHERE order_id = ?`, orderID).Error
}
