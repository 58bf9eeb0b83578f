package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []domain.User
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.User, error) {
	stmt := db.WithContext(ctx).Model(&domain.User{})
	if filter.Username != "" {
		stmt = stmt.Where("username = ?", filter.Username)
	}
	if filter.Role != "" {
		stmt = stmt.Where("role = ?", filter.Role)
	}
	var users []domain.User
	err := stmt.Order("created_at desc, id desc").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{}).Error
}

func (r *repo) CountAdministeredStores(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Table("stores").Where("admin_id = ?", id).Count(&count).Error
	return count, err
}

func (r *repo) CountCustomerOrders(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Table("orders").Where("customer_id = ?", id).Count(&count).Error
	return count, err
}

func (r *repo) RemoveManagerLinks(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM store_managers WHERE user_id = ?`, id).Error
}
