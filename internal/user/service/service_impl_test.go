package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/storefront/internal/integrity"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	storedomain "github.com/smallbiznis/storefront/internal/store/domain"
	"github.com/smallbiznis/storefront/internal/user/domain"
	"github.com/smallbiznis/storefront/internal/user/repository"
	"github.com/smallbiznis/storefront/internal/user/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&storedomain.Store{},
		&storedomain.StoreManager{},
		&orderdomain.Order{},
		&orderdomain.OrderProduct{},
	))
	return db
}

func newUserService(t *testing.T, db *gorm.DB) (domain.Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	svc := service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node
}

func TestCreateUserDefaultsRole(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newUserService(t, db)

	resp, err := svc.Create(ctx, domain.CreateRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	require.Equal(t, "staff", resp.Role)

	got, err := svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newUserService(t, db)

	_, err := svc.Create(ctx, domain.CreateRequest{Username: "bob", Role: "superuser"})
	require.ErrorIs(t, err, integrity.ErrValidation)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newUserService(t, db)

	_, err := svc.Create(ctx, domain.CreateRequest{Username: "carol"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{Username: "carol"})
	require.ErrorIs(t, err, integrity.ErrUniquenessViolation)
}

func TestDeleteUserProtectedAsStoreAdmin(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, node := newUserService(t, db)

	admin, err := svc.Create(ctx, domain.CreateRequest{Username: "dora", Role: "admin"})
	require.NoError(t, err)
	adminID, err := snowflake.ParseString(admin.ID)
	require.NoError(t, err)

	store := storedomain.Store{
		ID:        node.Generate(),
		Name:      "corner shop",
		AdminID:   adminID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&store).Error)

	err = svc.Delete(ctx, admin.ID)
	require.ErrorIs(t, err, integrity.ErrProtectedReference)

	// Reassigning the store releases the protection.
	other, err := svc.Create(ctx, domain.CreateRequest{Username: "erin", Role: "admin"})
	require.NoError(t, err)
	otherID, err := snowflake.ParseString(other.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&storedomain.Store{}).Where("id = ?", store.ID).Update("admin_id", otherID).Error)

	require.NoError(t, svc.Delete(ctx, admin.ID))

	_, err = svc.Get(ctx, admin.ID)
	require.ErrorIs(t, err, integrity.ErrNotFound)
}

func TestDeleteUserProtectedAsCustomer(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, node := newUserService(t, db)

	customer, err := svc.Create(ctx, domain.CreateRequest{Username: "frank"})
	require.NoError(t, err)
	customerID, err := snowflake.ParseString(customer.ID)
	require.NoError(t, err)

	order := orderdomain.Order{
		ID:         node.Generate(),
		CreatedAt:  time.Now().UTC(),
		StoreID:    node.Generate(),
		CustomerID: customerID,
	}
	require.NoError(t, db.Create(&order).Error)

	err = svc.Delete(ctx, customer.ID)
	require.ErrorIs(t, err, integrity.ErrProtectedReference)
}

func TestDeleteUserUnlinksManagerRows(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, node := newUserService(t, db)

	manager, err := svc.Create(ctx, domain.CreateRequest{Username: "grace"})
	require.NoError(t, err)
	managerID, err := snowflake.ParseString(manager.ID)
	require.NoError(t, err)

	link := storedomain.StoreManager{StoreID: node.Generate(), UserID: managerID}
	require.NoError(t, db.Create(&link).Error)

	require.NoError(t, svc.Delete(ctx, manager.ID))

	var count int64
	require.NoError(t, db.Model(&storedomain.StoreManager{}).Where("user_id = ?", managerID).Count(&count).Error)
	require.Zero(t, count)
}

func TestDeleteUnknownUser(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, node := newUserService(t, db)

	err := svc.Delete(ctx, node.Generate().String())
	require.True(t, errors.Is(err, integrity.ErrNotFound))
}
