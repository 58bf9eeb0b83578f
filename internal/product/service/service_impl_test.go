package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/storefront/internal/integrity"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	"github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/internal/product/repository"
	"github.com/smallbiznis/storefront/internal/product/service"
	storedomain "github.com/smallbiznis/storefront/internal/store/domain"
	storerepo "github.com/smallbiznis/storefront/internal/store/repository"
	userdomain "github.com/smallbiznis/storefront/internal/user/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  domain.Service
}

func setup(t *testing.T) fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&storedomain.Store{},
		&storedomain.StoreManager{},
		&domain.Product{},
		&orderdomain.Order{},
		&orderdomain.OrderProduct{},
	))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	svc := service.New(service.Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Stores: storerepo.Provide(),
	})
	return fixture{db: db, node: node, svc: svc}
}

func (f fixture) newStore(t *testing.T, name string) snowflake.ID {
	t.Helper()
	store := storedomain.Store{
		ID:        f.node.Generate(),
		Name:      name,
		AdminID:   f.node.Generate(),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&store).Error)
	return store.ID
}

func TestCreateProductUnknownStore(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Create(ctx, domain.CreateRequest{
		Name:     "widget",
		StoreID:  f.node.Generate().String(),
		Price:    9.99,
		Currency: "USD",
	})
	require.ErrorIs(t, err, integrity.ErrReferentialIntegrity)
}

func TestCreateProductNameUniqueAcrossStores(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	first := f.newStore(t, "first")
	second := f.newStore(t, "second")

	_, err := f.svc.Create(ctx, domain.CreateRequest{
		Name:     "widget",
		StoreID:  first.String(),
		Price:    9.99,
		Currency: "USD",
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		Name:     "widget",
		StoreID:  second.String(),
		Price:    4.99,
		Currency: "EUR",
	})
	require.ErrorIs(t, err, integrity.ErrUniquenessViolation)
}

func TestCreateProductCurrencyTooLong(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	store := f.newStore(t, "corner shop")

	_, err := f.svc.Create(ctx, domain.CreateRequest{
		Name:     "widget",
		StoreID:  store.String(),
		Currency: "DOLLARS",
	})
	require.ErrorIs(t, err, integrity.ErrValidation)
}

func TestCreateProductCountsCharactersNotBytes(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	store := f.newStore(t, "corner shop")

	// Three multibyte characters fit the three-character currency column.
	resp, err := f.svc.Create(ctx, domain.CreateRequest{
		Name:     strings.Repeat("京", domain.MaxNameLen),
		StoreID:  store.String(),
		Currency: "日本円",
	})
	require.NoError(t, err)
	require.Equal(t, "日本円", resp.Currency)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		Name:     strings.Repeat("京", domain.MaxNameLen+1),
		StoreID:  store.String(),
		Currency: "USD",
	})
	require.ErrorIs(t, err, integrity.ErrValidation)
}

func TestCreateProductNegativePriceAllowed(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	store := f.newStore(t, "corner shop")

	resp, err := f.svc.Create(ctx, domain.CreateRequest{
		Name:     "rebate",
		StoreID:  store.String(),
		Price:    -5,
		Currency: "USD",
	})
	require.NoError(t, err)
	require.Equal(t, float64(-5), resp.Price)
}

func TestCountByStoreIsFresh(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	store := f.newStore(t, "corner shop")

	count, err := f.svc.CountByStore(ctx, store.String())
	require.NoError(t, err)
	require.Zero(t, count)

	first, err := f.svc.Create(ctx, domain.CreateRequest{Name: "widget", StoreID: store.String(), Currency: "USD"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "gadget", StoreID: store.String(), Currency: "USD"})
	require.NoError(t, err)

	count, err = f.svc.CountByStore(ctx, store.String())
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	require.NoError(t, f.svc.Delete(ctx, first.ID))

	count, err = f.svc.CountByStore(ctx, store.String())
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestDeleteProductCascadesOrderLines(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	store := f.newStore(t, "corner shop")

	resp, err := f.svc.Create(ctx, domain.CreateRequest{Name: "widget", StoreID: store.String(), Currency: "USD"})
	require.NoError(t, err)
	productID, err := snowflake.ParseString(resp.ID)
	require.NoError(t, err)

	order := orderdomain.Order{
		ID:         f.node.Generate(),
		CreatedAt:  time.Now().UTC(),
		StoreID:    store,
		CustomerID: f.node.Generate(),
	}
	require.NoError(t, f.db.Create(&order).Error)
	line := orderdomain.OrderProduct{
		ID:        f.node.Generate(),
		OrderID:   order.ID,
		ProductID: productID,
		Quantity:  2,
	}
	require.NoError(t, f.db.Create(&line).Error)

	require.NoError(t, f.svc.Delete(ctx, resp.ID))

	var lines int64
	require.NoError(t, f.db.Model(&orderdomain.OrderProduct{}).Where("product_id = ?", productID).Count(&lines).Error)
	require.Zero(t, lines)

	// The order itself survives the cascade.
	var orders int64
	require.NoError(t, f.db.Model(&orderdomain.Order{}).Where("id = ?", order.ID).Count(&orders).Error)
	require.EqualValues(t, 1, orders)
}
