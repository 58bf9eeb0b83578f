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
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/internal/store/domain"
	"github.com/smallbiznis/storefront/internal/store/repository"
	"github.com/smallbiznis/storefront/internal/store/service"
	userdomain "github.com/smallbiznis/storefront/internal/user/domain"
	userrepo "github.com/smallbiznis/storefront/internal/user/repository"
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
		&domain.Store{},
		&domain.StoreManager{},
		&productdomain.Product{},
		&orderdomain.Order{},
		&orderdomain.OrderProduct{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Users: userrepo.Provide(),
	})
	return fixture{db: db, node: node, svc: svc}
}

func (f fixture) newUser(t *testing.T, username string) snowflake.ID {
	t.Helper()
	user := userdomain.User{
		ID:        f.node.Generate(),
		Username:  username,
		Role:      "staff",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user.ID
}

func TestCreateStoreWithManagers(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	admin := f.newUser(t, "owner")
	m1 := f.newUser(t, "manager-one")
	m2 := f.newUser(t, "manager-two")

	resp, err := f.svc.Create(ctx, domain.CreateRequest{
		Name:       "corner shop",
		AdminID:    admin.String(),
		ManagerIDs: []string{m1.String(), m2.String()},
		Metadata:   map[string]any{"region": "north"},
	})
	require.NoError(t, err)
	require.Len(t, resp.ManagerIDs, 2)

	got, err := f.svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	require.Equal(t, "corner shop", got.Name)
	require.ElementsMatch(t, []string{m1.String(), m2.String()}, got.ManagerIDs)
}

func TestCreateStoreDuplicateName(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	admin := f.newUser(t, "owner")

	_, err := f.svc.Create(ctx, domain.CreateRequest{Name: "corner shop", AdminID: admin.String()})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "corner shop", AdminID: admin.String()})
	require.ErrorIs(t, err, integrity.ErrUniquenessViolation)
}

func TestCreateStoreUnknownAdmin(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Create(ctx, domain.CreateRequest{
		Name:    "corner shop",
		AdminID: f.node.Generate().String(),
	})
	require.ErrorIs(t, err, integrity.ErrReferentialIntegrity)
}

func TestCreateStoreFieldLimits(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	admin := f.newUser(t, "owner")

	_, err := f.svc.Create(ctx, domain.CreateRequest{
		Name:    strings.Repeat("n", domain.MaxNameLen+1),
		AdminID: admin.String(),
	})
	require.ErrorIs(t, err, integrity.ErrValidation)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		Name:        "corner shop",
		Description: strings.Repeat("d", domain.MaxDescriptionLen+1),
		AdminID:     admin.String(),
	})
	require.ErrorIs(t, err, integrity.ErrValidation)
}

func TestCreateStoreCountsCharactersNotBytes(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	admin := f.newUser(t, "owner")

	// 50 two-byte characters stay within the 50-character limit.
	resp, err := f.svc.Create(ctx, domain.CreateRequest{
		Name:        strings.Repeat("é", domain.MaxNameLen),
		Description: strings.Repeat("ü", domain.MaxDescriptionLen),
		AdminID:     admin.String(),
	})
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("é", domain.MaxNameLen), resp.Name)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		Name:    strings.Repeat("é", domain.MaxNameLen+1),
		AdminID: admin.String(),
	})
	require.ErrorIs(t, err, integrity.ErrValidation)
}

func TestUpdateStoreRenameCollision(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	admin := f.newUser(t, "owner")

	first, err := f.svc.Create(ctx, domain.CreateRequest{Name: "first", AdminID: admin.String()})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "second", AdminID: admin.String()})
	require.NoError(t, err)

	rename := "second"
	_, err = f.svc.Update(ctx, domain.UpdateRequest{ID: first.ID, Name: &rename})
	require.ErrorIs(t, err, integrity.ErrUniquenessViolation)
}

func TestDeleteStoreProtectedByProductThenOrder(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	admin := f.newUser(t, "owner")
	customer := f.newUser(t, "shopper")

	resp, err := f.svc.Create(ctx, domain.CreateRequest{Name: "corner shop", AdminID: admin.String()})
	require.NoError(t, err)
	storeID, err := snowflake.ParseString(resp.ID)
	require.NoError(t, err)

	product := productdomain.Product{
		ID:        f.node.Generate(),
		Name:      "widget",
		StoreID:   storeID,
		Price:     9.99,
		Currency:  "USD",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&product).Error)

	err = f.svc.Delete(ctx, resp.ID)
	require.ErrorIs(t, err, integrity.ErrProtectedReference)

	require.NoError(t, f.db.Delete(&productdomain.Product{}, "id = ?", product.ID).Error)

	order := orderdomain.Order{
		ID:         f.node.Generate(),
		CreatedAt:  time.Now().UTC(),
		StoreID:    storeID,
		CustomerID: customer,
	}
	require.NoError(t, f.db.Create(&order).Error)

	err = f.svc.Delete(ctx, resp.ID)
	require.ErrorIs(t, err, integrity.ErrProtectedReference)

	require.NoError(t, f.db.Delete(&orderdomain.Order{}, "id = ?", order.ID).Error)

	require.NoError(t, f.svc.Delete(ctx, resp.ID))

	var managers int64
	require.NoError(t, f.db.Model(&domain.StoreManager{}).Where("store_id = ?", storeID).Count(&managers).Error)
	require.Zero(t, managers)
}

func TestListStoresByAdmin(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	admin := f.newUser(t, "owner")
	other := f.newUser(t, "other-owner")

	_, err := f.svc.Create(ctx, domain.CreateRequest{Name: "first", AdminID: admin.String()})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "second", AdminID: other.String()})
	require.NoError(t, err)

	stores, err := f.svc.List(ctx, domain.ListRequest{AdminID: admin.String()})
	require.NoError(t, err)
	require.Len(t, stores, 1)
	require.Equal(t, "first", stores[0].Name)
}
