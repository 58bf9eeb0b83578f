// Package display derives the human-readable labels and navigable
// references shown beside store and product records. Every derivation takes
// the requesting user explicitly; nothing is cached between calls.
package display

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/authorization"
	"github.com/smallbiznis/storefront/internal/integrity"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	storedomain "github.com/smallbiznis/storefront/internal/store/domain"
	userdomain "github.com/smallbiznis/storefront/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ref points at a console listing or detail view, optionally pre-filtered.
type Ref struct {
	Path  string     `json:"path"`
	Query url.Values `json:"query,omitempty"`
}

// Label is a display value. Ref is nil when the requester lacks the
// capability to navigate to the underlying record(s).
type Label struct {
	Text string `json:"text"`
	Ref  *Ref   `json:"ref,omitempty"`
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Authz    authorization.Service
	Users    userdomain.Repository
	Stores   storedomain.Repository
	Products productdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	authz    authorization.Service
	users    userdomain.Repository
	stores   storedomain.Repository
	products productdomain.Repository
}

func New(p Params) *Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("display.service"),
		authz:    p.Authz,
		users:    p.Users,
		stores:   p.Stores,
		products: p.Products,
	}
}

// DescribeStoreAdmin renders "{id}: {username}" for the store's admin,
// linked to the user's detail view when the requester may view users.
func (s *Service) DescribeStoreAdmin(ctx context.Context, store storedomain.Store, requester snowflake.ID) (Label, error) {
	admin, err := s.users.FindByID(ctx, s.db, store.AdminID)
	if err != nil {
		return Label{}, err
	}
	if admin == nil {
		return Label{}, integrity.ErrNotFound
	}

	label := Label{Text: fmt.Sprintf("%s: %s", store.AdminID, admin.Username)}

	allowed, err := s.authz.HasPermission(ctx, requester, authorization.PermissionViewUser)
	if err != nil {
		return Label{}, err
	}
	if allowed {
		label.Ref = &Ref{Path: fmt.Sprintf("/admin/users/%s", store.AdminID)}
	}
	return label, nil
}

// DescribeStoreManagerCount renders the live manager count, linked to a user
// listing pre-filtered to exactly those managers when permitted.
func (s *Service) DescribeStoreManagerCount(ctx context.Context, store storedomain.Store, requester snowflake.ID) (Label, error) {
	managerIDs, err := s.stores.ManagerIDs(ctx, s.db, store.ID)
	if err != nil {
		return Label{}, err
	}

	label := Label{Text: strconv.Itoa(len(managerIDs))}

	allowed, err := s.authz.HasPermission(ctx, requester, authorization.PermissionViewStoreProducts)
	if err != nil {
		return Label{}, err
	}
	if allowed {
		query := url.Values{}
		for _, id := range managerIDs {
			query.Add("id", id.String())
		}
		label.Ref = &Ref{Path: "/admin/users", Query: query}
	}
	return label, nil
}

// DescribeStoreProductCount renders the product count for a store, computed
// by a fresh lookup, linked to a product listing scoped to the store when
// permitted.
func (s *Service) DescribeStoreProductCount(ctx context.Context, store storedomain.Store, requester snowflake.ID) (Label, error) {
	count, err := s.products.CountByStore(ctx, s.db, store.ID)
	if err != nil {
		return Label{}, err
	}

	label := Label{Text: strconv.FormatInt(count, 10)}

	allowed, err := s.authz.HasPermission(ctx, requester, authorization.PermissionViewStoreProducts)
	if err != nil {
		return Label{}, err
	}
	if allowed {
		query := url.Values{}
		query.Set("store_id", store.ID.String())
		label.Ref = &Ref{Path: "/admin/products", Query: query}
	}
	return label, nil
}

// DescribeProductStore renders "{id}: {name}" for the product's store,
// linked to the store's detail view when the requester may view stores.
func (s *Service) DescribeProductStore(ctx context.Context, product productdomain.Product, requester snowflake.ID) (Label, error) {
	store, err := s.stores.FindByID(ctx, s.db, product.StoreID)
	if err != nil {
		return Label{}, err
	}
	if store == nil {
		return Label{}, integrity.ErrNotFound
	}

	label := Label{Text: fmt.Sprintf("%s: %s", product.StoreID, store.Name)}

	allowed, err := s.authz.HasPermission(ctx, requester, authorization.PermissionViewStore)
	if err != nil {
		return Label{}, err
	}
	if allowed {
		label.Ref = &Ref{Path: fmt.Sprintf("/admin/stores/%s", product.StoreID)}
	}
	return label, nil
}
