package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/integrity"
	"github.com/smallbiznis/storefront/internal/order/domain"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	storedomain "github.com/smallbiznis/storefront/internal/store/domain"
	userdomain "github.com/smallbiznis/storefront/internal/user/domain"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Stores   storedomain.Repository
	Users    userdomain.Repository
	Products productdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	stores   storedomain.Repository
	users    userdomain.Repository
	products productdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("order.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		stores:   p.Stores,
		users:    p.Users,
		products: p.Products,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	storeID, err := snowflake.ParseString(strings.TrimSpace(req.StoreID))
	if err != nil || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return nil, domain.ErrInvalidCustomer
	}

	type pendingLine struct {
		productID snowflake.ID
		quantity  int64
	}
	lines := make([]pendingLine, 0, len(req.Items))
	seen := make(map[snowflake.ID]struct{}, len(req.Items))
	for _, item := range req.Items {
		productID, err := snowflake.ParseString(strings.TrimSpace(item.ProductID))
		if err != nil || productID == 0 {
			return nil, domain.ErrInvalidProduct
		}
		if item.Quantity < 0 {
			return nil, domain.ErrNegativeQuantity
		}
		if _, dup := seen[productID]; dup {
			return nil, fmt.Errorf("%w: product %s listed twice", integrity.ErrUniquenessViolation, productID)
		}
		seen[productID] = struct{}{}
		lines = append(lines, pendingLine{productID: productID, quantity: item.Quantity})
	}

	order := domain.Order{
		ID:         s.genID.Generate(),
		CreatedAt:  time.Now().UTC(),
		StoreID:    storeID,
		CustomerID: customerID,
	}
	items := make([]domain.OrderProduct, 0, len(lines))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store, err := s.stores.FindByID(ctx, tx, storeID)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("%w: unknown store reference", integrity.ErrReferentialIntegrity)
		}

		customer, err := s.users.FindByID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return fmt.Errorf("%w: unknown customer reference", integrity.ErrReferentialIntegrity)
		}

		if err := s.repo.Insert(ctx, tx, &order); err != nil {
			return integrity.Translate(err)
		}

		for _, line := range lines {
			product, err := s.products.FindByID(ctx, tx, line.productID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: unknown product reference", integrity.ErrReferentialIntegrity)
			}
			row := domain.OrderProduct{
				ID:        s.genID.Generate(),
				OrderID:   order.ID,
				ProductID: line.productID,
				Quantity:  line.quantity,
			}
			if err := s.repo.InsertLine(ctx, tx, &row); err != nil {
				return integrity.Translate(err)
			}
			items = append(items, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(&order, items)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, integrity.ErrNotFound
	}

	lines, err := s.repo.LinesByOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}

	resp := toResponse(order, lines)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if raw := strings.TrimSpace(req.StoreID); raw != "" {
		storeID, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidStore
		}
		filter.StoreID = storeID.Int64()
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidCustomer
		}
		filter.CustomerID = customerID.Int64()
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		if req.PageToken != "" {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(order *domain.Order) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID: order.ID.String(),
			// Full precision; a truncated cursor would skip same-second rows.
			CreatedAt: order.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	orders := make([]domain.Response, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		lines, err := s.repo.LinesByOrder(ctx, s.db, item.ID)
		if err != nil {
			return domain.ListResponse{}, err
		}
		orders = append(orders, toResponse(item, lines))
	}

	resp := domain.ListResponse{Orders: orders}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

// Delete removes an order and cascades into its order_products rows.
func (s *Service) Delete(ctx context.Context, id string) error {
	orderID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return integrity.ErrNotFound
		}

		if err := s.repo.RemoveLines(ctx, tx, orderID); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, orderID); err != nil {
			return integrity.Translate(err)
		}
		return nil
	})
}

func (s *Service) AddItem(ctx context.Context, orderID string, item domain.ItemRequest) (*domain.Response, error) {
	id, err := parseID(orderID)
	if err != nil {
		return nil, err
	}
	productID, err := snowflake.ParseString(strings.TrimSpace(item.ProductID))
	if err != nil || productID == 0 {
		return nil, domain.ErrInvalidProduct
	}
	if item.Quantity < 0 {
		return nil, domain.ErrNegativeQuantity
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return integrity.ErrNotFound
		}

		product, err := s.products.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: unknown product reference", integrity.ErrReferentialIntegrity)
		}

		existing, err := s.repo.FindLine(ctx, tx, id, productID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: order already references product %s", integrity.ErrUniquenessViolation, productID)
		}

		row := domain.OrderProduct{
			ID:        s.genID.Generate(),
			OrderID:   id,
			ProductID: productID,
			Quantity:  item.Quantity,
		}
		if err := s.repo.InsertLine(ctx, tx, &row); err != nil {
			return integrity.Translate(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, orderID)
}

func (s *Service) UpdateItemQuantity(ctx context.Context, orderID, productID string, quantity int64) (*domain.Response, error) {
	id, err := parseID(orderID)
	if err != nil {
		return nil, err
	}
	pid, err := snowflake.ParseString(strings.TrimSpace(productID))
	if err != nil || pid == 0 {
		return nil, domain.ErrInvalidProduct
	}
	if quantity < 0 {
		return nil, domain.ErrNegativeQuantity
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := s.repo.FindLine(ctx, tx, id, pid)
		if err != nil {
			return err
		}
		if line == nil {
			return integrity.ErrNotFound
		}
		return s.repo.UpdateLineQuantity(ctx, tx, line.ID, quantity)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, orderID)
}

func (s *Service) RemoveItem(ctx context.Context, orderID, productID string) (*domain.Response, error) {
	id, err := parseID(orderID)
	if err != nil {
		return nil, err
	}
	pid, err := snowflake.ParseString(strings.TrimSpace(productID))
	if err != nil || pid == 0 {
		return nil, domain.ErrInvalidProduct
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := s.repo.FindLine(ctx, tx, id, pid)
		if err != nil {
			return err
		}
		if line == nil {
			return integrity.ErrNotFound
		}
		return s.repo.DeleteLine(ctx, tx, line.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, orderID)
}

func toResponse(order *domain.Order, lines []domain.OrderProduct) domain.Response {
	items := make([]domain.ItemResponse, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.ItemResponse{
			ID:        line.ID.String(),
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity,
		})
	}
	return domain.Response{
		ID:         order.ID.String(),
		CreatedAt:  order.CreatedAt,
		StoreID:    order.StoreID.String(),
		CustomerID: order.CustomerID.String(),
		Items:      items,
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
