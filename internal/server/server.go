package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/storefront/internal/authorization"
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/console"
	"github.com/smallbiznis/storefront/internal/display"
	"github.com/smallbiznis/storefront/internal/order"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	"github.com/smallbiznis/storefront/internal/product"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/internal/store"
	storedomain "github.com/smallbiznis/storefront/internal/store/domain"
	"github.com/smallbiznis/storefront/internal/user"
	userdomain "github.com/smallbiznis/storefront/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	authorization.Module,
	console.Module,
	display.Module,
	user.Module,
	store.Module,
	product.Module,
	order.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Params struct {
	fx.In

	Engine     *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	UserSvc    userdomain.Service
	StoreSvc   storedomain.Service
	ProductSvc productdomain.Service
	OrderSvc   orderdomain.Service
	AuthzSvc   authorization.Service
	DisplaySvc *display.Service
	StoreRepo  storedomain.Repository
	ProdRepo   productdomain.Repository
	Registry   *console.Registry
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	userSvc    userdomain.Service
	storeSvc   storedomain.Service
	productSvc productdomain.Service
	orderSvc   orderdomain.Service
	authzSvc   authorization.Service
	displaySvc *display.Service
	storeRepo  storedomain.Repository
	prodRepo   productdomain.Repository
	registry   *console.Registry
}

func NewServer(p Params) *Server {
	return &Server{
		engine:     p.Engine,
		cfg:        p.Cfg,
		db:         p.DB,
		log:        p.Log.Named("http.server"),
		userSvc:    p.UserSvc,
		storeSvc:   p.StoreSvc,
		productSvc: p.ProductSvc,
		orderSvc:   p.OrderSvc,
		authzSvc:   p.AuthzSvc,
		displaySvc: p.DisplaySvc,
		storeRepo:  p.StoreRepo,
		prodRepo:   p.ProdRepo,
		registry:   p.Registry,
	}
}

func (s *Server) RegisterRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/users", s.CreateUser)
	v1.GET("/users", s.ListUsers)
	v1.GET("/users/:id", s.GetUserByID)
	v1.DELETE("/users/:id", s.DeleteUser)

	v1.POST("/stores", s.CreateStore)
	v1.GET("/stores", s.ListStores)
	v1.GET("/stores/:id", s.GetStoreByID)
	v1.PATCH("/stores/:id", s.UpdateStore)
	v1.DELETE("/stores/:id", s.DeleteStore)
	v1.GET("/stores/:id/labels", s.StoreLabels)

	v1.POST("/products", s.CreateProduct)
	v1.GET("/products", s.ListProducts)
	v1.GET("/products/:id", s.GetProductByID)
	v1.PATCH("/products/:id", s.UpdateProduct)
	v1.DELETE("/products/:id", s.DeleteProduct)
	v1.GET("/products/:id/labels", s.ProductLabels)

	v1.POST("/orders", s.CreateOrder)
	v1.GET("/orders", s.ListOrders)
	v1.GET("/orders/:id", s.GetOrderByID)
	v1.DELETE("/orders/:id", s.DeleteOrder)
	v1.POST("/orders/:id/items", s.AddOrderItem)
	v1.PATCH("/orders/:id/items/:product_id", s.UpdateOrderItem)
	v1.DELETE("/orders/:id/items/:product_id", s.RemoveOrderItem)

	admin := s.engine.Group("/admin")
	admin.GET("/:entity", s.BrowseEntity)
	admin.GET("/:entity/:id", s.EntityDetail)
}

func requesterID(c *gin.Context) (snowflake.ID, error) {
	raw := c.GetHeader("X-Requester-ID")
	if raw == "" {
		raw = c.Query("requester_id")
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, newValidationError("requester_id", "required", "requester identity is required")
	}
	return id, nil
}
