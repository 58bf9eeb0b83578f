package server_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/storefront/internal/authorization"
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/console"
	"github.com/smallbiznis/storefront/internal/display"
	orderrepo "github.com/smallbiznis/storefront/internal/order/repository"
	orderservice "github.com/smallbiznis/storefront/internal/order/service"
	productrepo "github.com/smallbiznis/storefront/internal/product/repository"
	productservice "github.com/smallbiznis/storefront/internal/product/service"
	"github.com/smallbiznis/storefront/internal/server"
	storedomain "github.com/smallbiznis/storefront/internal/store/domain"
	storerepo "github.com/smallbiznis/storefront/internal/store/repository"
	storeservice "github.com/smallbiznis/storefront/internal/store/service"
	userdomain "github.com/smallbiznis/storefront/internal/user/domain"
	userrepo "github.com/smallbiznis/storefront/internal/user/repository"
	userservice "github.com/smallbiznis/storefront/internal/user/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
)

type harness struct {
	engine *gin.Engine
	db     *gorm.DB
	node   *snowflake.Node
}

func setupHarness(t *testing.T) harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&storedomain.Store{},
		&storedomain.StoreManager{},
		&productdomain.Product{},
		&orderdomain.Order{},
		&orderdomain.OrderProduct{},
	))

	node, err := snowflake.NewNode(9)
	require.NoError(t, err)

	log := zap.NewNop()
	users := userrepo.Provide()
	stores := storerepo.Provide()
	products := productrepo.Provide()
	orders := orderrepo.Provide()

	userSvc := userservice.New(userservice.Params{DB: db, Log: log, GenID: node, Repo: users})
	storeSvc := storeservice.New(storeservice.Params{DB: db, Log: log, GenID: node, Repo: stores, Users: users})
	productSvc := productservice.New(productservice.Params{DB: db, Log: log, GenID: node, Repo: products, Stores: stores})
	orderSvc := orderservice.New(orderservice.Params{DB: db, Log: log, GenID: node, Repo: orders, Stores: stores, Users: users, Products: products})

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	authzSvc := authorization.NewService(authorization.Params{DB: db, Log: log, Enforcer: enforcer})

	displaySvc := display.New(display.Params{
		DB:       db,
		Log:      log,
		Authz:    authzSvc,
		Users:    users,
		Stores:   stores,
		Products: products,
	})

	registry, err := console.DefaultRegistry()
	require.NoError(t, err)

	engine := server.NewEngine()
	srv := server.NewServer(server.Params{
		Engine:     engine,
		Cfg:        config.Config{},
		DB:         db,
		Log:        log,
		UserSvc:    userSvc,
		StoreSvc:   storeSvc,
		ProductSvc: productSvc,
		OrderSvc:   orderSvc,
		AuthzSvc:   authzSvc,
		DisplaySvc: displaySvc,
		StoreRepo:  stores,
		ProdRepo:   products,
		Registry:   registry,
	})
	srv.RegisterRoutes()

	return harness{engine: engine, db: db, node: node}
}

func (h harness) do(t *testing.T, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range header {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestUserLifecycleOverHTTP(t *testing.T) {
	h := setupHarness(t)

	rec := h.do(t, http.MethodPost, "/v1/users", `{"username":"alice","email":"alice@example.com","role":"admin"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[userdomain.Response](t, rec)
	require.Equal(t, "alice", created.Username)

	rec = h.do(t, http.MethodPost, "/v1/users", `{"username":"alice"}`, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(t, http.MethodGet, "/v1/users?role=admin", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodDelete, "/v1/users/"+created.ID, "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodGet, "/v1/users/"+created.ID, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreDeleteConflictOverHTTP(t *testing.T) {
	h := setupHarness(t)

	rec := h.do(t, http.MethodPost, "/v1/users", `{"username":"owner","role":"admin"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	owner := decode[userdomain.Response](t, rec)

	rec = h.do(t, http.MethodPost, "/v1/stores", fmt.Sprintf(`{"name":"corner shop","admin_id":%q}`, owner.ID), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	store := decode[storedomain.Response](t, rec)

	rec = h.do(t, http.MethodPost, "/v1/products", fmt.Sprintf(`{"name":"widget","store_id":%q,"price":9.99,"currency":"USD"}`, store.ID), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodDelete, "/v1/stores/"+store.ID, "", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[map[string]map[string]string](t, rec)
	require.Equal(t, "protected_reference", body["error"]["kind"])
}

func TestStoreLabelsEndpoint(t *testing.T) {
	h := setupHarness(t)

	rec := h.do(t, http.MethodPost, "/v1/users", `{"username":"owner","role":"admin"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	owner := decode[userdomain.Response](t, rec)

	rec = h.do(t, http.MethodPost, "/v1/stores", fmt.Sprintf(`{"name":"corner shop","admin_id":%q}`, owner.ID), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	store := decode[storedomain.Response](t, rec)

	rec = h.do(t, http.MethodGet, "/v1/stores/"+store.ID+"/labels", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/v1/stores/"+store.ID+"/labels", "", map[string]string{"X-Requester-ID": owner.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	labels := decode[map[string]display.Label](t, rec)
	require.Contains(t, labels["admin"].Text, "owner")
	require.NotNil(t, labels["admin"].Ref)
	require.Equal(t, "0", labels["manager_count"].Text)
	require.Equal(t, "0", labels["product_count"].Text)
}

func TestAdminBrowseOverHTTP(t *testing.T) {
	h := setupHarness(t)

	rec := h.do(t, http.MethodPost, "/v1/users", `{"username":"alice","role":"admin"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = h.do(t, http.MethodPost, "/v1/users", `{"username":"bob"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodGet, "/admin/users?role=staff", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Entity string           `json:"entity"`
		Rows   []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, "users", page.Entity)
	require.Len(t, page.Rows, 1)
	require.Equal(t, "bob", page.Rows[0]["username"])

	rec = h.do(t, http.MethodGet, "/admin/unknown", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	h := setupHarness(t)

	rec := h.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
