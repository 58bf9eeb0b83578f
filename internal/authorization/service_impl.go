package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectUser  = "user"
	ObjectStore = "store"
)

const (
	ActionUserView          = "view"
	ActionStoreView         = "view"
	ActionStoreViewProducts = "view_products"
)

// permissionGrants maps the external permission names onto policy tuples.
var permissionGrants = map[string]struct{ object, action string }{
	PermissionViewUser:          {ObjectUser, ActionUserView},
	PermissionViewStore:         {ObjectStore, ActionStoreView},
	PermissionViewStoreProducts: {ObjectStore, ActionStoreViewProducts},
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

// HasPermission resolves the user's role and asks the enforcer whether the
// named capability is granted. An unknown user simply has no capabilities.
func (s *ServiceImpl) HasPermission(ctx context.Context, userID snowflake.ID, permission string) (bool, error) {
	if userID == 0 {
		return false, ErrInvalidActor
	}

	grant, ok := permissionGrants[strings.TrimSpace(permission)]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownPermission, permission)
	}

	role, err := s.roleForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if role == "" {
		return false, nil
	}

	subject := fmt.Sprintf("user:%s", userID)
	roleName := fmt.Sprintf("role:%s", strings.ToLower(role))
	if err := s.ensureGrouping(subject, roleName); err != nil {
		return false, err
	}

	return s.enforcer.Enforce(subject, grant.object, grant.action)
}

func (s *ServiceImpl) roleForUser(ctx context.Context, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role FROM users WHERE id = ? LIMIT 1`,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}
	return strings.TrimSpace(row.Role), nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			if _, err := s.enforcer.RemoveGroupingPolicy(params...); err != nil {
				return err
			}
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:admin", ObjectUser, ActionUserView},
		{"role:admin", ObjectStore, ActionStoreView},
		{"role:admin", ObjectStore, ActionStoreViewProducts},

		{"role:staff", ObjectStore, ActionStoreView},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
