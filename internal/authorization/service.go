package authorization

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Permission names understood by the capability check.
const (
	PermissionViewUser          = "view_user"
	PermissionViewStore         = "view_store"
	PermissionViewStoreProducts = "view_store_products"
)

// Service answers capability checks for a requesting user.
type Service interface {
	HasPermission(ctx context.Context, userID snowflake.ID, permission string) (bool, error)
}

var (
	ErrInvalidActor      = errors.New("invalid_actor")
	ErrUnknownPermission = errors.New("unknown_permission")
)
