package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Order struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time    `gorm:"<-:create;not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	StoreID    snowflake.ID `gorm:"column:store_id;not null;index" json:"store_id"`
	CustomerID snowflake.ID `gorm:"column:customer_id;not null;index" json:"customer_id"`
}

func (Order) TableName() string { return "orders" }

// OrderProduct records a per-order product quantity. An order references a
// given product through at most one row; quantity changes update the row in
// place.
type OrderProduct struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID `gorm:"column:order_id;not null;uniqueIndex:ux_order_products_pair,priority:1" json:"order_id"`
	ProductID snowflake.ID `gorm:"column:product_id;not null;uniqueIndex:ux_order_products_pair,priority:2" json:"product_id"`
	Quantity  int64        `gorm:"not null;check:quantity >= 0" json:"quantity"`
}

func (OrderProduct) TableName() string { return "order_products" }
