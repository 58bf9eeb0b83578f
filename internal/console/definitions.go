package console

import "go.uber.org/fx"

// DefaultRegistry registers the storefront entities with the same listing,
// filter and search configuration the admin screens expose.
func DefaultRegistry() (*Registry, error) {
	registry := NewRegistry()

	defs := []Definition{
		{
			Name:         "users",
			Table:        "users",
			ListDisplay:  []string{"username", "email", "role"},
			ListFilter:   []string{"id", "username", "role"},
			SearchFields: []string{"username", "email"},
			Ordering:     "username",
		},
		{
			Name:         "stores",
			Table:        "stores",
			ListDisplay:  []string{"name", "description", "admin_id"},
			ListFilter:   []string{"id", "name", "description", "admin_id"},
			SearchFields: []string{"name", "description"},
			Ordering:     "name",
		},
		{
			Name:         "products",
			Table:        "products",
			ListDisplay:  []string{"name", "description", "store_id", "price", "currency"},
			ListFilter:   []string{"id", "name", "description", "store_id", "price", "currency"},
			SearchFields: []string{"name", "description", "currency"},
			Ordering:     "name",
		},
		{
			Name:         "orders",
			Table:        "orders",
			ListDisplay:  []string{"created_at", "store_id", "customer_id"},
			ListFilter:   []string{"id", "created_at", "store_id", "customer_id"},
			SearchFields: []string{},
			Ordering:     "created_at desc",
			Inline: &Inline{
				Name:        "order_products",
				Table:       "order_products",
				ForeignKey:  "order_id",
				ListDisplay: []string{"order_id", "product_id", "quantity"},
			},
		},
		{
			Name:         "order_products",
			Table:        "order_products",
			ListDisplay:  []string{"order_id", "product_id", "quantity"},
			ListFilter:   []string{"id", "order_id", "product_id", "quantity"},
			SearchFields: []string{"quantity"},
		},
	}

	for _, def := range defs {
		if err := registry.Register(def); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

var Module = fx.Module("console",
	fx.Provide(DefaultRegistry),
)
