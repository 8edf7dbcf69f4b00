package app

import (
	catalogdomain "github.com/marcos21288848/stockpos/internal/catalog/domain"
)

// CatalogStore is the reconciler's window into the live catalog. The cart
// keeps no product copies, so every operation resolves through this port
// against current state.
type CatalogStore interface {
	Product(id string) (catalogdomain.Product, bool)
	ProductBySKU(sku string) (catalogdomain.Product, bool)
	DecrementStock(productID, branchID string, amount int64)
}
