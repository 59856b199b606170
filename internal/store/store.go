// Package store defines the persistence contracts the order pipeline and the
// media synchronizer depend on. Every store offers single-record atomicity
// only; nothing here spans multiple records in one transaction.
package store

import (
	"context"
	"errors"

	"eshop-backend/internal/models"
)

var ErrNotFound = errors.New("record not found")

// CatalogGateway resolves the current unit price of a catalog product.
// Read-only from the caller's perspective.
type CatalogGateway interface {
	UnitPrice(ctx context.Context, productID uint) (float64, error)
}

type LineItemStore interface {
	CreateLineItem(ctx context.Context, item *models.OrderItem) error
	FindLineItem(ctx context.Context, id uint) (*models.OrderItem, error)
	DeleteLineItem(ctx context.Context, id uint) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, userID uint) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uint) error
}

type ProductStore interface {
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	SaveProduct(ctx context.Context, product *models.Product) error
}
