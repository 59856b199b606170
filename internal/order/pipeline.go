// Package order implements the order fulfillment pipeline: line items are
// persisted first, the total is priced against the live catalog, and the
// order header is persisted last. No step is compensated; a failed step
// fails the whole call and leaves the records committed so far.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"eshop-backend/internal/models"
	"eshop-backend/internal/store"
)

var (
	ErrValidation       = errors.New("validation")
	ErrNotFound         = errors.New("order not found")
	ErrLineItemPersist  = errors.New("order item cannot be created")
	ErrNoItemsPersisted = errors.New("no order items persisted")
	ErrOrderPersist     = errors.New("order cannot be created")
)

type Item struct {
	ProductID uint `json:"product_id"`
	Quantity  uint `json:"quantity"`
}

type Shipping struct {
	Address1 string `json:"shipping_address1"`
	Address2 string `json:"shipping_address2"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

type Pipeline struct {
	Items   store.LineItemStore
	Orders  store.OrderStore
	Catalog store.CatalogGateway
	Log     *slog.Logger
}

func NewPipeline(items store.LineItemStore, orders store.OrderStore, catalog store.CatalogGateway, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{Items: items, Orders: orders, Catalog: catalog, Log: log}
}

// Submit turns a list of (product, quantity) pairs into persisted line items
// plus an order header referencing them. Line items are created one at a
// time in submission order, so an aborted call leaves a deterministic prefix
// behind. The total is priced once, at submission time, and never recomputed.
func (p *Pipeline) Submit(ctx context.Context, items []Item, shipping Shipping, userID uint) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order items required", ErrValidation)
	}
	for _, item := range items {
		if item.ProductID == 0 {
			return nil, fmt.Errorf("%w: product_id required", ErrValidation)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
		}
	}

	persisted := make([]uint, 0, len(items))
	for _, item := range items {
		record := models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if err := p.Items.CreateLineItem(ctx, &record); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLineItemPersist, err)
		}
		persisted = append(persisted, record.ID)
	}
	if len(persisted) == 0 {
		return nil, ErrNoItemsPersisted
	}

	total, err := p.totalPrice(ctx, items)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ItemIDs:          persisted,
		ShippingAddress1: shipping.Address1,
		ShippingAddress2: shipping.Address2,
		City:             shipping.City,
		Zip:              shipping.Zip,
		Country:          shipping.Country,
		Phone:            shipping.Phone,
		Status:           models.OrderStatusOrdered,
		TotalPrice:       total,
		UserID:           userID,
		CreatedAt:        time.Now(),
	}
	if err := p.Orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderPersist, err)
	}

	return order, nil
}

// totalPrice resolves every unit price against the catalog. The lookups are
// independent reads, so they run concurrently. A catalog miss contributes 0
// to the total instead of failing the order; any other gateway error fails
// the whole call.
func (p *Pipeline) totalPrice(ctx context.Context, items []Item) (float64, error) {
	prices := make([]float64, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			price, err := p.Catalog.UnitPrice(ctx, items[i].ProductID)
			if errors.Is(err, store.ErrNotFound) {
				p.Log.Warn("order: product missing from catalog, pricing at 0",
					"product_id", items[i].ProductID)
				return
			}
			if err != nil {
				errs[i] = err
				return
			}
			prices[i] = price
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return 0, fmt.Errorf("price lookup: %w", err)
		}
	}

	var total float64
	for i, item := range items {
		total += prices[i] * float64(item.Quantity)
	}
	return total, nil
}

// Delete removes the order header first, then its line items one by one. The
// header goes first so the order never shows up in listings after a
// successful delete; a line item that cannot be removed stays behind as an
// orphan and is only logged.
func (p *Pipeline) Delete(ctx context.Context, orderID uint) error {
	order, err := p.Orders.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := p.Orders.DeleteOrder(ctx, orderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	for _, itemID := range order.ItemIDs {
		if _, err := p.Items.FindLineItem(ctx, itemID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				p.Log.Warn("order: fetching line item for delete failed",
					"order_id", orderID, "item_id", itemID, "error", err)
			}
			continue
		}
		if err := p.Items.DeleteLineItem(ctx, itemID); err != nil && !errors.Is(err, store.ErrNotFound) {
			p.Log.Warn("order: line item delete failed, orphan left behind",
				"order_id", orderID, "item_id", itemID, "error", err)
		}
	}

	return nil
}

// Resolve loads the line item records an order references. Items deleted out
// from under the order are skipped rather than failing the read.
func (p *Pipeline) Resolve(ctx context.Context, order *models.Order) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(order.ItemIDs))
	for _, id := range order.ItemIDs {
		item, err := p.Items.FindLineItem(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}
