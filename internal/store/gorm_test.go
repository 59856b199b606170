package store

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"eshop-backend/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func TestUnitPrice(t *testing.T) {
	db := initTestDB(t)
	s := NewGorm(db)

	product := models.Product{Name: "mug", Price: 9.99, CategoryID: 1, CountInStock: 3}
	require.NoError(t, db.Create(&product).Error)

	price, err := s.UnitPrice(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, 9.99, price)

	_, err = s.UnitPrice(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLineItemRoundTrip(t *testing.T) {
	db := initTestDB(t)
	s := NewGorm(db)
	ctx := context.Background()

	item := models.OrderItem{ProductID: 1, Quantity: 2}
	require.NoError(t, s.CreateLineItem(ctx, &item))
	require.NotZero(t, item.ID)

	found, err := s.FindLineItem(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, uint(2), found.Quantity)

	require.NoError(t, s.DeleteLineItem(ctx, item.ID))
	_, err = s.FindLineItem(ctx, item.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.DeleteLineItem(ctx, item.ID), ErrNotFound)
}

func TestOrderItemIDsSerialization(t *testing.T) {
	db := initTestDB(t)
	s := NewGorm(db)
	ctx := context.Background()

	order := models.Order{
		ItemIDs:          []uint{3, 1, 2},
		ShippingAddress1: "42 Main St",
		City:             "Springfield",
		Zip:              "12345",
		Country:          "US",
		Phone:            "555-0101",
		Status:           models.OrderStatusOrdered,
		TotalPrice:       35,
		UserID:           1,
	}
	require.NoError(t, s.CreateOrder(ctx, &order))

	found, err := s.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{3, 1, 2}, found.ItemIDs)
}

func TestListOrdersFiltersByUser(t *testing.T) {
	db := initTestDB(t)
	s := NewGorm(db)
	ctx := context.Background()

	for _, userID := range []uint{1, 1, 2} {
		order := models.Order{
			ShippingAddress1: "42 Main St",
			City:             "Springfield",
			Zip:              "12345",
			Country:          "US",
			Phone:            "555-0101",
			Status:           models.OrderStatusOrdered,
			UserID:           userID,
		}
		require.NoError(t, s.CreateOrder(ctx, &order))
	}

	mine, err := s.ListOrders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	all, err := s.ListOrders(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestUpdateOrderStatus(t *testing.T) {
	db := initTestDB(t)
	s := NewGorm(db)
	ctx := context.Background()

	order := models.Order{
		ShippingAddress1: "42 Main St",
		City:             "Springfield",
		Zip:              "12345",
		Country:          "US",
		Phone:            "555-0101",
		Status:           models.OrderStatusOrdered,
		UserID:           1,
	}
	require.NoError(t, s.CreateOrder(ctx, &order))

	updated, err := s.UpdateOrderStatus(ctx, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusShipped, updated.Status)

	_, err = s.UpdateOrderStatus(ctx, 999, models.OrderStatusShipped)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOrder(t *testing.T) {
	db := initTestDB(t)
	s := NewGorm(db)
	ctx := context.Background()

	order := models.Order{
		ShippingAddress1: "42 Main St",
		City:             "Springfield",
		Zip:              "12345",
		Country:          "US",
		Phone:            "555-0101",
		Status:           models.OrderStatusOrdered,
		UserID:           1,
	}
	require.NoError(t, s.CreateOrder(ctx, &order))

	require.NoError(t, s.DeleteOrder(ctx, order.ID))
	require.ErrorIs(t, s.DeleteOrder(ctx, order.ID), ErrNotFound)
	_, err := s.FindOrder(ctx, order.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
