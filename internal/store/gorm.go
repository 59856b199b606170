package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"eshop-backend/internal/models"
)

// Gorm backs every store contract with one gorm connection. Each method is a
// single round-trip; per-record write ordering is the database's concern.
type Gorm struct {
	DB *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{DB: db}
}

func (s *Gorm) UnitPrice(ctx context.Context, productID uint) (float64, error) {
	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return product.Price, nil
}

func (s *Gorm) CreateLineItem(ctx context.Context, item *models.OrderItem) error {
	return s.DB.WithContext(ctx).Create(item).Error
}

func (s *Gorm) FindLineItem(ctx context.Context, id uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := s.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *Gorm) DeleteLineItem(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.OrderItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) CreateOrder(ctx context.Context, order *models.Order) error {
	return s.DB.WithContext(ctx).Create(order).Error
}

func (s *Gorm) FindOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListOrders returns orders newest first. userID 0 lists every order.
func (s *Gorm) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	q := s.DB.WithContext(ctx).Model(&models.Order{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Gorm) UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	order, err := s.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Status = status
	if err := s.DB.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Gorm) DeleteOrder(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Gorm) SaveProduct(ctx context.Context, product *models.Product) error {
	return s.DB.WithContext(ctx).Save(product).Error
}
