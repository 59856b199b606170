package models

import (
	"time"
)

type Category struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"not null"                 json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type Product struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"not null"                 json:"name"`
	Description     string    `json:"description"`
	RichDescription string    `json:"rich_description"`
	Image           string    `json:"image"`
	Images          []string  `gorm:"serializer:json"          json:"images"`
	Brand           string    `json:"brand"`
	Price           float64   `gorm:"not null"                 json:"price"`
	CategoryID      uint      `gorm:"index;not null"           json:"category_id"`
	CountInStock    uint      `gorm:"not null"                 json:"count_in_stock"`
	Rating          float64   `json:"rating"`
	IsFeatured      bool      `gorm:"default:false"            json:"is_featured"`
	CreatedAt       time.Time `json:"created_at"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Street       string `json:"street"`
	Apartment    string `json:"apartment"`
	Zip          string `json:"zip"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	Role         string `gorm:"not null"                 json:"role"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      string `gorm:"not null"        json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

// OrderItem is created standalone and attached to exactly one order
// afterwards via Order.ItemIDs. The unit price is not stored here, it is
// resolved from the catalog when the order total is computed.
type OrderItem struct {
	ID        uint `gorm:"primaryKey;autoIncrement"    json:"id"`
	ProductID uint `gorm:"not null"                    json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0"  json:"quantity"`
}

const (
	OrderStatusOrdered   = "Ordered"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
	OrderStatusCancelled = "Cancelled"
)

// ValidOrderStatus reports whether s is one of the four order states.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusOrdered, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemIDs          []uint    `gorm:"serializer:json"          json:"order_items"`
	ShippingAddress1 string    `gorm:"not null"                 json:"shipping_address1"`
	ShippingAddress2 string    `json:"shipping_address2"`
	City             string    `gorm:"not null"                 json:"city"`
	Zip              string    `gorm:"not null"                 json:"zip"`
	Country          string    `gorm:"not null"                 json:"country"`
	Phone            string    `gorm:"not null"                 json:"phone"`
	Status           string    `gorm:"not null"                 json:"status"`
	TotalPrice       float64   `gorm:"not null"                 json:"total_price"`
	UserID           uint      `gorm:"index;not null"           json:"user_id"`
	CreatedAt        time.Time `json:"created_at"`
}
