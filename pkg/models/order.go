package models

import (
	"time"
)

type Order struct {
	ID        string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string      `gorm:"type:varchar(36);not null;index" json:"userId"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"orderItems"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`

	// Total is derived from the items on read and never persisted.
	Total float64 `gorm:"-" json:"total,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// ComputeTotal sums unit price times quantity over the order's items.
func (o *Order) ComputeTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// OrderItem captures a product's price at the time the order was placed, so
// later catalog price changes do not alter historical orders.
type OrderItem struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID   string    `gorm:"type:varchar(36);not null;index" json:"orderId"`
	ProductID string    `gorm:"type:varchar(36);not null;index" json:"productId"`
	UnitPrice float64   `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
