package models

import (
	"time"
)

type Category string

const (
	CategoryFashion           Category = "FASHION"
	CategoryBeauty            Category = "BEAUTY"
	CategorySports            Category = "SPORTS"
	CategoryElectronics       Category = "ELECTRONICS"
	CategoryHomeInterior      Category = "HOME_INTERIOR"
	CategoryHouseholdSupplies Category = "HOUSEHOLD_SUPPLIES"
	CategoryKitchenware       Category = "KITCHENWARE"
)

// Valid reports whether c is one of the closed set of catalog categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFashion, CategoryBeauty, CategorySports, CategoryElectronics,
		CategoryHomeInterior, CategoryHouseholdSupplies, CategoryKitchenware:
		return true
	}
	return false
}

type Product struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `gorm:"type:varchar(60);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Category    Category  `gorm:"type:varchar(30);not null;index" json:"category"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}
