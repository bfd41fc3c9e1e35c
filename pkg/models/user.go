package models

import (
	"time"
)

type User struct {
	ID         string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email      string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	FirstName  string          `gorm:"type:varchar(30);not null" json:"firstName"`
	LastName   string          `gorm:"type:varchar(30);not null" json:"lastName"`
	Address    string          `gorm:"type:varchar(255)" json:"address"`
	Preference *UserPreference `gorm:"foreignKey:UserID" json:"userPreference,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`

	SavedProducts []Product `gorm:"many2many:saved_products" json:"savedProducts,omitempty"`
	Orders        []Order   `gorm:"foreignKey:UserID" json:"orders,omitempty"`
}

func (User) TableName() string {
	return "users"
}

type UserPreference struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID       string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"-"`
	ReceiveEmail bool      `json:"receiveEmail"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}
