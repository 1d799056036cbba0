package models

import (
	"time"
)

// Client -> pelanggan bakery. Field statistik (TotalOrders, TotalSpent,
// FirstOrderDate, LastOrderDate) bersifat turunan: dihitung ulang dari
// seluruh order milik client, tidak pernah diedit manual.
type Client struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"type:varchar(100);not null" json:"name"`
	Phone          string     `gorm:"type:varchar(30)" json:"phone"`
	Email          string     `gorm:"type:varchar(100)" json:"email"`
	Address        string     `gorm:"type:text" json:"address"`
	Notes          string     `gorm:"type:text" json:"notes"`
	Archived       bool       `gorm:"not null;default:false" json:"archived"`
	TotalOrders    int        `gorm:"not null;default:0" json:"total_orders"`
	TotalSpent     float64    `gorm:"type:decimal(14,2);not null;default:0.00" json:"total_spent"`
	FirstOrderDate *time.Time `json:"first_order_date,omitempty"`
	LastOrderDate  *time.Time `json:"last_order_date,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}
