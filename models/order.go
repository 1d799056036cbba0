package models

import (
	"time"
)

// Delivery types untuk order
const (
	DeliveryPickup    = "pickup"
	DeliveryCourier   = "delivery"
	DeliveryImmediate = "immediate"
)

// Payment methods yang didukung
const (
	PaymentCash         = "cash"
	PaymentQRIS         = "qris"
	PaymentBankTransfer = "bank_transfer"
)

type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	OrderNumber   string      `gorm:"type:varchar(20);not null;uniqueIndex" json:"order_number"`
	ClientID      uint        `gorm:"not null;index" json:"client_id"`
	Client        Client      `gorm:"foreignKey:ClientID" json:"client"`
	DeliveryDate  time.Time   `gorm:"not null;index" json:"delivery_date"`
	DeliveryType  string      `gorm:"type:varchar(20);not null;default:'pickup'" json:"delivery_type"`
	Paid          bool        `gorm:"not null;default:false" json:"paid"`
	PaymentMethod string      `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	TotalAmount   float64     `gorm:"type:decimal(12,2);not null;default:0.00" json:"total_amount"`
	Currency      string      `gorm:"type:varchar(3);not null;default:'IDR'" json:"currency"`
	Notes         string      `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems    []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}

// ValidDeliveryType -> cek tipe pengiriman termasuk enum yang dikenal
func ValidDeliveryType(t string) bool {
	switch t {
	case DeliveryPickup, DeliveryCourier, DeliveryImmediate:
		return true
	}
	return false
}

// ValidPaymentMethod -> cek metode pembayaran termasuk enum yang dikenal
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentQRIS, PaymentBankTransfer:
		return true
	}
	return false
}
