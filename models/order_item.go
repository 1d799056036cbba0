package models

import (
	"time"
)

// Production status untuk order item (urutan tahapan dapur)
const (
	StatusNew       = "new"
	StatusPrepared  = "prepared"
	StatusBaked     = "baked"
	StatusCreamed   = "creamed"
	StatusDecorated = "decorated"
	StatusPackaged  = "packaged"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// ProductionStatuses -> urutan tahapan produksi (tanpa cancelled)
var ProductionStatuses = []string{
	StatusNew,
	StatusPrepared,
	StatusBaked,
	StatusCreamed,
	StatusDecorated,
	StatusPackaged,
	StatusDelivered,
}

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order       Order   `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProductName string  `gorm:"type:varchar(100);not null" json:"product_name"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal    float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Status      string  `gorm:"type:varchar(20);not null;default:'new'" json:"status"`
	Notes       string  `gorm:"type:text" json:"notes"`
	// Kolom denormalisasi dari order induk, khusus untuk query tampilan produksi
	// tanpa join. Wajib di-sync saat delivery date / order number induk berubah.
	OrderNumber  string     `gorm:"type:varchar(20);not null;index" json:"order_number"`
	DeliveryDate time.Time  `gorm:"not null;index" json:"delivery_date"`
	DeliveryType string     `gorm:"type:varchar(20);not null" json:"delivery_type"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

// ValidProductionStatus -> status harus salah satu dari enum tetap
func ValidProductionStatus(s string) bool {
	if s == StatusCancelled {
		return true
	}
	for _, st := range ProductionStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// TerminalStatus -> delivered dan cancelled adalah status akhir
func TerminalStatus(s string) bool {
	return s == StatusDelivered || s == StatusCancelled
}
