package models

import (
	"time"
)

// Jenis transaksi ledger
const (
	TrxRevenue = "revenue"
	TrxExpense = "expense"
)

// Sumber transaksi
const (
	SourceOrder  = "order"
	SourceManual = "manual"
)

// ExpenseCategories -> kategori pengeluaran yang diizinkan (closed set)
var ExpenseCategories = []string{
	"ingredients",
	"packaging",
	"equipment",
	"rent",
	"utilities",
	"salary",
	"transport",
	"marketing",
	"other",
}

// FinancialTransaction -> catatan ledger datar (revenue/expense).
// Maksimal satu baris revenue dengan source_type='order' per order;
// baris itu ada jika dan hanya jika order.paid = true.
type FinancialTransaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TrxType         string    `gorm:"type:varchar(10);not null;index" json:"trx_type"`
	TrxDate         time.Time `gorm:"not null;index" json:"trx_date"`
	Amount          float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency        string    `gorm:"type:varchar(3);not null;default:'IDR'" json:"currency"`
	Description     string    `gorm:"type:varchar(255)" json:"description"`
	SourceType      string    `gorm:"type:varchar(10);not null;default:'manual';index:idx_source" json:"source_type"`
	SourceID        *uint     `gorm:"index:idx_source" json:"source_id,omitempty"`
	ClientID        *uint     `gorm:"index" json:"client_id,omitempty"`
	Client          *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	PaymentMethod   string    `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	Channel         string    `gorm:"type:varchar(30)" json:"channel"`
	ExpenseCategory *string   `gorm:"type:varchar(30)" json:"expense_category,omitempty"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

// ValidExpenseCategory -> kategori harus termasuk closed set
func ValidExpenseCategory(cat string) bool {
	for _, c := range ExpenseCategories {
		if c == cat {
			return true
		}
	}
	return false
}
