package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/utils"
)

var (
	ErrInvalidCategory = errors.New("expense category tidak dikenal")
	ErrInvalidAmount   = errors.New("amount harus lebih besar dari 0")
)

// LedgerService menjaga konsistensi antara status pembayaran order,
// record transaksi di ledger, total order, dan statistik client.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// findOrderRevenue -> baris revenue milik satu order (source_type='order')
func (ls *LedgerService) findOrderRevenue(orderID uint) (*models.FinancialTransaction, error) {
	var trx models.FinancialTransaction
	err := ls.DB.Where("trx_type = ? AND source_type = ? AND source_id = ?",
		models.TrxRevenue, models.SourceOrder, orderID).First(&trx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

// MarkPaid membuat record revenue untuk order. Idempotent: kalau baris
// revenue untuk order ini sudah ada, tidak ada duplikat yang dibuat.
// Transaksi diberi tanggal pembuatan order dengan amount = total order,
// lalu statistik client dihitung ulang.
func (ls *LedgerService) MarkPaid(order *models.Order) error {
	existing, err := ls.findOrderRevenue(order.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	orderID := order.ID
	clientID := order.ClientID
	trx := models.FinancialTransaction{
		TrxType:       models.TrxRevenue,
		TrxDate:       order.CreatedAt,
		Amount:        order.TotalAmount,
		Currency:      order.Currency,
		Description:   fmt.Sprintf("Pembayaran order %s kirim %s (Rp %s)", order.OrderNumber, utils.FormatLocalDate(order.DeliveryDate), utils.FormatCurrency(order.TotalAmount)),
		SourceType:    models.SourceOrder,
		SourceID:      &orderID,
		ClientID:      &clientID,
		PaymentMethod: order.PaymentMethod,
		Channel:       "order",
	}

	if err := ls.DB.Create(&trx).Error; err != nil {
		return err
	}

	return ls.RecalcClientStats(order.ClientID)
}

// MarkUnpaid menghapus record revenue milik order (jika ada), lalu
// statistik client dihitung ulang.
func (ls *LedgerService) MarkUnpaid(order *models.Order) error {
	if err := ls.DB.Where("trx_type = ? AND source_type = ? AND source_id = ?",
		models.TrxRevenue, models.SourceOrder, order.ID).
		Delete(&models.FinancialTransaction{}).Error; err != nil {
		return err
	}

	return ls.RecalcClientStats(order.ClientID)
}

// DeleteOrderRevenue -> hapus baris revenue satu order (dipakai cascade
// delete order). Jalan di dalam transaksi database pemanggil.
func (ls *LedgerService) DeleteOrderRevenue(tx *gorm.DB, orderID uint) error {
	return tx.Where("source_type = ? AND source_id = ?",
		models.SourceOrder, orderID).
		Delete(&models.FinancialTransaction{}).Error
}

// RecalcOrderTotal menghitung ulang total order sebagai jumlah persis
// subtotal item-itemnya, dan menyinkronkan amount baris revenue kalau
// order sudah dibayar. Wajib dipanggil setelah setiap add/edit/delete
// item, sebelum total dibaca lagi.
func (ls *LedgerService) RecalcOrderTotal(orderID uint) (float64, error) {
	var total float64
	if err := ls.DB.Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(subtotal), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}

	if err := ls.DB.Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"total_amount": total,
			"updated_at":   time.Now(),
		}).Error; err != nil {
		return 0, err
	}

	// Baris revenue ikut disinkronkan supaya ledger tidak basi
	if err := ls.DB.Model(&models.FinancialTransaction{}).
		Where("trx_type = ? AND source_type = ? AND source_id = ?",
			models.TrxRevenue, models.SourceOrder, orderID).
		Update("amount", total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

// RecalcClientStats menghitung ulang statistik turunan client dari
// seluruh order miliknya. Statistik tidak pernah diedit manual.
func (ls *LedgerService) RecalcClientStats(clientID uint) error {
	var totalOrders int64
	if err := ls.DB.Model(&models.Order{}).
		Where("client_id = ?", clientID).
		Count(&totalOrders).Error; err != nil {
		return err
	}

	// MIN/MAX di atas kolom waktu tidak portabel: driver sqlite
	// mengembalikan string untuk ekspresi agregat. Ambil order tertua
	// dan terbaru lewat ORDER BY supaya konversi kolom gorm yang jalan.
	var firstOrder, lastOrder *time.Time
	if totalOrders > 0 {
		var oldest, newest models.Order
		if err := ls.DB.Where("client_id = ?", clientID).
			Order("created_at asc").First(&oldest).Error; err != nil {
			return err
		}
		if err := ls.DB.Where("client_id = ?", clientID).
			Order("created_at desc").First(&newest).Error; err != nil {
			return err
		}
		firstOrder = &oldest.CreatedAt
		lastOrder = &newest.CreatedAt
	}

	// Total spent hanya dari order yang sudah dibayar
	var totalSpent float64
	if err := ls.DB.Model(&models.Order{}).
		Where("client_id = ? AND paid = ?", clientID, true).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalSpent).Error; err != nil {
		return err
	}

	return ls.DB.Model(&models.Client{}).
		Where("id = ?", clientID).
		Updates(map[string]interface{}{
			"total_orders":     totalOrders,
			"total_spent":      totalSpent,
			"first_order_date": firstOrder,
			"last_order_date":  lastOrder,
			"updated_at":       time.Now(),
		}).Error
}

// CreateExpense membuat transaksi pengeluaran manual (tidak terhubung ke
// order manapun). Kategori divalidasi terhadap closed set, amount harus
// strictly positive.
func (ls *LedgerService) CreateExpense(trxDate time.Time, amount float64, category, description, paymentMethod, notes string) (*models.FinancialTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !models.ValidExpenseCategory(category) {
		return nil, ErrInvalidCategory
	}
	if paymentMethod == "" {
		paymentMethod = models.PaymentCash
	}

	trx := models.FinancialTransaction{
		TrxType:         models.TrxExpense,
		TrxDate:         trxDate,
		Amount:          amount,
		Currency:        "IDR",
		Description:     description,
		SourceType:      models.SourceManual,
		PaymentMethod:   paymentMethod,
		Channel:         "manual",
		ExpenseCategory: &category,
		Notes:           notes,
	}

	if err := ls.DB.Create(&trx).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}
