package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/models"
)

func setupLedgerDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(&models.Client{}, &models.Order{}, &models.OrderItem{}, &models.FinancialTransaction{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedPaidableOrder(t *testing.T, db *gorm.DB, number string, total float64) *models.Order {
	client := models.Client{Name: "Ibu Sari"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}
	order := models.Order{
		OrderNumber:  number,
		ClientID:     client.ID,
		DeliveryDate: time.Now(),
		TotalAmount:  total,
		Currency:     "IDR",
		CreatedAt:    time.Now(),
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return &order
}

func revenueCount(t *testing.T, db *gorm.DB, orderID uint) int64 {
	var count int64
	err := db.Model(&models.FinancialTransaction{}).
		Where("trx_type = ? AND source_type = ? AND source_id = ?",
			models.TrxRevenue, models.SourceOrder, orderID).
		Count(&count).Error
	assert.NoError(t, err)
	return count
}

func TestMarkPaidIdempotent(t *testing.T) {
	db := setupLedgerDB(t)
	ls := NewLedgerService(db)
	order := seedPaidableOrder(t, db, "12-05-01", 150000)

	assert.NoError(t, ls.MarkPaid(order))
	assert.NoError(t, ls.MarkPaid(order))

	// markPaid dua kali -> tetap satu baris revenue
	assert.EqualValues(t, 1, revenueCount(t, db, order.ID))

	var trx models.FinancialTransaction
	assert.NoError(t, db.Where("source_id = ?", order.ID).First(&trx).Error)
	assert.Equal(t, 150000.0, trx.Amount)
	assert.Equal(t, models.TrxRevenue, trx.TrxType)
	assert.Equal(t, order.CreatedAt.Unix(), trx.TrxDate.Unix())
}

func TestMarkUnpaidThenPaidRestoresSingleRow(t *testing.T) {
	db := setupLedgerDB(t)
	ls := NewLedgerService(db)
	order := seedPaidableOrder(t, db, "12-05-02", 90000)

	assert.NoError(t, ls.MarkPaid(order))
	assert.NoError(t, ls.MarkUnpaid(order))
	assert.EqualValues(t, 0, revenueCount(t, db, order.ID))

	assert.NoError(t, ls.MarkPaid(order))
	assert.EqualValues(t, 1, revenueCount(t, db, order.ID))
}

func TestRecalcOrderTotal(t *testing.T) {
	db := setupLedgerDB(t)
	ls := NewLedgerService(db)
	order := seedPaidableOrder(t, db, "12-05-03", 0)

	items := []models.OrderItem{
		{OrderID: order.ID, ProductName: "Roti Sobek", Quantity: 3, UnitPrice: 15000, Subtotal: 45000, OrderNumber: order.OrderNumber, DeliveryDate: order.DeliveryDate},
		{OrderID: order.ID, ProductName: "Bolu Pandan", Quantity: 1, UnitPrice: 80000, Subtotal: 80000, OrderNumber: order.OrderNumber, DeliveryDate: order.DeliveryDate},
	}
	for i := range items {
		assert.NoError(t, db.Create(&items[i]).Error)
	}

	total, err := ls.RecalcOrderTotal(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, 125000.0, total)

	var reloaded models.Order
	assert.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, 125000.0, reloaded.TotalAmount)

	// Hapus satu item -> total mengikuti jumlah subtotal yang tersisa
	assert.NoError(t, db.Delete(&items[0]).Error)
	total, err = ls.RecalcOrderTotal(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, 80000.0, total)
}

func TestRecalcOrderTotalSyncsRevenueRow(t *testing.T) {
	db := setupLedgerDB(t)
	ls := NewLedgerService(db)
	order := seedPaidableOrder(t, db, "12-05-04", 50000)
	assert.NoError(t, ls.MarkPaid(order))

	item := models.OrderItem{OrderID: order.ID, ProductName: "Lapis Legit", Quantity: 1, UnitPrice: 250000, Subtotal: 250000, OrderNumber: order.OrderNumber, DeliveryDate: order.DeliveryDate}
	assert.NoError(t, db.Create(&item).Error)

	_, err := ls.RecalcOrderTotal(order.ID)
	assert.NoError(t, err)

	var trx models.FinancialTransaction
	assert.NoError(t, db.Where("source_id = ?", order.ID).First(&trx).Error)
	assert.Equal(t, 250000.0, trx.Amount)
}

func TestRecalcClientStats(t *testing.T) {
	db := setupLedgerDB(t)
	ls := NewLedgerService(db)

	client := models.Client{Name: "Pak Budi"}
	assert.NoError(t, db.Create(&client).Error)

	first := models.Order{OrderNumber: "01-06-01", ClientID: client.ID, DeliveryDate: time.Now(), TotalAmount: 100000, Paid: true, CreatedAt: time.Now().Add(-48 * time.Hour)}
	second := models.Order{OrderNumber: "02-06-02", ClientID: client.ID, DeliveryDate: time.Now(), TotalAmount: 60000, Paid: false, CreatedAt: time.Now()}
	assert.NoError(t, db.Create(&first).Error)
	assert.NoError(t, db.Create(&second).Error)

	assert.NoError(t, ls.RecalcClientStats(client.ID))

	var reloaded models.Client
	assert.NoError(t, db.First(&reloaded, client.ID).Error)
	assert.Equal(t, 2, reloaded.TotalOrders)
	// Hanya order paid yang dihitung ke total spent
	assert.Equal(t, 100000.0, reloaded.TotalSpent)
	// Tanggal diambil dari created_at order, bukan delivery date
	assert.NotNil(t, reloaded.FirstOrderDate)
	assert.NotNil(t, reloaded.LastOrderDate)
	assert.Equal(t, first.CreatedAt.Unix(), reloaded.FirstOrderDate.Unix())
	assert.Equal(t, second.CreatedAt.Unix(), reloaded.LastOrderDate.Unix())
}

func TestRecalcClientStatsWithoutOrders(t *testing.T) {
	db := setupLedgerDB(t)
	ls := NewLedgerService(db)

	client := models.Client{Name: "Pak Budi"}
	assert.NoError(t, db.Create(&client).Error)

	order := models.Order{OrderNumber: "03-06-01", ClientID: client.ID, DeliveryDate: time.Now(), TotalAmount: 50000, Paid: true, CreatedAt: time.Now()}
	assert.NoError(t, db.Create(&order).Error)
	assert.NoError(t, ls.RecalcClientStats(client.ID))

	// Order terakhir dihapus -> statistik kembali nol, tanggal kosong
	assert.NoError(t, db.Delete(&order).Error)
	assert.NoError(t, ls.RecalcClientStats(client.ID))

	var reloaded models.Client
	assert.NoError(t, db.First(&reloaded, client.ID).Error)
	assert.Equal(t, 0, reloaded.TotalOrders)
	assert.Equal(t, 0.0, reloaded.TotalSpent)
	assert.Nil(t, reloaded.FirstOrderDate)
	assert.Nil(t, reloaded.LastOrderDate)
}

func TestCreateExpenseValidation(t *testing.T) {
	db := setupLedgerDB(t)
	ls := NewLedgerService(db)

	_, err := ls.CreateExpense(time.Now(), 50000, "lottery", "", "", "")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = ls.CreateExpense(time.Now(), 0, "ingredients", "", "", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	trx, err := ls.CreateExpense(time.Now(), 350000, "ingredients", "Tepung 25kg", "cash", "")
	assert.NoError(t, err)
	assert.Equal(t, models.TrxExpense, trx.TrxType)
	assert.Equal(t, models.SourceManual, trx.SourceType)
	assert.NotNil(t, trx.ExpenseCategory)
	assert.Equal(t, "ingredients", *trx.ExpenseCategory)
}
