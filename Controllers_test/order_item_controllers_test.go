package Controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/controllers"
	"github.com/yeremiapane/bakery-app/events"
	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/services"
)

func setupItemRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	hub := events.NewHub()
	ledger := services.NewLedgerService(db)
	itemCtrl := controllers.NewOrderItemController(db, hub, ledger)

	router.POST("/orders/:order_id/items", itemCtrl.AddItem)
	router.PATCH("/order-items/:item_id/status", itemCtrl.UpdateItemStatus)
	router.PATCH("/order-items/:item_id/notes", itemCtrl.UpdateItemNotes)
	router.DELETE("/order-items/:item_id", itemCtrl.DeleteItem)
	router.GET("/production/items", itemCtrl.GetProductionItems)
	return router
}

// seedOrderWithItems -> order langsung di DB, tanpa lewat endpoint
func seedOrderWithItems(t *testing.T, db *gorm.DB, number string, itemCount int) (*models.Order, []models.OrderItem) {
	order := models.Order{
		OrderNumber:  number,
		ClientID:     1,
		DeliveryDate: time.Date(2026, 9, 14, 0, 0, 0, 0, time.Local),
		DeliveryType: models.DeliveryPickup,
		Currency:     "IDR",
		CreatedAt:    time.Now(),
	}
	assert.NoError(t, db.Create(&order).Error)

	var items []models.OrderItem
	for i := 0; i < itemCount; i++ {
		item := models.OrderItem{
			OrderID:      order.ID,
			ProductName:  fmt.Sprintf("Kue %d", i+1),
			Quantity:     1,
			UnitPrice:    20000,
			Subtotal:     20000,
			Status:       models.StatusNew,
			OrderNumber:  order.OrderNumber,
			DeliveryDate: order.DeliveryDate,
			DeliveryType: order.DeliveryType,
			CreatedAt:    time.Now(),
		}
		assert.NoError(t, db.Create(&item).Error)
		items = append(items, item)
	}

	order.TotalAmount = float64(itemCount) * 20000
	assert.NoError(t, db.Save(&order).Error)
	return &order, items
}

func patchStatus(t *testing.T, router *gin.Engine, itemID uint, status string) *httptest.ResponseRecorder {
	return postJSON(t, router, "PATCH", fmt.Sprintf("/order-items/%d/status", itemID),
		map[string]interface{}{"status": status})
}

func TestStatusTransitionTimestamps(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupItemRouter(db)
	_, items := seedOrderWithItems(t, db, "14-09-01", 1)
	item := items[0]

	// Masuk prepared pertama kali -> started_at terisi
	w := patchStatus(t, router, item.ID, "prepared")
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.OrderItem
	assert.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.NotNil(t, reloaded.StartedAt)
	firstStart := *reloaded.StartedAt

	// Transisi yang sama diulang -> started_at TIDAK di-reset
	time.Sleep(20 * time.Millisecond)
	w = patchStatus(t, router, item.ID, "prepared")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Equal(t, firstStart.UnixNano(), reloaded.StartedAt.UnixNano())

	// Masuk delivered -> completed_at terisi
	w = patchStatus(t, router, item.ID, "delivered")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.NotNil(t, reloaded.CompletedAt)
}

func TestCancelledSetsCompletedAt(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupItemRouter(db)
	_, items := seedOrderWithItems(t, db, "14-09-01", 2)

	w := patchStatus(t, router, items[0].ID, "cancelled")
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.OrderItem
	assert.NoError(t, db.First(&reloaded, items[0].ID).Error)
	assert.Equal(t, models.StatusCancelled, reloaded.Status)
	assert.NotNil(t, reloaded.CompletedAt)
	// Tidak pernah lewat prepared -> started_at tetap kosong
	assert.Nil(t, reloaded.StartedAt)
}

func TestUnknownStatusRejected(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupItemRouter(db)
	_, items := seedOrderWithItems(t, db, "14-09-01", 1)

	w := patchStatus(t, router, items[0].ID, "microwaved")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Status tidak berubah
	var reloaded models.OrderItem
	assert.NoError(t, db.First(&reloaded, items[0].ID).Error)
	assert.Equal(t, models.StatusNew, reloaded.Status)
}

func TestAddItemRecomputesTotal(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupItemRouter(db)
	order, _ := seedOrderWithItems(t, db, "14-09-01", 1)

	w := postJSON(t, router, "POST", fmt.Sprintf("/orders/%d/items", order.ID),
		map[string]interface{}{"product_name": "Lapis Legit", "quantity": 2, "unit_price": 125000})
	assert.Equal(t, http.StatusCreated, w.Code)

	var reloaded models.Order
	assert.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, 270000.0, reloaded.TotalAmount)
}

func TestDeleteNonLastItemKeepsOrder(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupItemRouter(db)
	order, items := seedOrderWithItems(t, db, "14-09-01", 3)

	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/order-items/%d", items[0].ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["data"].(map[string]interface{})["order_deleted"])

	var reloaded models.Order
	assert.NoError(t, db.First(&reloaded, order.ID).Error)
	// Total dihitung ulang dari subtotal yang tersisa
	assert.Equal(t, 40000.0, reloaded.TotalAmount)
}

func TestDeleteLastItemDeletesOrderAndLedger(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupItemRouter(db)
	order, items := seedOrderWithItems(t, db, "14-09-01", 1)

	// Order paid -> ada baris revenue yang harus ikut hilang
	ledger := services.NewLedgerService(db)
	order.Paid = true
	assert.NoError(t, db.Save(order).Error)
	assert.NoError(t, ledger.MarkPaid(order))

	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/order-items/%d", items[0].ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["data"].(map[string]interface{})["order_deleted"])

	var orderCount, trxCount int64
	db.Model(&models.Order{}).Where("id = ?", order.ID).Count(&orderCount)
	db.Model(&models.FinancialTransaction{}).Where("source_id = ?", order.ID).Count(&trxCount)
	assert.EqualValues(t, 0, orderCount)
	assert.EqualValues(t, 0, trxCount)
}

func TestProductionViewFilters(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupItemRouter(db)
	_, items := seedOrderWithItems(t, db, "14-09-01", 2)

	w := patchStatus(t, router, items[0].ID, "baked")
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ := http.NewRequest("GET", "/production/items?status=baked", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	list := resp["data"].([]interface{})
	assert.Len(t, list, 1)
	assert.Equal(t, "14-09-01", list[0].(map[string]interface{})["order_number"])
}
