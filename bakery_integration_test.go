package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/events"
	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/router"
	"github.com/yeremiapane/bakery-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// TestEndToEndIntegration menguji flow utama:
// 0. Register admin + login -> token
// 1. Buat client
// 2. Buat order -> nomor DD-MM-01, total = jumlah subtotal
// 3. Toggle paid -> satu baris revenue + statistik client
// 4. Item jalan di tahapan produksi -> delivered
// 5. Hapus item terakhir -> order + ledger ikut terhapus
func TestEndToEndIntegration(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := setupIntegrationDB(t)
	hub := events.NewHub()
	r := router.SetupRouter(db, hub, nil)

	token := registerAndLogin(t, r)
	clientID := createClientTest(t, r, token)
	orderID := createOrderTest(t, r, token, clientID)
	payOrderTest(t, r, token, orderID, clientID)
	productionFlowTest(t, r, token, db, orderID)
	deleteLastItemTest(t, r, token, db, orderID)
}

func setupIntegrationDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Order{},
		&models.OrderItem{},
		&models.FinancialTransaction{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func doJSON(t *testing.T, r *gin.Engine, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, _ := resp["data"].(map[string]interface{})
	return data
}

func registerAndLogin(t *testing.T, r *gin.Engine) string {
	w := doJSON(t, r, "POST", "/register", "", map[string]interface{}{
		"name":     "Admin Bakery",
		"email":    "admin@bakery.test",
		"password": "rahasia123",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/login", "", map[string]interface{}{
		"email":    "admin@bakery.test",
		"password": "rahasia123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	token, _ := dataOf(t, w)["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func createClientTest(t *testing.T, r *gin.Engine, token string) int {
	w := doJSON(t, r, "POST", "/admin/clients", token, map[string]interface{}{
		"name":  "Ibu Sari",
		"phone": "0812000111",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	return int(dataOf(t, w)["id"].(float64))
}

func createOrderTest(t *testing.T, r *gin.Engine, token string, clientID int) int {
	w := doJSON(t, r, "POST", "/admin/orders", token, map[string]interface{}{
		"client_id":     clientID,
		"delivery_date": "2026-09-14",
		"delivery_type": "pickup",
		"items": []map[string]interface{}{
			{"product_name": "Roti Sobek", "quantity": 2, "unit_price": 15000},
			{"product_name": "Bolu Pandan", "quantity": 1, "unit_price": 80000},
		},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	data := dataOf(t, w)
	assert.Equal(t, "14-09-01", data["order_number"])
	assert.Equal(t, 110000.0, data["total_amount"])
	return int(data["id"].(float64))
}

func payOrderTest(t *testing.T, r *gin.Engine, token string, orderID, clientID int) {
	w := doJSON(t, r, "POST", fmt.Sprintf("/admin/orders/%d/payment", orderID), token,
		map[string]interface{}{"paid": true})
	assert.Equal(t, http.StatusOK, w.Code)

	// Ledger (role admin) berisi tepat satu revenue untuk order ini
	w = doJSON(t, r, "GET", "/admin/ledger/transactions?type=revenue", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	list := resp["data"].([]interface{})
	assert.Len(t, list, 1)
	trx := list[0].(map[string]interface{})
	assert.Equal(t, 110000.0, trx["amount"])
	assert.Equal(t, "order", trx["source_type"])

	// Statistik client ikut ter-update
	w = doJSON(t, r, "GET", fmt.Sprintf("/admin/clients/%d", clientID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	client := dataOf(t, w)
	assert.Equal(t, 1.0, client["total_orders"])
	assert.Equal(t, 110000.0, client["total_spent"])
}

func productionFlowTest(t *testing.T, r *gin.Engine, token string, db *gorm.DB, orderID int) {
	var items []models.OrderItem
	assert.NoError(t, db.Where("order_id = ?", orderID).Order("id asc").Find(&items).Error)
	assert.Len(t, items, 2)

	stages := []string{"prepared", "baked", "packaged", "delivered"}
	for _, stage := range stages {
		w := doJSON(t, r, "PATCH", fmt.Sprintf("/admin/order-items/%d/status", items[0].ID), token,
			map[string]interface{}{"status": stage})
		assert.Equal(t, http.StatusOK, w.Code)
	}

	var done models.OrderItem
	assert.NoError(t, db.First(&done, items[0].ID).Error)
	assert.Equal(t, models.StatusDelivered, done.Status)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.CompletedAt)

	// Item kedua dihapus -> order masih ada, total menyusut
	w := doJSON(t, r, "DELETE", fmt.Sprintf("/admin/order-items/%d", items[1].ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	assert.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, 30000.0, order.TotalAmount)
}

func deleteLastItemTest(t *testing.T, r *gin.Engine, token string, db *gorm.DB, orderID int) {
	var items []models.OrderItem
	assert.NoError(t, db.Where("order_id = ?", orderID).Find(&items).Error)
	assert.Len(t, items, 1)

	w := doJSON(t, r, "DELETE", fmt.Sprintf("/admin/order-items/%d", items[0].ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var orderCount, trxCount int64
	db.Model(&models.Order{}).Where("id = ?", orderID).Count(&orderCount)
	db.Model(&models.FinancialTransaction{}).Where("source_id = ?", orderID).Count(&trxCount)
	assert.EqualValues(t, 0, orderCount, "order kosong harus ikut terhapus")
	assert.EqualValues(t, 0, trxCount, "baris ledger order harus ikut terhapus")
}
