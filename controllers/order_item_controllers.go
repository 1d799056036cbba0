package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/events"
	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
)

type OrderItemController struct {
	DB     *gorm.DB
	Hub    *events.Hub
	Ledger *services.LedgerService
}

func NewOrderItemController(db *gorm.DB, hub *events.Hub, ledger *services.LedgerService) *OrderItemController {
	return &OrderItemController{DB: db, Hub: hub, Ledger: ledger}
}

// AddItem -> tambah item ke order yang sudah ada. Total order dihitung
// ulang sebelum response supaya pembacaan berikutnya tidak basi.
func (ic *OrderItemController) AddItem(c *gin.Context) {
	var order models.Order
	if err := ic.DB.First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type ReqBody struct {
		ProductName string  `json:"product_name" binding:"required"`
		Quantity    int     `json:"quantity" binding:"required"`
		UnitPrice   float64 `json:"unit_price"`
		Notes       string  `json:"notes"`
	}
	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.Quantity <= 0 {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidQuantity)
		return
	}

	item := models.OrderItem{
		OrderID:      order.ID,
		ProductName:  body.ProductName,
		Quantity:     body.Quantity,
		UnitPrice:    body.UnitPrice,
		Subtotal:     float64(body.Quantity) * body.UnitPrice,
		Status:       models.StatusNew,
		Notes:        body.Notes,
		OrderNumber:  order.OrderNumber,
		DeliveryDate: order.DeliveryDate,
		DeliveryType: order.DeliveryType,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := ic.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if _, err := ic.Ledger.RecalcOrderTotal(order.ID); err != nil {
		utils.ErrorLogger.Printf("Error recalculating total for order %s: %v", order.OrderNumber, err)
	}

	ic.Hub.Broadcast(events.ItemAddedMessage(order.ID, item.ID, order.OrderNumber, item))

	utils.RespondJSON(c, http.StatusCreated, "Item added", item)
}

// UpdateItemStatus -> transisi state machine produksi untuk satu item.
// Status target harus anggota enum; masuk 'prepared' pertama kali mengisi
// started_at (idempotent), masuk 'delivered'/'cancelled' mengisi
// completed_at. Transisi mundur tetap diizinkan untuk koreksi salah tekan.
func (ic *OrderItemController) UpdateItemStatus(c *gin.Context) {
	type ReqBody struct {
		Status string `json:"status" binding:"required"`
	}
	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !models.ValidProductionStatus(body.Status) {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidStatus)
		return
	}

	var item models.OrderItem
	if err := ic.DB.First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	oldStatus := item.Status
	item.Status = body.Status
	item.UpdatedAt = time.Now()

	now := time.Now()
	if body.Status == models.StatusPrepared && item.StartedAt == nil {
		// Hanya entry pertama ke prepared; masuk ulang tidak me-reset
		item.StartedAt = &now
	}
	if models.TerminalStatus(body.Status) {
		item.CompletedAt = &now
	}

	if err := ic.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ic.Hub.Broadcast(events.StatusUpdateMessage(item.OrderID, item.ID, item.OrderNumber, oldStatus, item.Status))

	utils.InfoLogger.Printf("Item %d (%s): %s -> %s", item.ID, item.OrderNumber, oldStatus, item.Status)
	utils.RespondJSON(c, http.StatusOK, "Item status updated", item)
}

// UpdateItemNotes -> ubah catatan produksi satu item
func (ic *OrderItemController) UpdateItemNotes(c *gin.Context) {
	type ReqBody struct {
		Notes *string `json:"notes" binding:"required"`
	}
	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var item models.OrderItem
	if err := ic.DB.First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	item.Notes = *body.Notes
	item.UpdatedAt = time.Now()
	if err := ic.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ic.Hub.Broadcast(events.NotesUpdateMessage(item.OrderID, item.ID, item.OrderNumber, item.Notes))

	utils.RespondJSON(c, http.StatusOK, "Item notes updated", item)
}

// DeleteItem -> hapus satu item. Kalau item ini item TERAKHIR ordernya,
// seluruh order ikut dihapus (beserta items dan baris ledger-nya) supaya
// tidak ada order kosong. Selain itu cukup hapus item + hitung ulang total.
func (ic *OrderItemController) DeleteItem(c *gin.Context) {
	var item models.OrderItem
	if err := ic.DB.First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var siblingCount int64
	if err := ic.DB.Model(&models.OrderItem{}).
		Where("order_id = ?", item.OrderID).
		Count(&siblingCount).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if siblingCount <= 1 {
		// Item terakhir -> hapus order sekalian (cascade eksplisit)
		var order models.Order
		if err := ic.DB.First(&order, item.OrderID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}

		err := ic.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			if err := ic.Ledger.DeleteOrderRevenue(tx, order.ID); err != nil {
				return err
			}
			return tx.Delete(&order).Error
		})
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}

		if err := ic.Ledger.RecalcClientStats(order.ClientID); err != nil {
			utils.ErrorLogger.Printf("Error recalculating stats for client %d: %v", order.ClientID, err)
		}

		ic.Hub.Broadcast(events.ItemDeletedMessage(order.ID, item.ID, order.OrderNumber, true))

		utils.InfoLogger.Printf("Order %s deleted (last item removed)", order.OrderNumber)
		utils.RespondJSON(c, http.StatusOK, "Item and empty order deleted", gin.H{
			"item_id":       item.ID,
			"order_id":      order.ID,
			"order_deleted": true,
		})
		return
	}

	if err := ic.DB.Delete(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if _, err := ic.Ledger.RecalcOrderTotal(item.OrderID); err != nil {
		utils.ErrorLogger.Printf("Error recalculating total for order %s: %v", item.OrderNumber, err)
	}

	ic.Hub.Broadcast(events.ItemDeletedMessage(item.OrderID, item.ID, item.OrderNumber, false))

	utils.RespondJSON(c, http.StatusOK, "Item deleted", gin.H{
		"item_id":       item.ID,
		"order_id":      item.OrderID,
		"order_deleted": false,
	})
}

// GetProductionItems -> tampilan produksi untuk dapur. Baca langsung
// dari kolom denormalisasi di order_items, tanpa join ke orders.
func (ic *OrderItemController) GetProductionItems(c *gin.Context) {
	query := ic.DB.Model(&models.OrderItem{})

	if status := c.Query("status"); status != "" {
		if !models.ValidProductionStatus(status) {
			utils.RespondError(c, http.StatusBadRequest, ErrInvalidStatus)
			return
		}
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		d, err := utils.ParseLocalDate(date)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		query = query.Where("delivery_date = ?", d)
	}

	var items []models.OrderItem
	if err := query.Order("delivery_date asc, order_number asc").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Production items", items)
}
