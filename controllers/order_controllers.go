package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/events"
	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
)

type OrderController struct {
	DB        *gorm.DB
	Hub       *events.Hub
	Allocator *services.OrderNumberAllocator
	Ledger    *services.LedgerService
	Gateway   services.CheckoutGateway
}

func NewOrderController(db *gorm.DB, hub *events.Hub, allocator *services.OrderNumberAllocator, ledger *services.LedgerService) *OrderController {
	return &OrderController{
		DB:        db,
		Hub:       hub,
		Allocator: allocator,
		Ledger:    ledger,
	}
}

// GetAllOrders -> list orders beserta items, bisa difilter tanggal
// pengiriman / status bayar / client
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	query := oc.DB.Preload("OrderItems").Preload("Client")

	if date := c.Query("date"); date != "" {
		d, err := utils.ParseLocalDate(date)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		query = query.Where("delivery_date = ?", d)
	}
	if paid := c.Query("paid"); paid != "" {
		query = query.Where("paid = ?", paid == "true")
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var orders []models.Order
	if err := query.Order("delivery_date asc, order_number asc").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> detail 1 order
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	var order models.Order
	if err := oc.DB.Preload("OrderItems").Preload("Client").
		First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// CreateOrder -> buat order baru: alokasikan nomor, simpan order +
// items, lalu (secondary) ledger, statistik client, dan broadcast.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	type ItemReq struct {
		ProductName string  `json:"product_name" binding:"required"`
		Quantity    int     `json:"quantity" binding:"required"`
		UnitPrice   float64 `json:"unit_price"`
		Notes       string  `json:"notes"`
	}

	type ReqBody struct {
		ClientID      uint      `json:"client_id" binding:"required"`
		DeliveryDate  string    `json:"delivery_date" binding:"required"`
		DeliveryType  string    `json:"delivery_type"`
		PaymentMethod string    `json:"payment_method"`
		Paid          bool      `json:"paid"`
		Notes         string    `json:"notes"`
		Items         []ItemReq `json:"items" binding:"required"`
	}

	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if len(body.Items) == 0 {
		utils.RespondError(c, http.StatusBadRequest, ErrEmptyItems)
		return
	}
	for _, item := range body.Items {
		if item.Quantity <= 0 {
			utils.RespondError(c, http.StatusBadRequest, ErrInvalidQuantity)
			return
		}
	}

	deliveryDate, err := utils.ParseLocalDate(body.DeliveryDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.DeliveryType == "" {
		body.DeliveryType = models.DeliveryPickup
	}
	if !models.ValidDeliveryType(body.DeliveryType) {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidDelivery)
		return
	}
	if body.PaymentMethod == "" {
		body.PaymentMethod = models.PaymentCash
	}
	if !models.ValidPaymentMethod(body.PaymentMethod) {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidPayment)
		return
	}

	// Cek client ada
	var client models.Client
	if err := oc.DB.First(&client, body.ClientID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("client tidak ditemukan"))
		return
	}

	// Alokasi nomor + insert di-retry saat kena unique index order_number
	// (dua request bulan yang sama bisa menghitung counter identik)
	var order models.Order
	created := false
	for attempt := 0; attempt < 3 && !created; attempt++ {
		number, err := oc.Allocator.Next(deliveryDate)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}

		order = models.Order{
			OrderNumber:   number,
			ClientID:      body.ClientID,
			DeliveryDate:  deliveryDate,
			DeliveryType:  body.DeliveryType,
			Paid:          body.Paid,
			PaymentMethod: body.PaymentMethod,
			Currency:      "IDR",
			Notes:         body.Notes,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}

		err = oc.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&order).Error; err != nil {
				return err
			}

			var total float64
			for _, item := range body.Items {
				subtotal := float64(item.Quantity) * item.UnitPrice
				total += subtotal

				orderItem := models.OrderItem{
					OrderID:      order.ID,
					ProductName:  item.ProductName,
					Quantity:     item.Quantity,
					UnitPrice:    item.UnitPrice,
					Subtotal:     subtotal,
					Status:       models.StatusNew,
					Notes:        item.Notes,
					OrderNumber:  order.OrderNumber,
					DeliveryDate: order.DeliveryDate,
					DeliveryType: order.DeliveryType,
					CreatedAt:    time.Now(),
					UpdatedAt:    time.Now(),
				}
				if err := tx.Create(&orderItem).Error; err != nil {
					return err
				}
			}

			order.TotalAmount = total
			return tx.Model(&order).Update("total_amount", total).Error
		})

		if err == nil {
			created = true
		} else if services.IsDuplicateNumber(err) {
			utils.InfoLogger.Printf("Order number %s taken, retrying allocation", order.OrderNumber)
			order.ID = 0
		} else {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}
	if !created {
		utils.RespondError(c, http.StatusConflict, ErrNumberExhausted)
		return
	}

	// Secondary effects: kegagalan di sini di-log, order tetap sukses
	if order.Paid {
		if err := oc.Ledger.MarkPaid(&order); err != nil {
			utils.ErrorLogger.Printf("Error creating revenue for order %s: %v", order.OrderNumber, err)
		}
	} else {
		if err := oc.Ledger.RecalcClientStats(order.ClientID); err != nil {
			utils.ErrorLogger.Printf("Error recalculating stats for client %d: %v", order.ClientID, err)
		}
	}

	oc.DB.Preload("OrderItems").First(&order, order.ID)
	oc.Hub.Broadcast(events.NewOrderMessage(order.ID, order.OrderNumber, order))

	utils.InfoLogger.Printf("Order %s created for client %d", order.OrderNumber, order.ClientID)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// UpdateOrder -> ubah tanggal pengiriman / tipe / metode bayar / catatan.
// Kolom denormalisasi di order items ikut di-sync saat tanggal berubah.
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	var order models.Order
	if err := oc.DB.First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type UpdateReq struct {
		DeliveryDate  *string `json:"delivery_date"`
		DeliveryType  *string `json:"delivery_type"`
		PaymentMethod *string `json:"payment_method"`
		Notes         *string `json:"notes"`
	}

	var req UpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.DeliveryType != nil {
		if !models.ValidDeliveryType(*req.DeliveryType) {
			utils.RespondError(c, http.StatusBadRequest, ErrInvalidDelivery)
			return
		}
		order.DeliveryType = *req.DeliveryType
	}
	if req.PaymentMethod != nil {
		if !models.ValidPaymentMethod(*req.PaymentMethod) {
			utils.RespondError(c, http.StatusBadRequest, ErrInvalidPayment)
			return
		}
		order.PaymentMethod = *req.PaymentMethod
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	dateChanged := false
	if req.DeliveryDate != nil {
		d, err := utils.ParseLocalDate(*req.DeliveryDate)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		dateChanged = !d.Equal(order.DeliveryDate)
		order.DeliveryDate = d
	}

	order.UpdatedAt = time.Now()

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		if dateChanged || req.DeliveryType != nil {
			// Sync kolom denormalisasi di items
			return tx.Model(&models.OrderItem{}).
				Where("order_id = ?", order.ID).
				Updates(map[string]interface{}{
					"delivery_date": order.DeliveryDate,
					"delivery_type": order.DeliveryType,
					"updated_at":    time.Now(),
				}).Error
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

// TogglePayment -> set status bayar order. markPaid idempotent: order
// yang sudah paid di-mark paid lagi bukan error, cuma no-op.
func (oc *OrderController) TogglePayment(c *gin.Context) {
	var order models.Order
	if err := oc.DB.First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type ReqBody struct {
		Paid          bool    `json:"paid"`
		PaymentMethod *string `json:"payment_method"`
	}
	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.PaymentMethod != nil {
		if !models.ValidPaymentMethod(*body.PaymentMethod) {
			utils.RespondError(c, http.StatusBadRequest, ErrInvalidPayment)
			return
		}
		order.PaymentMethod = *body.PaymentMethod
	}

	order.Paid = body.Paid
	order.UpdatedAt = time.Now()
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Rekonsiliasi ledger adalah secondary effect: gagal -> log saja,
	// mutasi order di atas tetap dianggap sukses
	if body.Paid {
		if err := oc.Ledger.MarkPaid(&order); err != nil {
			utils.ErrorLogger.Printf("Error reconciling payment for order %s: %v", order.OrderNumber, err)
		}
	} else {
		if err := oc.Ledger.MarkUnpaid(&order); err != nil {
			utils.ErrorLogger.Printf("Error removing revenue for order %s: %v", order.OrderNumber, err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Payment status updated", order)
}

// CreateCheckout -> minta sesi checkout ke payment gateway (collaborator
// eksternal); dipakai kalau client membayar via qris
func (oc *OrderController) CreateCheckout(c *gin.Context) {
	if oc.Gateway == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, ErrGatewayNotReady)
		return
	}

	var order models.Order
	if err := oc.DB.Preload("Client").First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	session, err := oc.Gateway.CreateSession(&order)
	if err != nil {
		utils.RespondError(c, http.StatusBadGateway, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Checkout session created", session)
}

// DeleteOrder -> hapus order beserta items dan baris revenue-nya
// (cascade eksplisit), lalu statistik client dihitung ulang
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	var order models.Order
	if err := oc.DB.First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := oc.Ledger.DeleteOrderRevenue(tx, order.ID); err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := oc.Ledger.RecalcClientStats(order.ClientID); err != nil {
		utils.ErrorLogger.Printf("Error recalculating stats for client %d: %v", order.ClientID, err)
	}

	utils.InfoLogger.Printf("Order %s deleted", order.OrderNumber)
	utils.RespondJSON(c, http.StatusOK, "Order deleted", gin.H{"order_id": order.ID})
}
