package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
)

type TransactionController struct {
	DB     *gorm.DB
	Ledger *services.LedgerService
}

func NewTransactionController(db *gorm.DB, ledger *services.LedgerService) *TransactionController {
	return &TransactionController{DB: db, Ledger: ledger}
}

// GetAllTransactions -> list isi ledger, filter opsional tipe /
// kategori / rentang tanggal
func (tc *TransactionController) GetAllTransactions(c *gin.Context) {
	query := tc.DB.Preload("Client")

	if trxType := c.Query("type"); trxType != "" {
		query = query.Where("trx_type = ?", trxType)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("expense_category = ?", category)
	}
	if from := c.Query("from"); from != "" {
		d, err := utils.ParseLocalDate(from)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		query = query.Where("trx_date >= ?", d)
	}
	if to := c.Query("to"); to != "" {
		d, err := utils.ParseLocalDate(to)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		query = query.Where("trx_date <= ?", d)
	}

	var transactions []models.FinancialTransaction
	if err := query.Order("trx_date desc, id desc").Find(&transactions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of transactions", transactions)
}

// CreateExpense -> catat pengeluaran manual (bahan, sewa, gaji, dst).
// Kategori harus anggota closed set, amount harus > 0.
func (tc *TransactionController) CreateExpense(c *gin.Context) {
	type ReqBody struct {
		Date          string  `json:"date" binding:"required"`
		Amount        float64 `json:"amount" binding:"required"`
		Category      string  `json:"category" binding:"required"`
		Description   string  `json:"description"`
		PaymentMethod string  `json:"payment_method"`
		Notes         string  `json:"notes"`
	}
	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	trxDate, err := utils.ParseLocalDate(body.Date)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	trx, err := tc.Ledger.CreateExpense(trxDate, body.Amount, body.Category,
		body.Description, body.PaymentMethod, body.Notes)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) || errors.Is(err, services.ErrInvalidCategory) {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Expense recorded: %s Rp %s", body.Category, utils.FormatCurrency(body.Amount))
	utils.RespondJSON(c, http.StatusCreated, "Expense recorded", trx)
}

// DeleteTransaction -> hapus transaksi manual. Baris bersumber order
// sepenuhnya milik reconciler: hapus lewat toggle bayar / delete order.
func (tc *TransactionController) DeleteTransaction(c *gin.Context) {
	var trx models.FinancialTransaction
	if err := tc.DB.First(&trx, c.Param("trx_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if trx.SourceType == models.SourceOrder {
		utils.RespondError(c, http.StatusConflict, ErrOrderManagedTrx)
		return
	}

	if err := tc.DB.Delete(&trx).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Transaction deleted", gin.H{"trx_id": trx.ID})
}

// GetLedgerSummary -> ringkasan revenue/expense/net untuk satu rentang
func (tc *TransactionController) GetLedgerSummary(c *gin.Context) {
	type sums struct {
		Revenue float64 `json:"revenue"`
		Expense float64 `json:"expense"`
		Net     float64 `json:"net"`
	}

	query := tc.DB.Model(&models.FinancialTransaction{})
	if from := c.Query("from"); from != "" {
		d, err := utils.ParseLocalDate(from)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		query = query.Where("trx_date >= ?", d)
	}
	if to := c.Query("to"); to != "" {
		d, err := utils.ParseLocalDate(to)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		query = query.Where("trx_date <= ?", d)
	}

	var result sums
	if err := query.
		Select("COALESCE(SUM(CASE WHEN trx_type = 'revenue' THEN amount ELSE 0 END), 0) as revenue, " +
			"COALESCE(SUM(CASE WHEN trx_type = 'expense' THEN amount ELSE 0 END), 0) as expense").
		Scan(&result).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	result.Net = result.Revenue - result.Expense

	utils.RespondJSON(c, http.StatusOK, "Ledger summary", result)
}
