package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/utils"
)

type ClientController struct {
	DB *gorm.DB
}

func NewClientController(db *gorm.DB) *ClientController {
	return &ClientController{DB: db}
}

// GetAllClients -> semua client (default tanpa yang diarsipkan)
func (cc *ClientController) GetAllClients(c *gin.Context) {
	query := cc.DB.Order("name asc")
	if c.Query("archived") != "true" {
		query = query.Where("archived = ?", false)
	}

	var clients []models.Client
	if err := query.Find(&clients).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of clients", clients)
}

// CreateClient -> daftarkan client baru
func (cc *ClientController) CreateClient(c *gin.Context) {
	type ReqBody struct {
		Name    string `json:"name" binding:"required"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
		Address string `json:"address"`
		Notes   string `json:"notes"`
	}
	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	client := models.Client{
		Name:      body.Name,
		Phone:     body.Phone,
		Email:     body.Email,
		Address:   body.Address,
		Notes:     body.Notes,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := cc.DB.Create(&client).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New client created: %s (ID=%d)", client.Name, client.ID)
	utils.RespondJSON(c, http.StatusCreated, "Client created", client)
}

// GetClientByID -> detail client termasuk statistik turunannya
func (cc *ClientController) GetClientByID(c *gin.Context) {
	var client models.Client
	if err := cc.DB.First(&client, c.Param("client_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Client detail", client)
}

// UpdateClient -> ubah data kontak. Field statistik TIDAK bisa diubah
// lewat sini; mereka dihitung ulang oleh ledger service.
func (cc *ClientController) UpdateClient(c *gin.Context) {
	var client models.Client
	if err := cc.DB.First(&client, c.Param("client_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type ReqBody struct {
		Name    *string `json:"name"`
		Phone   *string `json:"phone"`
		Email   *string `json:"email"`
		Address *string `json:"address"`
		Notes   *string `json:"notes"`
	}
	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Name != nil {
		client.Name = *body.Name
	}
	if body.Phone != nil {
		client.Phone = *body.Phone
	}
	if body.Email != nil {
		client.Email = *body.Email
	}
	if body.Address != nil {
		client.Address = *body.Address
	}
	if body.Notes != nil {
		client.Notes = *body.Notes
	}
	client.UpdatedAt = time.Now()

	if err := cc.DB.Save(&client).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Client updated", client)
}

// DeleteClient -> hapus client. Client yang masih punya order tidak
// dihapus, hanya diarsipkan supaya riwayat order dan ledger tetap utuh.
func (cc *ClientController) DeleteClient(c *gin.Context) {
	var client models.Client
	if err := cc.DB.First(&client, c.Param("client_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var orderCount int64
	if err := cc.DB.Model(&models.Order{}).
		Where("client_id = ?", client.ID).
		Count(&orderCount).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if orderCount > 0 {
		client.Archived = true
		client.UpdatedAt = time.Now()
		if err := cc.DB.Save(&client).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Client archived", client)
		return
	}

	if err := cc.DB.Delete(&client).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Client deleted", gin.H{"client_id": client.ID})
}
