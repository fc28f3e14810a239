package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tablewise/reserve-app/models"
	"github.com/tablewise/reserve-app/realtime"
	"github.com/tablewise/reserve-app/services"
	"github.com/tablewise/reserve-app/utils"
)

type PaymentController struct {
	DB      *gorm.DB
	Service *services.PaymentService
}

func NewPaymentController(db *gorm.DB, svc *services.PaymentService) *PaymentController {
	return &PaymentController{DB: db, Service: svc}
}

// CreatePaymentSession -> buat sesi checkout deposit untuk sebuah reservasi.
// Hanya user pemilik reservasi yang boleh membayar.
func (pc *PaymentController) CreatePaymentSession(c *gin.Context) {
	userID := c.GetUint("user_id")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation id"))
		return
	}

	var reservation models.Reservation
	if err := pc.DB.Preload("User").Preload("Restaurant").
		First(&reservation, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	if reservation.UserID != userID {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}
	if reservation.Status == models.ReservationCancelled {
		utils.RespondError(c, http.StatusBadRequest, errors.New("reservation is cancelled"))
		return
	}

	payment, err := pc.Service.CreateSession(reservation)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Payment session %s created for reservation %d", payment.OrderRef, reservation.ID)
	utils.RespondJSON(c, http.StatusCreated, "Payment session created", payment)
}

// HandlePaymentCallback -> webhook dari gateway; signature diverifikasi dulu
func (pc *PaymentController) HandlePaymentCallback(c *gin.Context) {
	var notif struct {
		OrderID           string `json:"order_id"`
		StatusCode        string `json:"status_code"`
		GrossAmount       string `json:"gross_amount"`
		SignatureKey      string `json:"signature_key"`
		TransactionStatus string `json:"transaction_status"`
		FraudStatus       string `json:"fraud_status"`
	}
	if err := c.ShouldBindJSON(&notif); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !pc.Service.VerifySignature(notif.OrderID, notif.StatusCode, notif.GrossAmount, notif.SignatureKey) {
		utils.RespondError(c, http.StatusForbidden, errors.New("invalid signature"))
		return
	}

	var payment models.Payment
	if err := pc.DB.Preload("Reservation").
		Where("order_ref = ?", notif.OrderID).
		First(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("payment not found"))
		return
	}

	newStatus := services.ResolveCallbackStatus(notif.TransactionStatus, notif.FraudStatus)
	payment.Status = newStatus
	if newStatus == models.PaymentSettled && payment.PaymentTime == nil {
		now := time.Now()
		payment.PaymentTime = &now
	}
	payment.UpdatedAt = time.Now()
	if err := pc.DB.Save(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.Publish(realtime.EventPaymentUpdated, payment,
		realtime.RestaurantChannel(payment.Reservation.RestaurantID))

	utils.InfoLogger.Printf("Payment %s updated to %s", payment.OrderRef, payment.Status)
	utils.RespondJSON(c, http.StatusOK, "Payment updated", payment)
}

// GetReservationPayments -> riwayat pembayaran sebuah reservasi
func (pc *PaymentController) GetReservationPayments(c *gin.Context) {
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation id"))
		return
	}

	var reservation models.Reservation
	if err := pc.DB.Preload("Restaurant").First(&reservation, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	if resolveRelation(userID, role, &reservation) == relationNone {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var payments []models.Payment
	if err := pc.DB.Where("reservation_id = ?", reservation.ID).
		Order("created_at DESC").Find(&payments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation payments", payments)
}
