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

type ReservationController struct {
	DB *gorm.DB
}

func NewReservationController(db *gorm.DB) *ReservationController {
	return &ReservationController{DB: db}
}

// relation menggambarkan hubungan actor dengan sebuah reservasi
type relation int

const (
	relationNone relation = iota
	relationSelf
	relationRestaurantOwner
	relationAdmin
)

// resolveRelation dipakai semua operasi supaya cek otorisasi seragam.
// Reservation harus sudah di-preload Restaurant-nya.
func resolveRelation(userID uint, role string, res *models.Reservation) relation {
	if role == models.RoleAdmin {
		return relationAdmin
	}
	if res.UserID == userID {
		return relationSelf
	}
	if res.Restaurant.OwnerID == userID {
		return relationRestaurantOwner
	}
	return relationNone
}

// CreateReservation -> buat reservasi baru (status='pending')
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req struct {
		Restaurant uint   `json:"restaurant"`
		Date       string `json:"date"`
		Time       string `json:"time"`
		PartySize  int    `json:"party_size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Restaurant == 0 || req.Date == "" || req.Time == "" || req.PartySize <= 0 {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("restaurant, date, time and party_size are required"))
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, req.Restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	// Satu user hanya boleh punya satu reservasi non-cancelled per slot.
	// Kecocokan slot memakai string persis, tanpa normalisasi tanggal/jam.
	var duplicates int64
	if err := rc.DB.Model(&models.Reservation{}).
		Where("user_id = ? AND restaurant_id = ? AND date = ? AND time = ? AND status <> ?",
			userID, restaurant.ID, req.Date, req.Time, models.ReservationCancelled).
		Count(&duplicates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if duplicates > 0 {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("you already have a reservation for this slot"))
		return
	}

	capacity := services.ResolveCapacity(restaurant)
	booked, err := services.Occupancy(rc.DB, restaurant.ID, req.Date, req.Time, 0)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	// Slot penuh tepat saat booked == capacity.
	// Cek dan insert di bawah tidak atomic: dua request bersamaan untuk slot
	// yang sama bisa sama-sama lolos cek ini dan melewati kapasitas.
	if booked >= int64(capacity) {
		utils.RespondError(c, http.StatusConflict, errors.New("this time slot is fully booked"))
		return
	}

	reservation := models.Reservation{
		UserID:       userID,
		RestaurantID: restaurant.ID,
		Date:         req.Date,
		Time:         req.Time,
		PartySize:    req.PartySize,
		Status:       models.ReservationPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := rc.DB.Create(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Reload dengan user & restoran untuk ditampilkan
	if err := rc.DB.Preload("User").Preload("Restaurant").
		First(&reservation, reservation.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.Publish(realtime.EventReservationCreated, reservation, "")
	realtime.Publish(realtime.EventReservationCreated, reservation,
		realtime.RestaurantChannel(restaurant.ID))

	utils.InfoLogger.Printf("Reservation %d created by user %d at restaurant %d (%s %s)",
		reservation.ID, userID, restaurant.ID, reservation.Date, reservation.Time)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

// GetMyReservations -> semua reservasi milik user, urut (date, time) naik
func (rc *ReservationController) GetMyReservations(c *gin.Context) {
	userID := c.GetUint("user_id")

	var reservations []models.Reservation
	if err := rc.DB.Preload("Restaurant").
		Where("user_id = ?", userID).
		Order("date ASC, time ASC").
		Find(&reservations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My reservations", reservations)
}

// GetOwnerReservations -> semua reservasi di restoran-restoran milik owner
func (rc *ReservationController) GetOwnerReservations(c *gin.Context) {
	userID := c.GetUint("user_id")

	var reservations []models.Reservation
	if err := rc.DB.Preload("User").Preload("Restaurant").
		Joins("JOIN restaurants ON restaurants.id = reservations.restaurant_id").
		Where("restaurants.owner_id = ?", userID).
		Order("reservations.date ASC, reservations.time ASC").
		Find(&reservations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant reservations", reservations)
}

// CancelReservation -> boleh oleh user pemilik reservasi, owner restoran, atau admin
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation id"))
		return
	}

	var reservation models.Reservation
	if err := rc.DB.Preload("User").Preload("Restaurant").
		First(&reservation, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	if resolveRelation(userID, role, &reservation) == relationNone {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	reservation.Status = models.ReservationCancelled
	reservation.UpdatedAt = time.Now()
	if err := rc.DB.Save(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.Publish(realtime.EventReservationCancelled, reservation, "")
	realtime.Publish(realtime.EventReservationCancelled, reservation,
		realtime.RestaurantChannel(reservation.RestaurantID))

	utils.InfoLogger.Printf("Reservation %d cancelled by user %d (role=%s)", reservation.ID, userID, role)
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", reservation)
}

// UpdateReservation -> ubah tanggal/jam/jumlah orang.
// Hanya user pemilik reservasi atau admin; owner restoran tidak boleh.
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation id"))
		return
	}

	var req struct {
		Date      *string `json:"date"`
		Time      *string `json:"time"`
		PartySize *int    `json:"party_size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var reservation models.Reservation
	if err := rc.DB.Preload("User").Preload("Restaurant").
		First(&reservation, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	rel := resolveRelation(userID, role, &reservation)
	if rel != relationSelf && rel != relationAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	// Slot efektif: nilai baru jika dikirim, selain itu nilai lama
	newDate := reservation.Date
	if req.Date != nil {
		newDate = *req.Date
	}
	newTime := reservation.Time
	if req.Time != nil {
		newTime = *req.Time
	}

	capacity := services.ResolveCapacity(reservation.Restaurant)
	booked, err := services.Occupancy(rc.DB, reservation.RestaurantID, newDate, newTime, reservation.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if booked >= int64(capacity) {
		utils.RespondError(c, http.StatusConflict, errors.New("this time slot is fully booked"))
		return
	}

	reservation.Date = newDate
	reservation.Time = newTime
	if req.PartySize != nil && *req.PartySize > 0 {
		reservation.PartySize = *req.PartySize
	}
	reservation.UpdatedAt = time.Now()
	if err := rc.DB.Save(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.Publish(realtime.EventReservationUpdated, reservation, "")
	realtime.Publish(realtime.EventReservationUpdated, reservation,
		realtime.RestaurantChannel(reservation.RestaurantID))

	utils.InfoLogger.Printf("Reservation %d updated by user %d (role=%s)", reservation.ID, userID, role)
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", reservation)
}

// UpdateReservationStatus -> transisi status oleh owner restoran atau admin
func (rc *ReservationController) UpdateReservationStatus(c *gin.Context) {
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	// Nilai status divalidasi sebelum otorisasi: siapa pun yang mengirim
	// status di luar daftar mendapat 400
	if !models.IsValidReservationStatus(req.Status) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation status"))
		return
	}

	var reservation models.Reservation
	if err := rc.DB.Preload("User").Preload("Restaurant").
		First(&reservation, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	rel := resolveRelation(userID, role, &reservation)
	if rel != relationRestaurantOwner && rel != relationAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	reservation.Status = req.Status
	reservation.UpdatedAt = time.Now()
	if err := rc.DB.Save(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Channel global hanya menerima id+status; channel restoran menerima
	// juga record lengkapnya
	realtime.Publish(realtime.EventReservationStatusChanged, gin.H{
		"id":     reservation.ID,
		"status": reservation.Status,
	}, "")
	realtime.Publish(realtime.EventReservationStatusChanged, gin.H{
		"id":          reservation.ID,
		"status":      reservation.Status,
		"reservation": reservation,
	}, realtime.RestaurantChannel(reservation.RestaurantID))

	utils.InfoLogger.Printf("Reservation %d status changed to %s by user %d", reservation.ID, reservation.Status, userID)
	utils.RespondJSON(c, http.StatusOK, "Reservation status updated", reservation)
}
