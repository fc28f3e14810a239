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

type RestaurantController struct {
	DB *gorm.DB
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{DB: db}
}

// CreateRestaurant -> owner/admin menambahkan restoran baru
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	if role != models.RoleOwner && role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		Name          string `json:"name" binding:"required"`
		Description   string `json:"description"`
		Address       string `json:"address"`
		CuisineType   string `json:"cuisine_type"`
		TablesPerSlot *int   `json:"tables_per_slot"`
		OwnerID       *uint  `json:"owner_id"` // hanya dipakai admin
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ownerID := userID
	if role == models.RoleAdmin && req.OwnerID != nil {
		ownerID = *req.OwnerID
	}

	restaurant := models.Restaurant{
		Name:          req.Name,
		Description:   req.Description,
		Address:       req.Address,
		CuisineType:   req.CuisineType,
		OwnerID:       ownerID,
		TablesPerSlot: req.TablesPerSlot,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := rc.DB.Create(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant %d (%s) created by user %d", restaurant.ID, restaurant.Name, userID)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", restaurant)
}

// GetAllRestaurants -> daftar restoran, bisa difilter ?cuisine= dan ?q=
func (rc *RestaurantController) GetAllRestaurants(c *gin.Context) {
	query := rc.DB.Model(&models.Restaurant{})
	if cuisine := c.Query("cuisine"); cuisine != "" {
		query = query.Where("cuisine_type = ?", cuisine)
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("name LIKE ?", "%"+q+"%")
	}

	var restaurants []models.Restaurant
	if err := query.Find(&restaurants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

// GetRestaurantByID -> detail satu restoran
func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid restaurant id"))
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// UpdateRestaurant -> hanya owner restoran itu sendiri atau admin.
// Perubahan tables_per_slot disiarkan sebagai restaurantCapacityChanged.
func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid restaurant id"))
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	if role != models.RoleAdmin && restaurant.OwnerID != userID {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		Name          *string `json:"name"`
		Description   *string `json:"description"`
		Address       *string `json:"address"`
		CuisineType   *string `json:"cuisine_type"`
		TablesPerSlot *int    `json:"tables_per_slot"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		restaurant.Name = *req.Name
	}
	if req.Description != nil {
		restaurant.Description = *req.Description
	}
	if req.Address != nil {
		restaurant.Address = *req.Address
	}
	if req.CuisineType != nil {
		restaurant.CuisineType = *req.CuisineType
	}

	capacityChanged := false
	if req.TablesPerSlot != nil {
		if *req.TablesPerSlot <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("tables_per_slot must be positive"))
			return
		}
		restaurant.TablesPerSlot = req.TablesPerSlot
		capacityChanged = true
	}

	restaurant.UpdatedAt = time.Now()
	if err := rc.DB.Save(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if capacityChanged {
		payload := gin.H{
			"restaurant_id": restaurant.ID,
			"capacity":      services.ResolveCapacity(restaurant),
		}
		realtime.Publish(realtime.EventRestaurantCapacityChange, payload, "")
		realtime.Publish(realtime.EventRestaurantCapacityChange, payload,
			realtime.RestaurantChannel(restaurant.ID))
		utils.InfoLogger.Printf("Restaurant %d capacity changed to %d",
			restaurant.ID, services.ResolveCapacity(restaurant))
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", restaurant)
}

// DeleteRestaurant -> hanya owner restoran itu sendiri atau admin
func (rc *RestaurantController) DeleteRestaurant(c *gin.Context) {
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid restaurant id"))
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	if role != models.RoleAdmin && restaurant.OwnerID != userID {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	if err := rc.DB.Delete(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant %d deleted by user %d", restaurant.ID, userID)
	utils.RespondJSON(c, http.StatusOK, "Restaurant deleted", gin.H{"id": restaurant.ID})
}

// GetAvailability -> {capacity, booked, available} untuk satu slot (public)
func (rc *RestaurantController) GetAvailability(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid restaurant id"))
		return
	}

	date := c.Query("date")
	timeSlot := c.Query("time")
	if date == "" || timeSlot == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date and time are required"))
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	availability, err := services.SlotAvailability(rc.DB, restaurant, date, timeSlot)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Slot availability", availability)
}
