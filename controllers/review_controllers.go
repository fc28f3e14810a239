package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tablewise/reserve-app/models"
	"github.com/tablewise/reserve-app/utils"
)

type ReviewController struct {
	DB *gorm.DB
}

func NewReviewController(db *gorm.DB) *ReviewController {
	return &ReviewController{DB: db}
}

// CreateReview -> satu review per user per restoran; review kedua menimpa yang lama
func (rc *ReviewController) CreateReview(c *gin.Context) {
	userID := c.GetUint("user_id")

	restaurantID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid restaurant id"))
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("rating must be between 1 and 5"))
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, restaurantID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	var review models.Review
	err = rc.DB.Where("user_id = ? AND restaurant_id = ?", userID, restaurant.ID).
		First(&review).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	review.UserID = userID
	review.RestaurantID = restaurant.ID
	review.Rating = req.Rating
	review.Comment = req.Comment
	review.UpdatedAt = time.Now()
	if review.ID == 0 {
		review.CreatedAt = time.Now()
	}

	if err := rc.DB.Save(&review).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Review %d saved for restaurant %d by user %d", review.ID, restaurant.ID, userID)
	utils.RespondJSON(c, http.StatusCreated, "Review saved", review)
}

// GetRestaurantReviews -> semua review satu restoran plus rata-rata rating
func (rc *ReviewController) GetRestaurantReviews(c *gin.Context) {
	restaurantID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid restaurant id"))
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, restaurantID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	var reviews []models.Review
	if err := rc.DB.Preload("User").
		Where("restaurant_id = ?", restaurant.ID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var avg float64
	if len(reviews) > 0 {
		row := rc.DB.Model(&models.Review{}).
			Where("restaurant_id = ?", restaurant.ID).
			Select("AVG(rating)").Row()
		if err := row.Scan(&avg); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant reviews", gin.H{
		"reviews":        reviews,
		"average_rating": avg,
		"count":          len(reviews),
	})
}

// DeleteReview -> hanya penulis review atau admin
func (rc *ReviewController) DeleteReview(c *gin.Context) {
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid review id"))
		return
	}

	var review models.Review
	if err := rc.DB.First(&review, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("review not found"))
		return
	}

	if role != models.RoleAdmin && review.UserID != userID {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	if err := rc.DB.Delete(&review).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Review deleted", gin.H{"id": review.ID})
}
