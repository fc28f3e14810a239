package Controllers_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tablewise/reserve-app/controllers"
	"github.com/tablewise/reserve-app/models"
	"github.com/tablewise/reserve-app/utils"
)

func setupReviewTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	if err := db.AutoMigrate(&models.User{}, &models.Restaurant{}, &models.Review{}); err != nil {
		panic(err)
	}

	db.Create(&models.User{Name: "Owner", Email: "owner@example.com", Password: "x", Role: models.RoleOwner})
	db.Create(&models.User{Name: "Budi", Email: "budi@example.com", Password: "x", Role: models.RoleUser})
	db.Create(&models.User{Name: "Sari", Email: "sari@example.com", Password: "x", Role: models.RoleUser})
	db.Create(&models.User{Name: "Admin", Email: "admin@example.com", Password: "x", Role: models.RoleAdmin})
	db.Create(&models.Restaurant{Name: "Sate Senayan", OwnerID: 1})
	return db
}

func setupReviewRouter(db *gorm.DB, userID uint, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	})

	ctrl := controllers.NewReviewController(db)
	router.POST("/restaurants/:id/reviews", ctrl.CreateReview)
	router.GET("/restaurants/:id/reviews", ctrl.GetRestaurantReviews)
	router.DELETE("/reviews/:id", ctrl.DeleteReview)
	return router
}

func TestCreateReviewUpsert(t *testing.T) {
	utils.InitLogger()
	db := setupReviewTestDB()
	budi := setupReviewRouter(db, 2, models.RoleUser)

	w := doJSON(budi, http.MethodPost, "/restaurants/1/reviews", gin.H{
		"rating":  5,
		"comment": "Satenya juara",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Review kedua dari user yang sama menimpa, bukan menambah
	w = doJSON(budi, http.MethodPost, "/restaurants/1/reviews", gin.H{
		"rating":  3,
		"comment": "Kali ini agak lama",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&models.Review{}).Where("user_id = ? AND restaurant_id = ?", 2, 1).Count(&count)
	assert.Equal(t, int64(1), count)

	var review models.Review
	db.Where("user_id = ? AND restaurant_id = ?", 2, 1).First(&review)
	assert.Equal(t, 3, review.Rating)
	assert.Equal(t, "Kali ini agak lama", review.Comment)
}

func TestCreateReviewValidation(t *testing.T) {
	utils.InitLogger()
	db := setupReviewTestDB()
	budi := setupReviewRouter(db, 2, models.RoleUser)

	w := doJSON(budi, http.MethodPost, "/restaurants/1/reviews", gin.H{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(budi, http.MethodPost, "/restaurants/999/reviews", gin.H{"rating": 4})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRestaurantReviewsAverage(t *testing.T) {
	utils.InitLogger()
	db := setupReviewTestDB()

	budi := setupReviewRouter(db, 2, models.RoleUser)
	sari := setupReviewRouter(db, 3, models.RoleUser)
	doJSON(budi, http.MethodPost, "/restaurants/1/reviews", gin.H{"rating": 5, "comment": "Enak"})
	doJSON(sari, http.MethodPost, "/restaurants/1/reviews", gin.H{"rating": 2, "comment": "Biasa saja"})

	w := doJSON(budi, http.MethodGet, "/restaurants/1/reviews", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			Reviews       []models.Review `json:"reviews"`
			AverageRating float64         `json:"average_rating"`
			Count         int             `json:"count"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Data.Count)
	assert.InDelta(t, 3.5, response.Data.AverageRating, 0.001)
	// Preload User supaya frontend bisa tampilkan nama penulis
	assert.NotEmpty(t, response.Data.Reviews[0].User.Name)
}

func TestDeleteReviewAuthorization(t *testing.T) {
	utils.InitLogger()
	db := setupReviewTestDB()

	budi := setupReviewRouter(db, 2, models.RoleUser)
	doJSON(budi, http.MethodPost, "/restaurants/1/reviews", gin.H{"rating": 4, "comment": "Oke"})

	// User lain tidak boleh hapus
	sari := setupReviewRouter(db, 3, models.RoleUser)
	w := doJSON(sari, http.MethodDelete, "/reviews/1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Penulisnya boleh
	w = doJSON(budi, http.MethodDelete, "/reviews/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Review{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// Admin boleh hapus punya siapa saja
	doJSON(sari, http.MethodPost, "/restaurants/1/reviews", gin.H{"rating": 2, "comment": "Kurang"})
	admin := setupReviewRouter(db, 4, models.RoleAdmin)
	var review models.Review
	db.Order("id DESC").First(&review)
	w = doJSON(admin, http.MethodDelete, "/reviews/"+strconv.Itoa(int(review.ID)), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
