package Controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tablewise/reserve-app/controllers"
	"github.com/tablewise/reserve-app/models"
	"github.com/tablewise/reserve-app/services"
	"github.com/tablewise/reserve-app/utils"
)

func setupRestaurantTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	if err := db.AutoMigrate(&models.User{}, &models.Restaurant{}, &models.Reservation{}); err != nil {
		panic(err)
	}

	db.Create(&models.User{Name: "Owner", Email: "owner@example.com", Password: "x", Role: models.RoleOwner})
	db.Create(&models.User{Name: "Other Owner", Email: "other@example.com", Password: "x", Role: models.RoleOwner})
	db.Create(&models.User{Name: "Admin", Email: "admin@example.com", Password: "x", Role: models.RoleAdmin})
	return db
}

func setupRestaurantRouter(db *gorm.DB, userID uint, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	})

	ctrl := controllers.NewRestaurantController(db)
	router.POST("/restaurants", ctrl.CreateRestaurant)
	router.GET("/restaurants", ctrl.GetAllRestaurants)
	router.GET("/restaurants/:id", ctrl.GetRestaurantByID)
	router.PUT("/restaurants/:id", ctrl.UpdateRestaurant)
	router.DELETE("/restaurants/:id", ctrl.DeleteRestaurant)
	router.GET("/restaurants/:id/availability", ctrl.GetAvailability)
	return router
}

func TestCreateRestaurant(t *testing.T) {
	utils.InitLogger()
	db := setupRestaurantTestDB()
	owner := setupRestaurantRouter(db, 1, models.RoleOwner)

	w := doJSON(owner, http.MethodPost, "/restaurants", gin.H{
		"name":            "Sate Senayan",
		"address":         "Jl. Kebon Sirih 31A",
		"cuisine_type":    "indonesian",
		"tables_per_slot": 4,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var restaurant models.Restaurant
	db.First(&restaurant, 1)
	assert.Equal(t, uint(1), restaurant.OwnerID)
	assert.Equal(t, 4, *restaurant.TablesPerSlot)

	// Role user biasa ditolak
	user := setupRestaurantRouter(db, 2, models.RoleUser)
	w = doJSON(user, http.MethodPost, "/restaurants", gin.H{"name": "Gagal"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateRestaurantOwnership(t *testing.T) {
	utils.InitLogger()
	db := setupRestaurantTestDB()
	db.Create(&models.Restaurant{Name: "Sate Senayan", OwnerID: 1})

	// Owner lain tidak boleh
	other := setupRestaurantRouter(db, 2, models.RoleOwner)
	w := doJSON(other, http.MethodPut, "/restaurants/1", gin.H{"name": "Dibajak"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin boleh
	admin := setupRestaurantRouter(db, 3, models.RoleAdmin)
	w = doJSON(admin, http.MethodPut, "/restaurants/1", gin.H{"name": "Sate Senayan Baru"})
	assert.Equal(t, http.StatusOK, w.Code)

	var restaurant models.Restaurant
	db.First(&restaurant, 1)
	assert.Equal(t, "Sate Senayan Baru", restaurant.Name)
}

func TestUpdateRestaurantCapacity(t *testing.T) {
	utils.InitLogger()
	db := setupRestaurantTestDB()
	legacy := 6
	db.Create(&models.Restaurant{Name: "Sate Senayan", OwnerID: 1, Capacity: &legacy})

	owner := setupRestaurantRouter(db, 1, models.RoleOwner)

	// Kapasitas harus positif
	w := doJSON(owner, http.MethodPut, "/restaurants/1", gin.H{"tables_per_slot": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(owner, http.MethodPut, "/restaurants/1", gin.H{"tables_per_slot": 8})
	assert.Equal(t, http.StatusOK, w.Code)

	var restaurant models.Restaurant
	db.First(&restaurant, 1)
	// tables_per_slot baru mengalahkan capacity lama
	assert.Equal(t, 8, services.ResolveCapacity(restaurant))
}

func TestGetAvailability(t *testing.T) {
	utils.InitLogger()
	db := setupRestaurantTestDB()
	two := 2
	db.Create(&models.Restaurant{Name: "Sate Senayan", OwnerID: 1, TablesPerSlot: &two})
	db.Create(&models.Reservation{UserID: 2, RestaurantID: 1, Date: "2025-01-01", Time: "19:00", PartySize: 2, Status: models.ReservationPending})
	db.Create(&models.Reservation{UserID: 3, RestaurantID: 1, Date: "2025-01-01", Time: "19:00", PartySize: 2, Status: models.ReservationCancelled})

	router := setupRestaurantRouter(db, 0, "")

	w := doJSON(router, http.MethodGet, "/restaurants/1/availability?date=2025-01-01&time=19:00", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data services.Availability `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Data.Capacity)
	assert.Equal(t, int64(1), response.Data.Booked)
	assert.Equal(t, int64(1), response.Data.Available)

	// Parameter wajib
	w = doJSON(router, http.MethodGet, "/restaurants/1/availability?date=2025-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Id restoran salah / tidak ada
	w = doJSON(router, http.MethodGet, "/restaurants/abc/availability?date=2025-01-01&time=19:00", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(router, http.MethodGet, "/restaurants/999/availability?date=2025-01-01&time=19:00", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRestaurantsWithFilter(t *testing.T) {
	utils.InitLogger()
	db := setupRestaurantTestDB()
	db.Create(&models.Restaurant{Name: "Sate Senayan", OwnerID: 1, CuisineType: "indonesian"})
	db.Create(&models.Restaurant{Name: "Sushi Maru", OwnerID: 1, CuisineType: "japanese"})

	router := setupRestaurantRouter(db, 0, "")

	w := doJSON(router, http.MethodGet, "/restaurants", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Data []models.Restaurant `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Data, 2)

	w = doJSON(router, http.MethodGet, "/restaurants?cuisine=japanese", nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Data, 1)
	assert.Equal(t, "Sushi Maru", response.Data[0].Name)
}
