package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tablewise/reserve-app/models"
)

func setupCapacityTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Restaurant{}, &models.Reservation{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func intPtr(v int) *int { return &v }

func TestResolveCapacity(t *testing.T) {
	tests := []struct {
		name       string
		restaurant models.Restaurant
		want       int
	}{
		{"tables per slot set", models.Restaurant{TablesPerSlot: intPtr(4)}, 4},
		{"legacy capacity fallback", models.Restaurant{Capacity: intPtr(7)}, 7},
		{"tables per slot wins over legacy", models.Restaurant{TablesPerSlot: intPtr(4), Capacity: intPtr(7)}, 4},
		{"default when nothing set", models.Restaurant{}, 10},
		{"non-positive tables per slot falls through", models.Restaurant{TablesPerSlot: intPtr(0), Capacity: intPtr(3)}, 3},
		{"non-positive everywhere falls to default", models.Restaurant{TablesPerSlot: intPtr(0), Capacity: intPtr(-1)}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveCapacity(tt.restaurant))
		})
	}
}

func TestOccupancyIgnoresCancelled(t *testing.T) {
	db := setupCapacityTestDB(t)

	restaurant := models.Restaurant{Name: "Warung Tes", OwnerID: 1}
	db.Create(&restaurant)

	db.Create(&models.Reservation{UserID: 1, RestaurantID: restaurant.ID, Date: "2025-01-01", Time: "19:00", PartySize: 2, Status: models.ReservationPending})
	db.Create(&models.Reservation{UserID: 2, RestaurantID: restaurant.ID, Date: "2025-01-01", Time: "19:00", PartySize: 2, Status: models.ReservationConfirmed})
	db.Create(&models.Reservation{UserID: 3, RestaurantID: restaurant.ID, Date: "2025-01-01", Time: "19:00", PartySize: 2, Status: models.ReservationCancelled})
	// Slot lain tidak boleh ikut terhitung
	db.Create(&models.Reservation{UserID: 4, RestaurantID: restaurant.ID, Date: "2025-01-01", Time: "20:00", PartySize: 2, Status: models.ReservationPending})

	booked, err := Occupancy(db, restaurant.ID, "2025-01-01", "19:00", 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), booked)
}

func TestOccupancyExcludesGivenReservation(t *testing.T) {
	db := setupCapacityTestDB(t)

	restaurant := models.Restaurant{Name: "Warung Tes", OwnerID: 1}
	db.Create(&restaurant)

	own := models.Reservation{UserID: 1, RestaurantID: restaurant.ID, Date: "2025-01-01", Time: "19:00", PartySize: 2, Status: models.ReservationPending}
	db.Create(&own)
	db.Create(&models.Reservation{UserID: 2, RestaurantID: restaurant.ID, Date: "2025-01-01", Time: "19:00", PartySize: 2, Status: models.ReservationPending})

	booked, err := Occupancy(db, restaurant.ID, "2025-01-01", "19:00", own.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), booked)
}

func TestSlotAvailability(t *testing.T) {
	db := setupCapacityTestDB(t)

	restaurant := models.Restaurant{Name: "Warung Tes", OwnerID: 1, TablesPerSlot: intPtr(2)}
	db.Create(&restaurant)

	avail, err := SlotAvailability(db, restaurant, "2025-01-01", "19:00")
	assert.NoError(t, err)
	assert.Equal(t, 2, avail.Capacity)
	assert.Equal(t, int64(0), avail.Booked)
	assert.Equal(t, int64(2), avail.Available)

	db.Create(&models.Reservation{UserID: 1, RestaurantID: restaurant.ID, Date: "2025-01-01", Time: "19:00", PartySize: 2, Status: models.ReservationPending})
	db.Create(&models.Reservation{UserID: 2, RestaurantID: restaurant.ID, Date: "2025-01-01", Time: "19:00", PartySize: 2, Status: models.ReservationPending})
	// Overrun: available tidak boleh negatif
	db.Create(&models.Reservation{UserID: 3, RestaurantID: restaurant.ID, Date: "2025-01-01", Time: "19:00", PartySize: 2, Status: models.ReservationPending})

	avail, err = SlotAvailability(db, restaurant, "2025-01-01", "19:00")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), avail.Booked)
	assert.Equal(t, int64(0), avail.Available)
}
