package services

import (
	"gorm.io/gorm"

	"github.com/tablewise/reserve-app/models"
)

// DefaultTablesPerSlot dipakai jika restoran tidak punya konfigurasi kapasitas
const DefaultTablesPerSlot = 10

// Availability menggambarkan keterisian satu slot (restoran, tanggal, jam)
type Availability struct {
	Capacity  int   `json:"capacity"`
	Booked    int64 `json:"booked"`
	Available int64 `json:"available"`
}

// ResolveCapacity -> tables_per_slot jika ada, fallback ke capacity lama, terakhir default.
// Urutan fallback ini harus dipertahankan untuk data lama.
func ResolveCapacity(r models.Restaurant) int {
	if r.TablesPerSlot != nil && *r.TablesPerSlot > 0 {
		return *r.TablesPerSlot
	}
	if r.Capacity != nil && *r.Capacity > 0 {
		return *r.Capacity
	}
	return DefaultTablesPerSlot
}

// Occupancy menghitung reservasi non-cancelled pada slot (restoran, tanggal, jam).
// excludeID > 0 mengecualikan satu reservasi, dipakai saat memindah slot reservasi
// agar record lamanya sendiri tidak ikut terhitung.
func Occupancy(db *gorm.DB, restaurantID uint, date, timeSlot string, excludeID uint) (int64, error) {
	query := db.Model(&models.Reservation{}).
		Where("restaurant_id = ? AND date = ? AND time = ? AND status <> ?",
			restaurantID, date, timeSlot, models.ReservationCancelled)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var booked int64
	if err := query.Count(&booked).Error; err != nil {
		return 0, err
	}
	return booked, nil
}

// SlotAvailability -> {capacity, booked, available} untuk satu slot
func SlotAvailability(db *gorm.DB, restaurant models.Restaurant, date, timeSlot string) (Availability, error) {
	capacity := ResolveCapacity(restaurant)

	booked, err := Occupancy(db, restaurant.ID, date, timeSlot, 0)
	if err != nil {
		return Availability{}, err
	}

	available := int64(capacity) - booked
	if available < 0 {
		available = 0
	}

	return Availability{
		Capacity:  capacity,
		Booked:    booked,
		Available: available,
	}, nil
}
