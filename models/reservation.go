package models

import "time"

// Status reservasi
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCompleted = "completed"
	ReservationCancelled = "cancelled"
)

type Reservation struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RestaurantID uint       `gorm:"not null;index" json:"restaurant_id"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	// Date dan Time disimpan sebagai string apa adanya; kecocokan slot
	// dicek dengan perbandingan string persis, tanpa normalisasi format.
	Date      string    `gorm:"type:varchar(20);not null;index" json:"date"`
	Time      string    `gorm:"type:varchar(20);not null;index" json:"time"`
	PartySize int       `gorm:"not null" json:"party_size"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// IsValidReservationStatus -> cek nilai status yang diizinkan
func IsValidReservationStatus(status string) bool {
	switch status {
	case ReservationPending, ReservationConfirmed, ReservationCompleted, ReservationCancelled:
		return true
	}
	return false
}
