package models

import "time"

type Restaurant struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Address     string  `gorm:"type:varchar(255)" json:"address"`
	CuisineType string  `gorm:"type:varchar(100)" json:"cuisine_type"`
	OwnerID     uint    `gorm:"not null;index" json:"owner_id"`
	Owner       User    `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	// TablesPerSlot adalah kapasitas meja per slot (tanggal+jam).
	// Capacity adalah field lama, hanya dipakai sebagai fallback.
	TablesPerSlot *int      `json:"tables_per_slot,omitempty"`
	Capacity      *int      `json:"capacity,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}
