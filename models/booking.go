package models

import (
	"time"

	"github.com/lib/pq"
)

type Booking struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	UserID       *uint         `json:"userId"`
	PropertyID   uint          `json:"propertyId" gorm:"index"`
	Property     Property      `json:"property" gorm:"foreignKey:PropertyID"`
	UnitIDs      pq.Int64Array `json:"unitIds" gorm:"type:integer[]"`
	CheckInDate  string        `json:"checkInDate"`
	CheckOutDate string        `json:"checkOutDate"`
	Status       int           `json:"status"`
	GuestName    string        `json:"guestName,omitempty"`
	GuestEmail   string        `json:"guestEmail,omitempty"`
	GuestPhone   string        `json:"guestPhone,omitempty"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}
