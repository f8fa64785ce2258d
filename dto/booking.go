package dto

import "time"

// CreateBookingRequest là DTO cho yêu cầu đặt chỗ
type CreateBookingRequest struct {
	UserID       uint   `json:"userId"`
	PropertyID   uint   `json:"propertyId" binding:"required"`
	UnitIDs      []uint `json:"unitIds"`
	CheckInDate  string `json:"checkInDate" binding:"required"`
	CheckOutDate string `json:"checkOutDate" binding:"required"`
	GuestName    string `json:"guestName,omitempty"`
	GuestEmail   string `json:"guestEmail,omitempty"`
	GuestPhone   string `json:"guestPhone,omitempty"`
}

// BookingStatusRequest là DTO cho yêu cầu đổi trạng thái booking
type BookingStatusRequest struct {
	ID     uint `json:"id" binding:"required"`
	Status int  `json:"status"`
}

// BookingResponse là DTO cho response của booking
type BookingResponse struct {
	ID           uint                `json:"id"`
	Property     BookingPropertyInfo `json:"property"`
	UnitIDs      []uint              `json:"unitIds"`
	CheckInDate  string              `json:"checkInDate"`
	CheckOutDate string              `json:"checkOutDate"`
	Status       int                 `json:"status"`
	Guest        BookingGuestInfo    `json:"guest"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// BookingPropertyInfo thông tin rút gọn của property trong booking
type BookingPropertyInfo struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// BookingGuestInfo thông tin khách trong booking
type BookingGuestInfo struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}
