package dto

import "time"

// CreateCalendarSourceRequest là DTO cho yêu cầu đăng ký source mới
type CreateCalendarSourceRequest struct {
	PropertyID uint   `json:"propertyId" binding:"required"`
	UnitID     *uint  `json:"unitId"`
	Name       string `json:"name" binding:"required"`
	URL        string `json:"url" binding:"required"`
}

// CalendarSourceResponse là DTO cho response của source
type CalendarSourceResponse struct {
	ID            uint       `json:"id"`
	PropertyID    uint       `json:"propertyId"`
	UnitID        *uint      `json:"unitId"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	IsActive      bool       `json:"isActive"`
	LastSyncedAt  *time.Time `json:"lastSyncedAt"`
	LastSyncError string     `json:"lastSyncError,omitempty"`
}

// TriggerSyncRequest là DTO cho yêu cầu sync lại toàn bộ source
type TriggerSyncRequest struct {
	PropertyID uint `json:"propertyId" binding:"required"`
}
