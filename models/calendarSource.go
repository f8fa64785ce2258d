package models

import (
	"strconv"
	"time"
)

// ExternalCalendarSource là một feed iCal bên ngoài mà host đã đăng ký
// cho property. Các dòng ledger do source này tạo mang SourceRef tương ứng.
type ExternalCalendarSource struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	PropertyID    uint       `json:"propertyId" gorm:"index"`
	UnitID        *uint      `json:"unitId"` // nil: feed áp dụng cho cả property
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	IsActive      bool       `json:"isActive" gorm:"default:true"`
	LastSyncedAt  *time.Time `json:"lastSyncedAt"`
	LastSyncError string     `json:"lastSyncError"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// SourceRef trả về định danh dùng cho cột source_ref của ledger
func (s *ExternalCalendarSource) SourceRef() string {
	return strconv.FormatUint(uint64(s.ID), 10)
}
