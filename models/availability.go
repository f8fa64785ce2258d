package models

import (
	"fmt"
	"time"

	"staycal/constants"
)

// AvailabilityEntry là một dòng trong ledger: một ngày của một unit (hoặc
// cả property khi UnitID là nil). Ngày "available" không có dòng nào.
type AvailabilityEntry struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	PropertyID uint      `json:"propertyId" gorm:"index"`
	UnitID     *uint     `json:"unitId" gorm:"index"` // nil: áp dụng cho cả property
	Day        time.Time `json:"day" gorm:"index"`    // ngày UTC, không có giờ
	Status     string    `json:"status"`              // blocked | booked
	Source     string    `json:"source"`              // host | ical_sync | booking
	SourceRef  string    `json:"sourceRef" gorm:"index"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (e *AvailabilityEntry) ValidateStatus() error {
	switch e.Status {
	case constants.AvailabilityStatusBlocked, constants.AvailabilityStatusBooked:
		return nil
	}
	return fmt.Errorf("invalid status: %s", e.Status)
}

func (e *AvailabilityEntry) ValidateSource() error {
	switch e.Source {
	case constants.AvailabilitySourceHost, constants.AvailabilitySourceICalSync, constants.AvailabilitySourceBooking:
		return nil
	}
	return fmt.Errorf("invalid source: %s", e.Source)
}

// NormalizeDay chuẩn hóa một thời điểm về 00:00 UTC của ngày đó
func NormalizeDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
