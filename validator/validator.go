package validator

import (
	"net/url"
	"time"

	"staycal/constants"
	"staycal/dto"
	"staycal/errors"
	"staycal/models"
)

// ValidateCalendarSource validate thông tin source đăng ký
func ValidateCalendarSource(source *models.ExternalCalendarSource) error {
	if source.Name == "" {
		return errors.NewAppError(errors.ErrCodeRequiredField, "Tên source không được để trống", nil)
	}

	if source.URL == "" {
		return errors.NewAppError(errors.ErrCodeRequiredField, "URL không được để trống", nil)
	}

	parsed, err := url.Parse(source.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return errors.NewAppError(errors.ErrCodeInvalidFormat, "URL không hợp lệ", err)
	}

	return nil
}

// ValidateHostBlockEntry validate một entry chặn/mở của host
func ValidateHostBlockEntry(entry *dto.HostBlockEntry) error {
	if entry.Day == "" {
		return errors.NewAppError(errors.ErrCodeRequiredField, "Ngày không được để trống", nil)
	}

	if _, err := time.Parse(constants.DateLayout, entry.Day); err != nil {
		return errors.NewAppError(errors.ErrCodeInvalidFormat, "Ngày không hợp lệ, vui lòng sử dụng định dạng dd/mm/yyyy", err)
	}

	switch entry.Status {
	case constants.AvailabilityStatusAvailable, constants.AvailabilityStatusBlocked:
		return nil
	}
	return errors.NewAppError(errors.ErrCodeValidation, "Status phải là available hoặc blocked", nil)
}

// ValidateBookingDates validate và parse cặp ngày nhận/trả phòng
func ValidateBookingDates(checkInDate, checkOutDate string) (time.Time, time.Time, error) {
	checkIn, err := time.Parse(constants.DateLayout, checkInDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrCodeInvalidFormat, "Ngày nhận phòng không hợp lệ", err)
	}

	checkOut, err := time.Parse(constants.DateLayout, checkOutDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrCodeInvalidFormat, "Ngày trả phòng không hợp lệ", err)
	}

	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrCodeValidation, "Ngày trả phòng phải sau ngày nhận phòng", nil)
	}

	return checkIn, checkOut, nil
}
