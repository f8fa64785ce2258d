package services

import (
	"fmt"
	"regexp"
	"strings"

	"staycal/constants"
	"staycal/models"

	ics "github.com/arran4/golang-ical"
	"github.com/fiam/gounidecode/unidecode"
)

// BuildExportFeed render ledger của property thành document VCALENDAR.
// Chỉ ngày blocked/booked được export (ngày trống không có ý nghĩa với
// calendar tool bên ngoài). UID sinh từ (propertyId, ngày bắt đầu dải,
// index) nên export lại dữ liệu không đổi cho ra UID y hệt.
func BuildExportFeed(property models.Property, entries []models.AvailabilityEntry) string {
	days := make([]DayStatus, 0, len(entries))
	seen := make(map[string]int)

	for _, entry := range entries {
		if entry.Status != constants.AvailabilityStatusBlocked && entry.Status != constants.AvailabilityStatusBooked {
			continue
		}
		day := models.NormalizeDay(entry.Day)
		key := day.Format(constants.ICalDateLayout)

		// Feed ở mức property: nhiều unit cùng một ngày gộp lại, booked
		// được ưu tiên hơn blocked
		if idx, ok := seen[key]; ok {
			if entry.Status == constants.AvailabilityStatusBooked {
				days[idx].Status = constants.AvailabilityStatusBooked
			}
			continue
		}
		seen[key] = len(days)
		days = append(days, DayStatus{Day: day, Status: entry.Status})
	}

	ranges := CompressEntries(days)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//staycal//availability export//VI")

	for i, r := range ranges {
		uid := fmt.Sprintf("staycal-%d-%s-%d@staycal", property.ID, r.Start.Format(constants.ICalDateLayout), i)
		event := cal.AddEvent(uid)
		event.SetDtStampTime(r.Start)
		event.SetAllDayStartAt(r.Start)
		// DTEND exclusive theo quy ước iCal: ngày kết thúc inclusive + 1
		event.SetAllDayEndAt(r.End.AddDate(0, 0, 1))
		if r.Status == constants.AvailabilityStatusBooked {
			event.SetSummary("Booked")
		} else {
			event.SetSummary("Blocked")
		}
	}

	return cal.Serialize()
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// ExportFileName tạo tên file .ics từ tên property (bỏ dấu, về ascii)
func ExportFileName(name string) string {
	slug := strings.ToLower(unidecode.Unidecode(name))
	slug = strings.Trim(slugPattern.ReplaceAllString(slug, "-"), "-")
	if slug == "" {
		slug = "calendar"
	}
	return slug + ".ics"
}
