package services

import (
	"regexp"
	"strings"
	"time"

	"staycal/constants"
)

// ParsedEvent là một VEVENT đã parse. Khoảng ngày là [Start, End) theo
// quy ước iCal: End là ngày đầu tiên KHÔNG thuộc event.
type ParsedEvent struct {
	Start   time.Time
	End     time.Time
	Summary string
}

// Regex chấp nhận tham số property tùy ý (vd DTSTART;VALUE=DATE:20250110)
// và giá trị datetime (20250110T140000Z): chỉ lấy 8 chữ số ngày đầu tiên.
var (
	dtStartRegex = regexp.MustCompile(`(?m)^DTSTART[^:]*:[^\d]*(\d{8})`)
	dtEndRegex   = regexp.MustCompile(`(?m)^DTEND[^:]*:[^\d]*(\d{8})`)
	summaryRegex = regexp.MustCompile(`(?m)^SUMMARY[^:]*:(.*)$`)
)

// ParseCalendar parse nội dung iCal thành danh sách event. Không bao giờ
// trả lỗi: block hỏng bị bỏ qua, input rác cho ra danh sách rỗng.
// Danh sách rỗng nghĩa là "không có ngày bị chặn", không phải lỗi.
func ParseCalendar(content string) []ParsedEvent {
	events := make([]ParsedEvent, 0)

	blocks := strings.Split(content, "BEGIN:VEVENT")
	for _, block := range blocks[1:] {
		if idx := strings.Index(block, "END:VEVENT"); idx >= 0 {
			block = block[:idx]
		}

		startMatch := dtStartRegex.FindStringSubmatch(block)
		endMatch := dtEndRegex.FindStringSubmatch(block)
		if startMatch == nil || endMatch == nil {
			// Block thiếu DTSTART hoặc DTEND: bỏ qua
			continue
		}

		start, err := time.ParseInLocation(constants.ICalDateLayout, startMatch[1], time.UTC)
		if err != nil {
			continue
		}
		end, err := time.ParseInLocation(constants.ICalDateLayout, endMatch[1], time.UTC)
		if err != nil {
			continue
		}

		var summary string
		if m := summaryRegex.FindStringSubmatch(block); m != nil {
			summary = strings.TrimSpace(strings.TrimSuffix(m[1], "\r"))
		}

		events = append(events, ParsedEvent{
			Start:   start,
			End:     end,
			Summary: summary,
		})
	}

	return events
}
