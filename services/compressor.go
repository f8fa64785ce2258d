package services

import (
	"sort"
	"time"
)

// DayStatus là một ngày trong ledger kèm trạng thái của nó
type DayStatus struct {
	Day    time.Time
	Status string
}

// DateRange là một dải ngày liên tiếp cùng trạng thái.
// Start và End đều INCLUSIVE; phía export cộng thêm 1 ngày cho DTEND.
type DateRange struct {
	Start  time.Time
	End    time.Time
	Status string
}

// CompressEntries nén danh sách (ngày, trạng thái) thành các dải ngày liên
// tiếp cùng trạng thái. Input không cần sort trước.
func CompressEntries(entries []DayStatus) []DateRange {
	if len(entries) == 0 {
		return []DateRange{}
	}

	sorted := make([]DayStatus, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Day.Before(sorted[j].Day)
	})

	ranges := make([]DateRange, 0)
	current := DateRange{
		Start:  sorted[0].Day,
		End:    sorted[0].Day,
		Status: sorted[0].Status,
	}

	for _, entry := range sorted[1:] {
		// Kéo dài dải hiện tại nếu ngày kế tiếp liền kề và cùng trạng thái
		if entry.Status == current.Status && entry.Day.Equal(current.End.AddDate(0, 0, 1)) {
			current.End = entry.Day
			continue
		}
		ranges = append(ranges, current)
		current = DateRange{
			Start:  entry.Day,
			End:    entry.Day,
			Status: entry.Status,
		}
	}
	ranges = append(ranges, current)

	return ranges
}
