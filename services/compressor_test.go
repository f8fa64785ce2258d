package services

import (
	"testing"
	"time"

	"staycal/constants"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCompressEntriesEmpty(t *testing.T) {
	assert.Empty(t, CompressEntries(nil))
	assert.Empty(t, CompressEntries([]DayStatus{}))
}

func TestCompressEntriesSingleDay(t *testing.T) {
	ranges := CompressEntries([]DayStatus{
		{Day: day(2025, 3, 10), Status: constants.AvailabilityStatusBlocked},
	})

	assert.Len(t, ranges, 1)
	assert.Equal(t, day(2025, 3, 10), ranges[0].Start)
	assert.Equal(t, day(2025, 3, 10), ranges[0].End)
}

func TestCompressEntriesMergesConsecutiveDays(t *testing.T) {
	ranges := CompressEntries([]DayStatus{
		{Day: day(2025, 3, 10), Status: constants.AvailabilityStatusBlocked},
		{Day: day(2025, 3, 11), Status: constants.AvailabilityStatusBlocked},
		{Day: day(2025, 3, 12), Status: constants.AvailabilityStatusBlocked},
	})

	assert.Len(t, ranges, 1)
	assert.Equal(t, day(2025, 3, 10), ranges[0].Start)
	assert.Equal(t, day(2025, 3, 12), ranges[0].End)
	assert.Equal(t, constants.AvailabilityStatusBlocked, ranges[0].Status)
}

func TestCompressEntriesBreaksOnGap(t *testing.T) {
	ranges := CompressEntries([]DayStatus{
		{Day: day(2025, 3, 10), Status: constants.AvailabilityStatusBlocked},
		{Day: day(2025, 3, 12), Status: constants.AvailabilityStatusBlocked},
	})

	assert.Len(t, ranges, 2)
	assert.Equal(t, day(2025, 3, 10), ranges[0].End)
	assert.Equal(t, day(2025, 3, 12), ranges[1].Start)
}

func TestCompressEntriesBreaksOnStatusChange(t *testing.T) {
	ranges := CompressEntries([]DayStatus{
		{Day: day(2025, 3, 10), Status: constants.AvailabilityStatusBlocked},
		{Day: day(2025, 3, 11), Status: constants.AvailabilityStatusBooked},
		{Day: day(2025, 3, 12), Status: constants.AvailabilityStatusBooked},
	})

	assert.Len(t, ranges, 2)
	assert.Equal(t, constants.AvailabilityStatusBlocked, ranges[0].Status)
	assert.Equal(t, constants.AvailabilityStatusBooked, ranges[1].Status)
	assert.Equal(t, day(2025, 3, 11), ranges[1].Start)
	assert.Equal(t, day(2025, 3, 12), ranges[1].End)
}

func TestCompressEntriesUnsortedInput(t *testing.T) {
	ranges := CompressEntries([]DayStatus{
		{Day: day(2025, 3, 12), Status: constants.AvailabilityStatusBlocked},
		{Day: day(2025, 3, 10), Status: constants.AvailabilityStatusBlocked},
		{Day: day(2025, 3, 11), Status: constants.AvailabilityStatusBlocked},
	})

	assert.Len(t, ranges, 1)
	assert.Equal(t, day(2025, 3, 10), ranges[0].Start)
	assert.Equal(t, day(2025, 3, 12), ranges[0].End)
}
