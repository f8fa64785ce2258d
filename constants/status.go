package constants

// User role
const (
	RoleGuest      = 0
	RoleSuperAdmin = 1
	RoleHost       = 2
)

// Availability status: vắng dòng trong ledger nghĩa là "available"
const (
	AvailabilityStatusAvailable = "available"
	AvailabilityStatusBlocked   = "blocked"
	AvailabilityStatusBooked    = "booked"
)

// Availability source
const (
	AvailabilitySourceHost     = "host"
	AvailabilitySourceICalSync = "ical_sync"
	AvailabilitySourceBooking  = "booking"
)

// Booking status
const (
	BookingStatusPending   = 0
	BookingStatusAccepted  = 1
	BookingStatusPaid      = 2
	BookingStatusCancelled = 3
	BookingStatusRejected  = 4
	BookingStatusRefunded  = 5
)

// Định dạng ngày dùng trong request/response
const (
	DateLayout     = "02/01/2006"
	ICalDateLayout = "20060102"
)
