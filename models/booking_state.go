package models

import (
	"errors"

	"staycal/constants"
)

// BookingState định nghĩa interface cho các trạng thái booking
type BookingState interface {
	Accept(booking *Booking) error
	Reject(booking *Booking) error
	Pay(booking *Booking) error
	Cancel(booking *Booking) error
}

// PendingState trạng thái chờ duyệt
type PendingState struct{}

func (s *PendingState) Accept(booking *Booking) error {
	booking.Status = constants.BookingStatusAccepted
	return nil
}

func (s *PendingState) Reject(booking *Booking) error {
	booking.Status = constants.BookingStatusRejected
	return nil
}

func (s *PendingState) Pay(booking *Booking) error {
	return errors.New("booking not accepted yet")
}

func (s *PendingState) Cancel(booking *Booking) error {
	booking.Status = constants.BookingStatusCancelled
	return nil
}

// AcceptedState trạng thái đã duyệt
type AcceptedState struct{}

func (s *AcceptedState) Accept(booking *Booking) error {
	return errors.New("booking already accepted")
}

func (s *AcceptedState) Reject(booking *Booking) error {
	return errors.New("cannot reject accepted booking")
}

func (s *AcceptedState) Pay(booking *Booking) error {
	booking.Status = constants.BookingStatusPaid
	return nil
}

func (s *AcceptedState) Cancel(booking *Booking) error {
	booking.Status = constants.BookingStatusCancelled
	return nil
}

// PaidState trạng thái đã thanh toán
type PaidState struct{}

func (s *PaidState) Accept(booking *Booking) error {
	return errors.New("booking already paid")
}

func (s *PaidState) Reject(booking *Booking) error {
	return errors.New("cannot reject paid booking")
}

func (s *PaidState) Pay(booking *Booking) error {
	return errors.New("booking already paid")
}

// Cancel hủy booking đã thanh toán: chuyển thẳng sang refunded
func (s *PaidState) Cancel(booking *Booking) error {
	booking.Status = constants.BookingStatusRefunded
	return nil
}

// ClosedState dùng chung cho cancelled / rejected / refunded
type ClosedState struct{}

func (s *ClosedState) Accept(booking *Booking) error {
	return errors.New("booking is closed")
}

func (s *ClosedState) Reject(booking *Booking) error {
	return errors.New("booking is closed")
}

func (s *ClosedState) Pay(booking *Booking) error {
	return errors.New("booking is closed")
}

func (s *ClosedState) Cancel(booking *Booking) error {
	return errors.New("booking is closed")
}

// GetBookingState trả về state tương ứng với trạng thái booking
func GetBookingState(status int) BookingState {
	switch status {
	case constants.BookingStatusPending:
		return &PendingState{}
	case constants.BookingStatusAccepted:
		return &AcceptedState{}
	case constants.BookingStatusPaid:
		return &PaidState{}
	case constants.BookingStatusCancelled, constants.BookingStatusRejected, constants.BookingStatusRefunded:
		return &ClosedState{}
	default:
		return &PendingState{}
	}
}
