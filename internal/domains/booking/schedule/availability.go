package schedule

import (
	"fmt"
	"time"
)

const dateKeyLayout = "2006-01-02"

// Reservation is one concrete interval already held on a room.
type Reservation struct {
	BookingID string
	Date      time.Time
	Window    Window
}

// Conflict describes the first existing reservation a candidate collides with.
type Conflict struct {
	Date     time.Time
	Existing Window
	// BookingID identifies the reservation that is already in place.
	BookingID string
}

func (c *Conflict) String() string {
	return fmt.Sprintf("room is already booked on %s from %s to %s",
		c.Date.Format(dateKeyLayout), c.Existing.Start, c.Existing.End)
}

// CheckAvailability compares every candidate date against the reservations held on
// that same date and returns the first overlap. A nil conflict means the window is
// free on all dates. A malformed window is reported as ErrInvalidWindow and is never
// evaluated against reservations.
func CheckAvailability(existing []Reservation, dates []time.Time, window Window) (*Conflict, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	byDate := make(map[string][]Reservation, len(existing))
	for _, reservation := range existing {
		key := reservation.Date.Format(dateKeyLayout)
		byDate[key] = append(byDate[key], reservation)
	}

	for _, date := range dates {
		for _, reservation := range byDate[date.Format(dateKeyLayout)] {
			if window.Overlaps(reservation.Window) {
				return &Conflict{
					Date:      reservation.Date,
					Existing:  reservation.Window,
					BookingID: reservation.BookingID,
				}, nil
			}
		}
	}

	return nil, nil
}

// IsAvailable is CheckAvailability reduced to a yes/no answer plus the conflict, if any.
func IsAvailable(existing []Reservation, dates []time.Time, window Window) (bool, *Conflict, error) {
	conflict, err := CheckAvailability(existing, dates, window)
	if err != nil {
		return false, nil, err
	}

	return conflict == nil, conflict, nil
}
