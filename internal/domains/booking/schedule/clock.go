package schedule

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	clockLayout   = "15:04"
	minutesPerDay = 24 * 60
)

var (
	ErrInvalidClock  = errors.New("time must be in HH:MM 24-hour format")
	ErrInvalidWindow = errors.New("start time must be before end time")
)

// Clock is a time of day expressed in minutes after midnight.
type Clock int

// ParseClock converts an HH:MM string into minutes after midnight.
func ParseClock(value string) (Clock, error) {
	parsed, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	return ClockOf(parsed), nil
}

// ClockOf returns the time-of-day portion of t.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Scan reads a TIME column. Seconds are dropped.
func (c *Clock) Scan(src any) error {
	switch value := src.(type) {
	case time.Time:
		*c = ClockOf(value)

		return nil
	case []byte:
		return c.scanText(string(value))
	case string:
		return c.scanText(value)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidClock, src)
	}
}

func (c *Clock) scanText(value string) error {
	if len(value) > len(clockLayout) && strings.Count(value, ":") >= 2 {
		value = value[:len(clockLayout)]
	}

	parsed, err := ParseClock(value)
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

func (c Clock) Value() (driver.Value, error) {
	return c.String(), nil
}

// Window is the half-open interval [Start, End) of a booking within a day.
type Window struct {
	Start Clock
	End   Clock
}

// NewWindow parses both ends of a window and checks that it is well formed.
func NewWindow(start, end string) (Window, error) {
	startClock, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}

	endClock, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}

	window := Window{Start: startClock, End: endClock}

	return window, window.Validate()
}

func (w Window) Validate() error {
	if w.Start < 0 || w.End > minutesPerDay {
		return ErrInvalidClock
	}

	if w.Start >= w.End {
		return ErrInvalidWindow
	}

	return nil
}

// Overlaps reports whether two half-open windows intersect. Touching windows do not.
func (w Window) Overlaps(other Window) bool {
	return w.Start < other.End && other.Start < w.End
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
