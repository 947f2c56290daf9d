package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDay reports a day label outside Monday..Friday.
var ErrInvalidDay = errors.New("invalid day")

// Day is a working weekday bucket.
type Day int

// Working days in bucket order.
const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

// Days is the fixed, ordered set of day buckets.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

var dayLabels = map[Day]string{
	Monday:    "Lunes",
	Tuesday:   "Martes",
	Wednesday: "Miércoles",
	Thursday:  "Jueves",
	Friday:    "Viernes",
}

var dayAliases = map[string]Day{
	"lunes":     Monday,
	"monday":    Monday,
	"martes":    Tuesday,
	"tuesday":   Tuesday,
	"miércoles": Wednesday,
	"miercoles": Wednesday,
	"wednesday": Wednesday,
	"jueves":    Thursday,
	"thursday":  Thursday,
	"viernes":   Friday,
	"friday":    Friday,
}

// String returns the persisted label of the day.
func (d Day) String() string {
	if label, ok := dayLabels[d]; ok {
		return label
	}
	return fmt.Sprintf("Day(%d)", int(d))
}

// Valid reports whether d is one of the five buckets.
func (d Day) Valid() bool {
	_, ok := dayLabels[d]
	return ok
}

// ParseDay accepts the persisted label, an English weekday name or a 1-5 index.
func ParseDay(s string) (Day, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if d, ok := dayAliases[key]; ok {
		return d, nil
	}
	if n, err := strconv.Atoi(key); err == nil && Day(n).Valid() {
		return Day(n), nil
	}
	return 0, fmt.Errorf("%w: %q (expected one of Lunes..Viernes)", ErrInvalidDay, s)
}

// Today maps a calendar date to its day bucket. Weekends have no bucket.
func Today(now time.Time) (Day, error) {
	switch now.Weekday() {
	case time.Monday:
		return Monday, nil
	case time.Tuesday:
		return Tuesday, nil
	case time.Wednesday:
		return Wednesday, nil
	case time.Thursday:
		return Thursday, nil
	case time.Friday:
		return Friday, nil
	default:
		return 0, fmt.Errorf("%w: %s is not a working day", ErrInvalidDay, now.Weekday())
	}
}

// MarshalText encodes the day as its label so it can key JSON objects.
func (d Day) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDay, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a day label.
func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
