package codec

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar day without a time zone. The zero Date means "unset"; day 0
// is not a legal calendar date so it never collides with a real day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current local calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether d is the unset date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Valid reports whether d names a real calendar day.
func (d Date) Valid() bool {
	if d.IsZero() {
		return false
	}
	return DateOf(d.Noon()) == d
}

// Noon returns 12:00 UTC on d, the instant Toodledo uses for day-only fields.
func (d Date) Noon() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

// String formats d as YYYY-MM-DD, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Clock is a time of day with second precision. The zero Clock means "unset",
// which makes midnight unrepresentable: the API uses 0 for both.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// NewClock returns the Clock for the given hour, minute and second.
func NewClock(hour, minute, second int) Clock {
	return Clock{Hour: hour, Minute: minute, Second: second}
}

// ParseClock parses an HH:MM or HH:MM:SS string.
func ParseClock(s string) (Clock, error) {
	for _, layout := range []string{time.TimeOnly, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return Clock{}, fmt.Errorf("invalid time of day %q", s)
}

// IsZero reports whether c is the unset time of day.
func (c Clock) IsZero() bool {
	return c == Clock{}
}

// Seconds returns the number of seconds since midnight.
func (c Clock) Seconds() int64 {
	return int64(c.Hour)*3600 + int64(c.Minute)*60 + int64(c.Second)
}

// String formats c as HH:MM:SS, or "" when unset.
func (c Clock) String() string {
	if c.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*c = Clock{}
		return nil
	}
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Clock) valid() bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60 && c.Second >= 0 && c.Second < 60
}

type dateCodec struct{}

func (dateCodec) Encode(d Date) (any, error) {
	if d.IsZero() {
		return int64(0), nil
	}
	if !d.Valid() {
		return nil, fmt.Errorf("invalid calendar date %04d-%02d-%02d", d.Year, int(d.Month), d.Day)
	}
	return d.Noon().Unix(), nil
}

func (dateCodec) Decode(raw json.RawMessage) (Date, error) {
	s, err := decodeInt("date", raw, true)
	if err != nil {
		return Date{}, err
	}
	if s == 0 {
		return Date{}, nil
	}
	return DateOf(time.Unix(s, 0).UTC()), nil
}

// DateOnly is the codec for day-only fields (start date, due date, completion date).
var DateOnly Codec[Date] = dateCodec{}

type datetimeCodec struct{}

func (datetimeCodec) Encode(t time.Time) (any, error) {
	if t.IsZero() {
		return int64(0), nil
	}
	return t.Unix(), nil
}

func (datetimeCodec) Decode(raw json.RawMessage) (time.Time, error) {
	s, err := decodeInt("datetime", raw, true)
	if err != nil {
		return time.Time{}, err
	}
	if s == 0 {
		return time.Time{}, nil
	}
	return time.Unix(s, 0).UTC(), nil
}

// Datetime is the codec for timestamp fields. The zero time.Time means unset.
var Datetime Codec[time.Time] = datetimeCodec{}

type timeOfDayCodec struct{}

func (timeOfDayCodec) Encode(c Clock) (any, error) {
	if c.IsZero() {
		return int64(0), nil
	}
	if !c.valid() {
		return nil, fmt.Errorf("invalid time of day %02d:%02d:%02d", c.Hour, c.Minute, c.Second)
	}
	return c.Seconds(), nil
}

func (timeOfDayCodec) Decode(raw json.RawMessage) (Clock, error) {
	s, err := decodeInt("time of day", raw, true)
	if err != nil {
		return Clock{}, err
	}
	if s == 0 {
		return Clock{}, nil
	}
	t := time.Unix(s, 0).UTC()
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

// TimeOfDay is the codec for the start/due time fields.
var TimeOfDay Codec[Clock] = timeOfDayCodec{}
