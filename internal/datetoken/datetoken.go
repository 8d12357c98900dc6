// Package datetoken converts between the backend's textual timestamp
// format "dd/MM/yyyy HH:mm" and structured values. The backend is the
// authority on this shape; nothing here must ever reorder or re-pad it.
package datetoken

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrBadToken = errors.New("malformed date token")

// Token is a parsed "dd/MM/yyyy HH:mm" timestamp.
type Token struct {
	Day, Month, Year int
	Hour, Minute     int
}

// Parse splits a backend token into its numeric parts. Field ranges are
// deliberately not checked: the backend accepts out-of-range values
// (day=32 round-trips untouched) and the client stays as permissive.
func Parse(s string) (Token, error) {
	datePart, timePart, ok := strings.Cut(s, " ")
	if !ok {
		return Token{}, fmt.Errorf("%w: %q", ErrBadToken, s)
	}

	d := strings.Split(datePart, "/")
	t := strings.Split(timePart, ":")
	if len(d) != 3 || len(t) != 2 {
		return Token{}, fmt.Errorf("%w: %q", ErrBadToken, s)
	}

	fields := [5]int{}
	for i, raw := range []string{d[0], d[1], d[2], t[0], t[1]} {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Token{}, fmt.Errorf("%w: %q", ErrBadToken, s)
		}
		fields[i] = n
	}

	return Token{
		Day: fields[0], Month: fields[1], Year: fields[2],
		Hour: fields[3], Minute: fields[4],
	}, nil
}

// Date builds the calendar date for a token. The day/month/year field
// order matches the slash-separated token; month is 1-based on the wire.
// This is the only place the construction order lives — inlining it at
// call sites invites a silent day/month swap for values both <= 12.
func (t Token) Date() time.Time {
	return time.Date(t.Year, time.Month(t.Month), t.Day, 0, 0, 0, 0, time.Local)
}

// Time builds the full timestamp including the clock part.
func (t Token) Time() time.Time {
	return time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, 0, 0, time.Local)
}

// String re-renders the token in backend form, zero-padded.
func (t Token) String() string {
	return fmt.Sprintf("%02d/%02d/%04d %02d:%02d", t.Day, t.Month, t.Year, t.Hour, t.Minute)
}

// Sortable renders the token as "yyyy-MM-ddTHH:mm:ss", the machine-
// sortable form embedded in subscription payloads.
func (t Token) Sortable() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:00", t.Year, t.Month, t.Day, t.Hour, t.Minute)
}

// DaysUntil counts whole days from now until the token's calendar date,
// rounding up. The result goes negative for past dates; statistics and
// the upcoming filter rely on that sign.
func DaysUntil(s string, now time.Time) (int, error) {
	tok, err := Parse(s)
	if err != nil {
		return 0, err
	}
	diff := tok.Date().Sub(now)
	return int(math.Ceil(diff.Hours() / 24)), nil
}

// DaysLeft is the display variant of DaysUntil: past dates clamp to 0.
// Kept separate on purpose; the two call sites disagree and unifying
// them would change observable behavior.
func DaysLeft(s string, now time.Time) (int, error) {
	d, err := DaysUntil(s, now)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

// FromInput reformats a browser datetime-local value
// ("yyyy-MM-ddTHH:mm") into a backend token. Pure reshaping.
func FromInput(s string) (string, error) {
	datePart, timePart, ok := strings.Cut(s, "T")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrBadToken, s)
	}
	d := strings.Split(datePart, "-")
	if len(d) != 3 {
		return "", fmt.Errorf("%w: %q", ErrBadToken, s)
	}
	year, err1 := strconv.Atoi(d[0])
	month, err2 := strconv.Atoi(d[1])
	day, err3 := strconv.Atoi(d[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", fmt.Errorf("%w: %q", ErrBadToken, s)
	}
	return fmt.Sprintf("%02d/%02d/%04d %s", day, month, year, timePart), nil
}

// Format renders a time.Time as a backend token.
func Format(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}
