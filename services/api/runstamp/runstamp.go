// Package runstamp turns the engine's run-timestamp strings into a display
// label and a relative age.
//
// Two shapes are seen in practice: a bare "2025-12-02 06z" and a compound
// "Run: 2025-12-01 00z | Valid: 2025-12-02 06z". For the compound form the
// age is computed from the Valid segment.
package runstamp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const validMarker = "Valid:"

// ErrTimestampParse is matched by every ParseError.
var ErrTimestampParse = errors.New("timestamp parse error")

// ParseError reports a run timestamp that could not be turned into an instant.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse run timestamp %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrTimestampParse
}

// Info is what the control panel shows for a run.
type Info struct {
	Label string `json:"label"`
	Age   string `json:"age"`
}

// Lines splits a compound label on "|" so it can be shown on several rows.
func (i Info) Lines() []string {
	parts := strings.Split(i.Label, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Parse extracts the date-bearing part of raw and parses it as a UTC instant.
func Parse(raw string) (time.Time, error) {
	s := raw
	if idx := strings.Index(s, validMarker); idx >= 0 {
		s = s[idx+len(validMarker):]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "z"), "Z")
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &ParseError{Input: raw, Reason: "empty"}
	}

	iso, err := toISO(s)
	if err != nil {
		return time.Time{}, &ParseError{Input: raw, Reason: err.Error()}
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return time.Time{}, &ParseError{Input: raw, Reason: err.Error()}
	}
	return t.UTC(), nil
}

// toISO pads "YYYY-MM-DD[ T]hh[:mm[:ss]]" to "YYYY-MM-DDThh:mm:ssZ".
func toISO(s string) (string, error) {
	datePart, timePart := s, ""
	if i := strings.IndexAny(s, " T"); i >= 0 {
		datePart = s[:i]
		timePart = strings.TrimSpace(s[i+1:])
	}

	date := strings.Split(datePart, "-")
	if len(date) != 3 || len(date[0]) != 4 || len(date[1]) != 2 || len(date[2]) != 2 {
		return "", fmt.Errorf("malformed date %q", datePart)
	}
	for _, d := range date {
		if !isDigits(d) {
			return "", fmt.Errorf("non-numeric date component %q", d)
		}
	}

	clock := []string{"00", "00", "00"}
	if timePart != "" {
		comps := strings.Split(timePart, ":")
		if len(comps) > 3 {
			return "", fmt.Errorf("too many time components in %q", timePart)
		}
		for i, c := range comps {
			if len(c) == 0 || len(c) > 2 || !isDigits(c) {
				return "", fmt.Errorf("non-numeric time component %q", c)
			}
			if len(c) == 1 {
				c = "0" + c
			}
			clock[i] = c
		}
	}

	return datePart + "T" + strings.Join(clock, ":") + "Z", nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 32)
	return err == nil
}

// Age formats the distance between t and now, e.g. "3h 12m ago" or "12m future".
func Age(t, now time.Time) string {
	diff := now.Sub(t)
	suffix := "future"
	if diff > 0 {
		suffix = "ago"
	}
	if diff < 0 {
		diff = -diff
	}
	hours := int64(diff / time.Hour)
	mins := int64((diff % time.Hour) / time.Minute)
	if hours == 0 {
		return fmt.Sprintf("%dm %s", mins, suffix)
	}
	return fmt.Sprintf("%dh %dm %s", hours, mins, suffix)
}

// Normalize builds the Info for raw relative to now. The label keeps the
// original input.
func Normalize(raw string, now time.Time) (Info, error) {
	t, err := Parse(raw)
	if err != nil {
		return Info{}, err
	}
	return Info{Label: raw, Age: Age(t, now)}, nil
}

// Describe is Normalize with the display fallback applied: an unparseable
// input is shown verbatim with age "-".
func Describe(raw string, now time.Time) Info {
	info, err := Normalize(raw, now)
	if err != nil {
		return Info{Label: raw, Age: "-"}
	}
	return info
}
