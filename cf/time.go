package cf

import (
	"fmt"
	"strings"
	"time"
)

var timeUnits = map[string]time.Duration{
	"seconds": time.Second, "second": time.Second, "secs": time.Second, "sec": time.Second, "s": time.Second,
	"minutes": time.Minute, "minute": time.Minute, "mins": time.Minute, "min": time.Minute,
	"hours": time.Hour, "hour": time.Hour, "hrs": time.Hour, "hr": time.Hour, "h": time.Hour,
	"days": 24 * time.Hour, "day": 24 * time.Hour, "d": 24 * time.Hour,
}

var referenceLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2 15:4:5",
}

/*
ParseTimeUnits splits a CF units string such as "hours since 1990-01-01 00:00:00" into the duration of one
unit and the reference time. A missing "since" clause gives a zero reference time.
*/
func ParseTimeUnits(units string) (unit time.Duration, ref time.Time, err error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(units)))
	if len(fields) == 0 {
		return 0, ref, fmt.Errorf("empty time units")
	}
	var ok bool
	if unit, ok = timeUnits[fields[0]]; !ok {
		return 0, ref, fmt.Errorf("unknown time unit %q", fields[0])
	}
	if len(fields) < 3 || fields[1] != "since" {
		return unit, ref, nil
	}
	stamp := strings.TrimSuffix(strings.Join(fields[2:], " "), " utc")
	for _, layout := range referenceLayouts {
		if ref, err = time.Parse(layout, strings.ToUpper(stamp)); err == nil {
			return unit, ref, nil
		}
	}
	return unit, time.Time{}, fmt.Errorf("unparseable reference time %q", stamp)
}

// Offsets scales raw time values by unit
func Offsets(values []float64, unit time.Duration) (offsets []time.Duration) {
	offsets = make([]time.Duration, len(values))
	for i, v := range values {
		offsets[i] = time.Duration(v * float64(unit))
	}
	return
}
