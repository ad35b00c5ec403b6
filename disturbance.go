package main

import (
	"strconv"
	"strings"
)

// Disturbance is a time-bounded additive temperature perturbation, e.g. a
// drawer opening letting cold air into the cavity
type Disturbance struct {
	Start    float64 // Activation time (s)
	Value    float64 // Signed temperature offset (°C)
	Duration float64 // Active window length (s)
}

// DisturbanceSchedule is an ordered list of disturbances. Windows may overlap;
// overlapping disturbances stack additively.
type DisturbanceSchedule []Disturbance

// ParseDisturbances parses the user-facing disturbance text into a schedule.
// The format is "time,value,duration;time,value,duration;...", with arbitrary
// whitespace around tokens. An empty string is a valid empty schedule.
//
// Parsing is lenient: a malformed entry (wrong field count, non-numeric field,
// non-positive duration, negative start time) is skipped individually and
// parsing continues, so one typo does not discard an otherwise valid schedule.
// The number of skipped entries is returned alongside the schedule.
func ParseDisturbances(text string) (DisturbanceSchedule, int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, 0
	}

	var schedule DisturbanceSchedule
	var skipped int

	for _, entry := range strings.Split(text, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		fields := strings.Split(entry, ",")
		if len(fields) != 3 {
			skipped++
			continue
		}

		start, err1 := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		value, err2 := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		duration, err3 := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			skipped++
			continue
		}
		if duration <= 0 || start < 0 {
			skipped++
			continue
		}

		schedule = append(schedule, Disturbance{
			Start:    start,
			Value:    value,
			Duration: duration,
		})
	}

	return schedule, skipped
}

// ActiveValue returns the summed value of every disturbance whose window
// contains time t. Windows are half-open: a disturbance is active for
// start <= t < start+duration.
func (s DisturbanceSchedule) ActiveValue(t float64) float64 {
	var total float64
	for _, d := range s {
		if d.Start <= t && t < d.Start+d.Duration {
			total += d.Value
		}
	}
	return total
}
