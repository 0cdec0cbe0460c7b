package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WeekdayMask is a set of weekdays packed into one byte. Monday is the highest
// used bit (0b1000000) and Sunday the lowest (0b0000001). Zero means the
// tracker has no weekly recurrence.
type WeekdayMask uint8

// AllDays has every weekday bit set.
const AllDays WeekdayMask = 0b1111111

// calendarOrder lists weekdays Monday first, matching bit order.
var calendarOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Bit returns the fixed mask bit for a weekday.
func Bit(wd time.Weekday) WeekdayMask {
	// Sunday is 0 in time.Weekday but occupies the lowest bit here.
	if wd == time.Sunday {
		return 1
	}
	return 1 << (7 - uint(wd))
}

// ToMask ORs the bit of every given weekday. An empty set yields 0.
func ToMask(days []time.Weekday) WeekdayMask {
	var m WeekdayMask
	for _, wd := range days {
		m |= Bit(wd)
	}
	return m
}

// FromMask returns the weekdays set in m, Monday first.
func FromMask(m WeekdayMask) []time.Weekday {
	return m.Days()
}

// Days returns the weekdays set in m, Monday first. Bits outside the seven
// defined ones are ignored.
func (m WeekdayMask) Days() []time.Weekday {
	var days []time.Weekday
	for _, wd := range calendarOrder {
		if m&Bit(wd) != 0 {
			days = append(days, wd)
		}
	}
	return days
}

// Contains reports whether wd is part of the mask.
func (m WeekdayMask) Contains(wd time.Weekday) bool {
	return m&Bit(wd) != 0
}

// IsOneOff reports whether the mask carries no weekly recurrence.
func (m WeekdayMask) IsOneOff() bool {
	return m&AllDays == 0
}

func (m WeekdayMask) String() string {
	switch {
	case m.IsOneOff():
		return "one-off"
	case m&AllDays == AllDays:
		return "every day"
	}
	var names []string
	for _, wd := range m.Days() {
		names = append(names, wd.String()[:3])
	}
	return strings.Join(names, ",")
}

// ParseWeekdays parses a comma-separated list of weekdays ("mon,wed", "monday",
// or numbers 0=Sunday..6=Saturday). The words "daily" and "every" select all days.
func ParseWeekdays(s string) (WeekdayMask, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, nil
	}
	if s == "daily" || s == "every" {
		return AllDays, nil
	}

	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}

	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if wd, ok := dayMap[part]; ok {
			days = append(days, wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return 0, fmt.Errorf("invalid weekday: %s", part)
		}
		days = append(days, time.Weekday(num))
	}
	return ToMask(days), nil
}
