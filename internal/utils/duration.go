// Copyright 2025 James D Elliot
// Licensed under the Apache License, Version 2.0
// Originally from: https://github.com/authelia/authelia
// See APACHE-LICENSE.txt for full license text

package utils

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ParseDurationString parses a string to a duration.
// Duration notations are an integer followed by a unit.
// Units are ms, s, m, h, d, w, M, and y; a bare integer is read as seconds.
func ParseDurationString(input string) (time.Duration, error) {
	var duration time.Duration

	input = strings.TrimSpace(input)

	switch {
	case input == "":
		return 0, fmt.Errorf("could not parse an empty duration")
	case reOnlyNumeric.MatchString(input):
		seconds, err := strconv.Atoi(input)
		if err != nil {
			return 0, fmt.Errorf("could not parse '%s' as a duration: %w", input, err)
		}

		duration = time.Duration(seconds) * time.Second
	case reDurationStandard.MatchString(input):
		matches := reDurationStandard.FindAllStringSubmatch(input, -1)

		consumed := 0
		for _, match := range matches {
			consumed += len(match[0])

			amount, err := strconv.Atoi(match[1])
			if err != nil {
				return 0, fmt.Errorf("could not parse '%s' as a duration: %w", input, err)
			}

			d, err := parseDurationUnit(amount, match[2])
			if err != nil {
				return 0, fmt.Errorf("could not parse '%s' as a duration: %w", input, err)
			}

			duration += d
		}

		if consumed != len(input) {
			return 0, fmt.Errorf("could not parse '%s' as a duration", input)
		}
	default:
		return 0, fmt.Errorf("could not parse '%s' as a duration", input)
	}

	return duration, nil
}

func parseDurationUnit(amount int, unit string) (time.Duration, error) {
	switch unit {
	case DurationUnitYears:
		return time.Duration(amount) * HoursInYear * time.Hour, nil
	case DurationUnitMonths:
		return time.Duration(amount) * HoursInMonth * time.Hour, nil
	case DurationUnitWeeks:
		return time.Duration(amount) * HoursInWeek * time.Hour, nil
	case DurationUnitDays:
		return time.Duration(amount) * HoursInDay * time.Hour, nil
	}

	if slices.Contains(standardDurationUnits, unit) {
		return time.ParseDuration(strconv.Itoa(amount) + unit)
	}

	return 0, fmt.Errorf("unknown duration unit '%s'", unit)
}
