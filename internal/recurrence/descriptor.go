package recurrence

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Frequency represents supported recurrence intervals for cleaning jobs.
type Frequency int

const (
	// FrequencyUnspecified indicates the descriptor frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyDaily repeats every day at the configured time.
	FrequencyDaily
	// FrequencyWeekly repeats on the selected weekdays.
	FrequencyWeekly
	// FrequencyMonthly repeats on a fixed day of every month.
	FrequencyMonthly
	// FrequencyQuarterly repeats on a fixed day of January, April, July and October.
	FrequencyQuarterly
	// FrequencyAnnually repeats on a fixed day of a fixed month.
	FrequencyAnnually
)

// Descriptor captures a structured recurrence configuration collected from a
// scheduling form. Only the fields required by Frequency are meaningful:
// Weekdays for weekly descriptors, DayOfMonth for monthly/quarterly/annual
// descriptors, and Month for annual descriptors. Other fields are ignored on
// encode.
type Descriptor struct {
	Frequency  Frequency
	Hour       int
	Minute     int
	Weekdays   []time.Weekday
	DayOfMonth int
	Month      time.Month
}

// ValidationError reports descriptor fields that failed validation during
// encoding. It mirrors the field->message shape used by the application layer
// so callers can surface errors per form field.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "recurrence: validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "recurrence: invalid " + strings.Join(fields, ", ")
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func (v *ValidationError) hasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// quarterlyMonths is the fixed month list used to encode quarterly
// descriptors. Decoding recognizes quarterly expressions by this multi-month
// pattern; a four-month annual-style expression is indistinguishable from a
// quarterly one. That ambiguity comes from the stored format and is preserved
// rather than papered over with an extra field.
const quarterlyMonths = "1,4,7,10"

// InvalidSchedulePhrase is returned by Describe for expressions that cannot
// be interpreted. Display paths must keep rendering on malformed legacy data,
// so Describe degrades to this sentinel instead of failing.
const InvalidSchedulePhrase = "Invalid schedule"

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var weekdayAbbrevs = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Encode builds the persisted five-field expression
// "minute hour dayOfMonth month weekday" from a descriptor.
//
// Weekly weekday lists are emitted sorted ascending and deduplicated so the
// produced expression is identical regardless of selection order. Validation
// failures are reported through *ValidationError and never silently
// defaulted.
func Encode(d Descriptor) (string, error) {
	vErr := &ValidationError{}

	if d.Minute < 0 || d.Minute > 59 {
		vErr.add("minute", "minute must be between 0 and 59")
	}
	if d.Hour < 0 || d.Hour > 23 {
		vErr.add("hour", "hour must be between 0 and 23")
	}

	dayOfMonth := "*"
	month := "*"
	weekday := "*"

	switch d.Frequency {
	case FrequencyDaily:
		// All wildcards.
	case FrequencyWeekly:
		days := normalizeWeekdays(d.Weekdays, vErr)
		if len(days) > 0 {
			weekday = joinInts(days)
		}
	case FrequencyMonthly:
		dayOfMonth = encodeDayOfMonth(d.DayOfMonth, vErr)
	case FrequencyQuarterly:
		dayOfMonth = encodeDayOfMonth(d.DayOfMonth, vErr)
		month = quarterlyMonths
	case FrequencyAnnually:
		dayOfMonth = encodeDayOfMonth(d.DayOfMonth, vErr)
		if d.Month < time.January || d.Month > time.December {
			vErr.add("month", "month must be between 1 and 12")
		} else {
			month = strconv.Itoa(int(d.Month))
		}
	case FrequencyUnspecified:
		fallthrough
	default:
		vErr.add("frequency", "frequency is required")
	}

	if vErr.hasErrors() {
		return "", vErr
	}

	return fmt.Sprintf("%02d %02d %s %s %s", d.Minute, d.Hour, dayOfMonth, month, weekday), nil
}

// Describe renders a stored expression into a human readable phrase.
//
// The match is priority ordered: a concrete day-of-month plus a concrete
// month field is quarterly when the month field lists several months and
// annual otherwise; a concrete day-of-month alone is monthly; a concrete
// weekday field is weekly; everything else is daily. Expressions with fewer
// than five fields yield InvalidSchedulePhrase. Out-of-range month or weekday
// values render as empty tokens instead of failing.
func Describe(expression string) string {
	fields := strings.Fields(expression)
	if len(fields) < 5 {
		return InvalidSchedulePhrase
	}

	minute, hour, dayOfMonth, month, weekday := fields[0], fields[1], fields[2], fields[3], fields[4]
	clock := formatClock(hour, minute)

	switch {
	case dayOfMonth != "*" && month != "*" && weekday == "*":
		if strings.Contains(month, ",") {
			return fmt.Sprintf("Quarterly on day %s at %s", dayOfMonth, clock)
		}
		return fmt.Sprintf("Annually on %s %s at %s", monthName(month), dayOfMonth, clock)
	case dayOfMonth != "*" && month == "*" && weekday == "*":
		return fmt.Sprintf("Monthly on day %s at %s", dayOfMonth, clock)
	case weekday != "*":
		return fmt.Sprintf("Weekly on %s at %s", weekdayList(weekday), clock)
	default:
		return fmt.Sprintf("Daily at %s", clock)
	}
}

func normalizeWeekdays(weekdays []time.Weekday, vErr *ValidationError) []int {
	if len(weekdays) == 0 {
		vErr.add("weekdays", "select at least one day")
		return nil
	}

	seen := make(map[int]struct{}, len(weekdays))
	days := make([]int, 0, len(weekdays))
	for _, day := range weekdays {
		if day < time.Sunday || day > time.Saturday {
			vErr.add("weekdays", "weekday must be between 0 and 6")
			return nil
		}
		if _, ok := seen[int(day)]; ok {
			continue
		}
		seen[int(day)] = struct{}{}
		days = append(days, int(day))
	}

	sort.Ints(days)
	return days
}

func encodeDayOfMonth(day int, vErr *ValidationError) string {
	if day < 1 || day > 31 {
		vErr.add("day_of_month", "day of month must be between 1 and 31")
		return "*"
	}
	return strconv.Itoa(day)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = strconv.Itoa(value)
	}
	return strings.Join(parts, ",")
}

func formatClock(hourField, minuteField string) string {
	hour, hourErr := strconv.Atoi(hourField)
	minute, minuteErr := strconv.Atoi(minuteField)
	if hourErr != nil || minuteErr != nil {
		return hourField + ":" + minuteField
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func monthName(field string) string {
	index, err := strconv.Atoi(field)
	if err != nil || index < 1 || index > len(monthNames) {
		return ""
	}
	return monthNames[index-1]
}

func weekdayList(field string) string {
	parts := strings.Split(field, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		index, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || index < 0 || index >= len(weekdayAbbrevs) {
			names = append(names, "")
			continue
		}
		names = append(names, weekdayAbbrevs[index])
	}
	return strings.Join(names, ", ")
}
