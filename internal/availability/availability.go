// Package availability reconciles sparse per-weekday override rows with a
// complete seven day working week, and flattens edited weeks back into the
// upsert rows the persistence layer stores.
package availability

import "time"

// Defaults applied to weekdays that have no override row.
const (
	DefaultStartTime = "09:00"
	DefaultEndTime   = "17:00"
)

// OverrideRow is a stored per-staff-member, per-weekday availability record.
// Only active days carry meaningful times; inactive days store null times.
type OverrideRow struct {
	Weekday   time.Weekday
	StartTime *string
	EndTime   *string
	IsActive  bool
}

// Day is one entry of the hydrated week.
type Day struct {
	StartTime string
	EndTime   string
	IsActive  bool
}

// Week always holds exactly seven entries indexed by time.Weekday
// (Sunday = 0), regardless of how many override rows exist.
type Week [7]Day

// UpsertRow is the record persisted for one weekday, keyed by
// (StaffID, Weekday).
type UpsertRow struct {
	StaffID   string
	Weekday   time.Weekday
	StartTime *string
	EndTime   *string
	IsActive  bool
}

// Hydrate merges zero or more override rows into a full week. Weekdays
// without a row receive the inactive default working hours. When the source
// contains several rows for the same weekday the first row wins,
// deterministically by input order; whether duplicates can occur upstream is
// an open question, so they are not merged. Rows with an out-of-range weekday
// are dropped.
func Hydrate(rows []OverrideRow) Week {
	var week Week
	for day := range week {
		week[day] = Day{
			StartTime: DefaultStartTime,
			EndTime:   DefaultEndTime,
			IsActive:  false,
		}
	}

	seen := make(map[time.Weekday]struct{}, len(rows))
	for _, row := range rows {
		if row.Weekday < time.Sunday || row.Weekday > time.Saturday {
			continue
		}
		if _, ok := seen[row.Weekday]; ok {
			continue
		}
		seen[row.Weekday] = struct{}{}

		entry := Day{
			StartTime: DefaultStartTime,
			EndTime:   DefaultEndTime,
			IsActive:  row.IsActive,
		}
		if row.StartTime != nil {
			entry.StartTime = *row.StartTime
		}
		if row.EndTime != nil {
			entry.EndTime = *row.EndTime
		}
		week[row.Weekday] = entry
	}

	return week
}

// Flatten produces exactly seven upsert rows for the staff member, one per
// weekday. Inactive days emit null times regardless of the locally held
// values, so toggling a day off never leaks a stale range into storage.
// Active days emit their held times verbatim; no start-before-end check is
// applied (open question, deliberately unenforced).
func Flatten(week Week, staffID string) []UpsertRow {
	rows := make([]UpsertRow, 0, len(week))
	for day, entry := range week {
		row := UpsertRow{
			StaffID:  staffID,
			Weekday:  time.Weekday(day),
			IsActive: entry.IsActive,
		}
		if entry.IsActive {
			start := entry.StartTime
			end := entry.EndTime
			row.StartTime = &start
			row.EndTime = &end
		}
		rows = append(rows, row)
	}
	return rows
}
