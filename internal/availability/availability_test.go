package availability

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestHydrate_DefaultsWithoutRows(t *testing.T) {
	t.Parallel()

	week := Hydrate(nil)

	for day := time.Sunday; day <= time.Saturday; day++ {
		entry := week[day]
		if entry.IsActive {
			t.Errorf("%v: expected inactive default", day)
		}
		if entry.StartTime != DefaultStartTime || entry.EndTime != DefaultEndTime {
			t.Errorf("%v: times = %q-%q, want %q-%q", day, entry.StartTime, entry.EndTime, DefaultStartTime, DefaultEndTime)
		}
	}
}

func TestHydrate_MergesOverrides(t *testing.T) {
	t.Parallel()

	week := Hydrate([]OverrideRow{
		{Weekday: time.Monday, StartTime: strPtr("07:00"), EndTime: strPtr("15:00"), IsActive: true},
		{Weekday: time.Wednesday, IsActive: false},
	})

	monday := week[time.Monday]
	if !monday.IsActive || monday.StartTime != "07:00" || monday.EndTime != "15:00" {
		t.Fatalf("monday = %+v", monday)
	}

	// An inactive row with null times falls back to default display hours.
	wednesday := week[time.Wednesday]
	if wednesday.IsActive || wednesday.StartTime != DefaultStartTime || wednesday.EndTime != DefaultEndTime {
		t.Fatalf("wednesday = %+v", wednesday)
	}

	tuesday := week[time.Tuesday]
	if tuesday.IsActive {
		t.Fatalf("tuesday should keep the inactive default, got %+v", tuesday)
	}
}

func TestHydrate_FirstDuplicateWins(t *testing.T) {
	t.Parallel()

	week := Hydrate([]OverrideRow{
		{Weekday: time.Friday, StartTime: strPtr("08:00"), EndTime: strPtr("12:00"), IsActive: true},
		{Weekday: time.Friday, StartTime: strPtr("13:00"), EndTime: strPtr("18:00"), IsActive: true},
	})

	friday := week[time.Friday]
	if friday.StartTime != "08:00" || friday.EndTime != "12:00" {
		t.Fatalf("expected the first duplicate to win, got %+v", friday)
	}
}

func TestHydrate_DropsOutOfRangeWeekdays(t *testing.T) {
	t.Parallel()

	week := Hydrate([]OverrideRow{
		{Weekday: 7, StartTime: strPtr("08:00"), EndTime: strPtr("12:00"), IsActive: true},
		{Weekday: -1, IsActive: true},
	})

	for day := time.Sunday; day <= time.Saturday; day++ {
		if week[day].IsActive {
			t.Fatalf("%v: out-of-range rows must not activate any day", day)
		}
	}
}

func TestFlatten_EmitsSevenKeyedRows(t *testing.T) {
	t.Parallel()

	var week Week
	week[time.Monday] = Day{StartTime: "08:00", EndTime: "16:00", IsActive: true}

	rows := Flatten(week, "staff-1")

	if len(rows) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.StaffID != "staff-1" {
			t.Fatalf("row %d staff = %q", i, row.StaffID)
		}
		if row.Weekday != time.Weekday(i) {
			t.Fatalf("row %d weekday = %v", i, row.Weekday)
		}
	}

	monday := rows[time.Monday]
	if !monday.IsActive || monday.StartTime == nil || *monday.StartTime != "08:00" || monday.EndTime == nil || *monday.EndTime != "16:00" {
		t.Fatalf("monday row = %+v", monday)
	}
}

func TestFlatten_NullsTimesForInactiveDays(t *testing.T) {
	t.Parallel()

	var week Week
	// Stale local values on a day that was toggled inactive.
	week[time.Tuesday] = Day{StartTime: "10:00", EndTime: "14:00", IsActive: false}

	rows := Flatten(week, "staff-2")

	tuesday := rows[time.Tuesday]
	if tuesday.IsActive {
		t.Fatal("tuesday should be inactive")
	}
	if tuesday.StartTime != nil || tuesday.EndTime != nil {
		t.Fatalf("inactive day must emit null times, got %+v", tuesday)
	}
}

func TestHydrateFlattenRoundTrip(t *testing.T) {
	t.Parallel()

	original := []OverrideRow{
		{Weekday: time.Monday, StartTime: strPtr("07:30"), EndTime: strPtr("15:30"), IsActive: true},
		{Weekday: time.Saturday, IsActive: false},
	}

	rows := Flatten(Hydrate(original), "staff-3")
	rehydrated := Hydrate(toOverrides(rows))

	monday := rehydrated[time.Monday]
	if !monday.IsActive || monday.StartTime != "07:30" || monday.EndTime != "15:30" {
		t.Fatalf("monday = %+v", monday)
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		if day == time.Monday {
			continue
		}
		if rehydrated[day].IsActive {
			t.Fatalf("%v: unexpectedly active after round trip", day)
		}
	}
}

func toOverrides(rows []UpsertRow) []OverrideRow {
	out := make([]OverrideRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, OverrideRow{
			Weekday:   row.Weekday,
			StartTime: row.StartTime,
			EndTime:   row.EndTime,
			IsActive:  row.IsActive,
		})
	}
	return out
}
