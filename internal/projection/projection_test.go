package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/sleepbaby/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestTitlePerKind(t *testing.T) {
	cases := []struct {
		name   string
		record domain.ActivityRecord
		want   string
	}{
		{"nap", domain.ActivityRecord{Kind: domain.KindNap}, "Nap"},
		{"night sleep", domain.ActivityRecord{Kind: domain.KindNightSleep}, "Night Sleep"},
		{"nursing", domain.ActivityRecord{Kind: domain.KindNursing}, "Nursing"},
		{"formula", domain.ActivityRecord{Kind: domain.KindFormula}, "Formula"},
		{"diaper dirty", domain.ActivityRecord{Kind: domain.KindDiaper, DiaperKind: ptr(domain.DiaperDirty)}, "Diaper: Dirty"},
		{"diaper wet", domain.ActivityRecord{Kind: domain.KindDiaper, DiaperKind: ptr(domain.DiaperWet)}, "Diaper: Wet"},
		{"custom named", domain.ActivityRecord{Kind: domain.KindCustom, CustomName: ptr("Tummy Time")}, "Tummy Time"},
		{"custom fallback", domain.ActivityRecord{Kind: domain.KindCustom}, "Custom Activity"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Title(tc.record))
		})
	}
}

func TestDetailComposition(t *testing.T) {
	rec := domain.ActivityRecord{
		Kind:            domain.KindNap,
		DurationMinutes: ptr(90),
		Notes:           ptr("slept through the storm"),
	}
	require.Equal(t, "1h 30m • slept through the storm", Detail(rec))
}

func TestDetailAmountWithUnit(t *testing.T) {
	unit := domain.UnitMilliliters
	rec := domain.ActivityRecord{
		Kind:   domain.KindNursing,
		Amount: ptr(120),
		Unit:   &unit,
	}
	require.Equal(t, "120 ml", Detail(rec))
}

func TestDetailOmitsZeroDurationParts(t *testing.T) {
	require.Equal(t, "2h", Detail(domain.ActivityRecord{DurationMinutes: ptr(120)}))
	require.Equal(t, "45m", Detail(domain.ActivityRecord{DurationMinutes: ptr(45)}))
	require.Empty(t, Detail(domain.ActivityRecord{}))
}

func TestProjectKeepsOrderAndRendersRows(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	unit := domain.UnitMilliliters
	records := []domain.ActivityRecord{
		{ID: "a2", Kind: domain.KindNursing, StartTime: now.Add(-30 * time.Minute), Amount: ptr(120), Unit: &unit},
		{ID: "a1", Kind: domain.KindNap, StartTime: now.Add(-3 * time.Hour), EndTime: ptr(now.Add(-2 * time.Hour)), DurationMinutes: ptr(60)},
	}

	items := Project(records, now)
	require.Len(t, items, 2)

	require.Equal(t, "a2", items[0].ID)
	require.Equal(t, "Nursing", items[0].Title)
	require.Equal(t, "glass-water", items[0].Icon)
	require.Equal(t, "30 minutes ago", items[0].RelativeTime)
	require.Equal(t, "120 ml", items[0].Detail)

	require.Equal(t, "a1", items[1].ID)
	require.Equal(t, "moon", items[1].Icon)
	require.Equal(t, "3 hours ago", items[1].RelativeTime)
	require.Equal(t, "9:00 AM - 10:00 AM", items[1].TimeRange)
	require.Equal(t, "1h", items[1].Detail)
}

func TestRelativeTimeBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		offset time.Duration
		want   string
	}{
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "1 hour ago"},
		{26 * time.Hour, "1 day ago"},
		{72 * time.Hour, "3 days ago"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, relativeTime(now.Add(-tc.offset), now), "offset %s", tc.offset)
	}
}

func TestEmptyMessagePerFilter(t *testing.T) {
	require.Equal(t, "Log your first activity to get started!", EmptyMessage(domain.FilterAll))
	require.Equal(t, "No sleep activities found.", EmptyMessage(domain.FilterSleep))
	require.Equal(t, "No feeding activities found.", EmptyMessage(domain.FilterFeeding))
	require.Equal(t, "No diaper activities found.", EmptyMessage(domain.FilterDiaper))
}
