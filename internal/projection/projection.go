// Package projection turns stored activity records into display-ready list
// items. It is pure: nothing here mutates records or talks to the store.
package projection

import (
	"fmt"
	"strings"
	"time"

	"example.com/sleepbaby/internal/domain"
)

// EmptyTitle is the heading shown when a list has no records.
const EmptyTitle = "No activities yet"

const detailSeparator = " • "

// Item is one rendered row of the activity list.
type Item struct {
	ID           string `json:"id"`
	Icon         string `json:"icon"`
	Title        string `json:"title"`
	RelativeTime string `json:"relative_time"`
	TimeRange    string `json:"time_range"`
	Detail       string `json:"detail,omitempty"`
}

// Project renders each record into an Item, preserving order. The relative
// time strings are anchored to now.
func Project(records []domain.ActivityRecord, now time.Time) []Item {
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		items = append(items, Item{
			ID:           rec.ID,
			Icon:         Icon(rec.Kind),
			Title:        Title(rec),
			RelativeTime: relativeTime(rec.StartTime, now),
			TimeRange:    timeRange(rec),
			Detail:       Detail(rec),
		})
	}
	return items
}

// Icon names the glyph for a kind.
func Icon(kind domain.Kind) string {
	switch kind {
	case domain.KindNap, domain.KindNightSleep:
		return "moon"
	case domain.KindNursing, domain.KindFormula:
		return "glass-water"
	case domain.KindDiaper:
		return "droplet"
	}
	return "activity"
}

// Title derives the display title for a record. Diaper records append the
// capitalized diaper kind; custom records use their name or a fallback.
func Title(rec domain.ActivityRecord) string {
	switch rec.Kind {
	case domain.KindNap:
		return "Nap"
	case domain.KindNightSleep:
		return "Night Sleep"
	case domain.KindNursing:
		return "Nursing"
	case domain.KindFormula:
		return "Formula"
	case domain.KindDiaper:
		return "Diaper: " + capitalize(diaperText(rec.DiaperKind))
	case domain.KindCustom:
		if rec.CustomName != nil && *rec.CustomName != "" {
			return *rec.CustomName
		}
		return "Custom Activity"
	}
	return "Activity"
}

// Detail builds the single-line summary: duration, then amount with unit,
// then notes, each only when present.
func Detail(rec domain.ActivityRecord) string {
	var parts []string

	if rec.DurationMinutes != nil && *rec.DurationMinutes > 0 {
		parts = append(parts, formatDuration(*rec.DurationMinutes))
	}
	if rec.Amount != nil && rec.Unit != nil {
		parts = append(parts, fmt.Sprintf("%d %s", *rec.Amount, *rec.Unit))
	}
	if rec.Notes != nil && *rec.Notes != "" {
		parts = append(parts, *rec.Notes)
	}

	return strings.Join(parts, detailSeparator)
}

// EmptyMessage is the filter-specific hint shown under EmptyTitle.
func EmptyMessage(filter domain.Filter) string {
	if filter == domain.FilterAll || filter == "" {
		return "Log your first activity to get started!"
	}
	return fmt.Sprintf("No %s activities found.", filter)
}

func formatDuration(minutes int) string {
	hours := minutes / 60
	mins := minutes % 60

	var b strings.Builder
	if hours > 0 {
		fmt.Fprintf(&b, "%dh", hours)
	}
	if mins > 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%dm", mins)
	}
	return b.String()
}

func timeRange(rec domain.ActivityRecord) string {
	out := rec.StartTime.Format("3:04 PM")
	if rec.EndTime != nil {
		out += " - " + rec.EndTime.Format("3:04 PM")
	}
	return out
}

func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	default:
		return plural(int(d.Hours()/24), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func diaperText(kind *domain.DiaperKind) string {
	if kind == nil {
		return ""
	}
	return string(*kind)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
