// Package domain defines the activity record schema and business rules for the tracker.
package domain

import "time"

// Kind identifies the type of a logged care event.
type Kind string

const (
	KindNap        Kind = "nap"
	KindNightSleep Kind = "night_sleep"
	KindNursing    Kind = "nursing"
	KindFormula    Kind = "formula"
	KindDiaper     Kind = "diaper"
	KindCustom     Kind = "custom"
)

// Known reports whether k is one of the six recognised kinds.
func (k Kind) Known() bool {
	switch k {
	case KindNap, KindNightSleep, KindNursing, KindFormula, KindDiaper, KindCustom:
		return true
	}
	return false
}

// IsSleep reports whether the kind carries a sleep duration.
func (k Kind) IsSleep() bool { return k == KindNap || k == KindNightSleep }

// IsFeeding reports whether the kind carries an amount and unit.
func (k Kind) IsFeeding() bool { return k == KindNursing || k == KindFormula }

// DiaperKind describes the contents of a diaper change.
type DiaperKind string

const (
	DiaperWet   DiaperKind = "wet"
	DiaperDirty DiaperKind = "dirty"
	DiaperBoth  DiaperKind = "both"
)

// Known reports whether d is a recognised diaper kind.
func (d DiaperKind) Known() bool {
	return d == DiaperWet || d == DiaperDirty || d == DiaperBoth
}

// Unit labels a feeding amount.
type Unit string

const (
	UnitMilliliters Unit = "ml"
	UnitOunces      Unit = "oz"
	UnitMinutes     Unit = "min"
)

// Known reports whether u is a recognised unit.
func (u Unit) Known() bool {
	return u == UnitMilliliters || u == UnitOunces || u == UnitMinutes
}

// ActivityRecord is the canonical logged event persisted in Postgres. ID,
// OwnerID, and CreatedAt are assigned at creation and never change; records
// are append-only, editing happens outside this service.
type ActivityRecord struct {
	ID              string
	OwnerID         string
	Kind            Kind
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
	Amount          *int
	Unit            *Unit
	DiaperKind      *DiaperKind
	CustomName      *string
	Notes           *string
	CreatedAt       time.Time
}

// Filter selects a subset of activity kinds for list views.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterSleep   Filter = "sleep"
	FilterFeeding Filter = "feeding"
	FilterDiaper  Filter = "diaper"
)

// Known reports whether f is a recognised filter.
func (f Filter) Known() bool {
	return f == FilterAll || f == FilterSleep || f == FilterFeeding || f == FilterDiaper
}

// Kinds returns the kind subset the filter allows. A nil result means no
// restriction.
func (f Filter) Kinds() []Kind {
	switch f {
	case FilterSleep:
		return []Kind{KindNap, KindNightSleep}
	case FilterFeeding:
		return []Kind{KindNursing, KindFormula}
	case FilterDiaper:
		return []Kind{KindDiaper}
	}
	return nil
}

// Allows reports whether a record of kind k passes the filter.
func (f Filter) Allows(k Kind) bool {
	kinds := f.Kinds()
	if kinds == nil {
		return true
	}
	for _, allowed := range kinds {
		if allowed == k {
			return true
		}
	}
	return false
}

// Cursor models the keyset pagination token for list queries.
type Cursor struct {
	StartTime time.Time
	ID        string
}
