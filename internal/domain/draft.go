package domain

import (
	"strings"
	"time"
)

// Input is the raw capture-form payload before validation. Every field the
// form can carry is optional here; ParseDraft decides which ones the selected
// kind actually requires.
type Input struct {
	Kind            string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
	Amount          *int
	Unit            string
	DiaperKind      string
	CustomName      string
	Notes           string
}

// SleepDetail carries the fields specific to nap and night_sleep records.
type SleepDetail struct {
	DurationMinutes int
}

// FeedingDetail carries the fields specific to nursing and formula records.
type FeedingDetail struct {
	Amount int
	Unit   Unit
}

// DiaperDetail carries the fields specific to diaper records.
type DiaperDetail struct {
	Kind DiaperKind
}

// CustomDetail carries the fields specific to custom records.
type CustomDetail struct {
	Name string
}

// Draft is a validated, not-yet-persisted record awaiting an ID, owner, and
// creation timestamp from the store. Exactly one of the detail pointers is set
// and it always matches Kind, so fields from one kind cannot leak into
// another's semantics.
type Draft struct {
	Kind      Kind
	StartTime time.Time
	EndTime   *time.Time
	Notes     string

	Sleep   *SleepDetail
	Feeding *FeedingDetail
	Diaper  *DiaperDetail
	Custom  *CustomDetail
}

// ParseDraft applies the kind-conditional validation rules to a raw input and
// returns either a complete draft or FieldErrors naming every failing field.
// There is no partial success.
func ParseDraft(in Input) (Draft, error) {
	kind := Kind(in.Kind)
	if !kind.Known() {
		return Draft{}, FieldErrors{FieldKind: "unrecognised activity kind"}
	}

	errs := FieldErrors{}
	if in.StartTime.IsZero() {
		errs[FieldStartTime] = "start time is required"
	}

	draft := Draft{
		Kind:      kind,
		StartTime: in.StartTime,
		Notes:     strings.TrimSpace(in.Notes),
	}

	switch {
	case kind.IsSleep():
		if in.DurationMinutes == nil {
			errs[FieldDurationMinutes] = "duration is required"
		} else if *in.DurationMinutes < 1 {
			errs[FieldDurationMinutes] = "duration must be at least 1 minute"
		} else {
			draft.Sleep = &SleepDetail{DurationMinutes: *in.DurationMinutes}
		}
	case kind.IsFeeding():
		// Amount and unit travel together; one without the other is rejected.
		if in.Amount == nil {
			errs[FieldAmount] = "amount is required"
		} else if *in.Amount < 1 {
			errs[FieldAmount] = "amount must be at least 1"
		}
		unit := Unit(in.Unit)
		if in.Unit == "" {
			errs[FieldUnit] = "unit is required"
		} else if !unit.Known() {
			errs[FieldUnit] = "unit must be ml, oz, or min"
		}
		if _, bad := errs[FieldAmount]; !bad {
			if _, bad := errs[FieldUnit]; !bad {
				draft.Feeding = &FeedingDetail{Amount: *in.Amount, Unit: unit}
			}
		}
	case kind == KindDiaper:
		diaper := DiaperKind(in.DiaperKind)
		if in.DiaperKind == "" {
			errs[FieldDiaperKind] = "diaper kind is required"
		} else if !diaper.Known() {
			errs[FieldDiaperKind] = "diaper kind must be wet, dirty, or both"
		} else {
			draft.Diaper = &DiaperDetail{Kind: diaper}
		}
	case kind == KindCustom:
		name := strings.TrimSpace(in.CustomName)
		if name == "" {
			errs[FieldCustomName] = "activity name is required"
		} else {
			draft.Custom = &CustomDetail{Name: name}
		}
	}

	if in.EndTime != nil {
		if !in.StartTime.IsZero() && in.EndTime.Before(in.StartTime) {
			errs[FieldEndTime] = "end time must not precede start time"
		} else {
			end := *in.EndTime
			draft.EndTime = &end
		}
	}

	if len(errs) > 0 {
		return Draft{}, errs
	}
	return draft, nil
}

// Record materialises the draft into a persistable record with store-assigned
// identity. Fields irrelevant to the draft's kind stay nil.
func (d Draft) Record(id, ownerID string, createdAt time.Time) ActivityRecord {
	record := ActivityRecord{
		ID:        id,
		OwnerID:   ownerID,
		Kind:      d.Kind,
		StartTime: d.StartTime.UTC(),
		CreatedAt: createdAt,
	}
	if d.EndTime != nil {
		end := d.EndTime.UTC()
		record.EndTime = &end
	}
	if d.Notes != "" {
		notes := d.Notes
		record.Notes = &notes
	}
	switch {
	case d.Sleep != nil:
		minutes := d.Sleep.DurationMinutes
		record.DurationMinutes = &minutes
	case d.Feeding != nil:
		amount := d.Feeding.Amount
		unit := d.Feeding.Unit
		record.Amount = &amount
		record.Unit = &unit
	case d.Diaper != nil:
		diaper := d.Diaper.Kind
		record.DiaperKind = &diaper
	case d.Custom != nil:
		name := d.Custom.Name
		record.CustomName = &name
	}
	return record
}
