// Package feed consumes the activity change feed and fans notifications out to
// live list views.
package feed

import "time"

// EventActivityRecorded is emitted whenever a new activity record is
// persisted. Subscribers treat any event as a signal to re-query; the payload
// carries no guarantees they may rely on.
const EventActivityRecorded = "activity.recorded"

// ActivityRecorded is the change-feed payload for a newly persisted record.
type ActivityRecorded struct {
	ActivityID string    `json:"activity_id"`
	OwnerID    string    `json:"owner_id"`
	Kind       string    `json:"kind"`
	StartTime  time.Time `json:"start_time"`
	RecordedAt time.Time `json:"recorded_at"`
}
