package outbox

const activityRecordedSchema = `{
  "type": "object",
  "title": "ActivityRecorded",
  "properties": {
    "activity_id": {"type": "string"},
    "owner_id": {"type": "string"},
    "kind": {"type": "string"},
    "start_time": {"type": "string", "format": "date-time"},
    "recorded_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "owner_id", "kind", "start_time", "recorded_at"],
  "additionalProperties": false
}`
