package events

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Entity kinds as they appear in event names.
const (
	KindEmployee           = "employee"
	KindEmployeeAttendance = "employee_attendance"
	KindClient             = "client"
	KindClientVisit        = "client_visit"
)

type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Envelope is the message unit delivered to every live dashboard
// subscriber. Key is the entity row identity used for broker
// partitioning; it is not part of the wire format.
type Envelope struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
	Key   string         `json:"-"`
}

// Name builds the canonical event name for a committed mutation,
// e.g. "client_create" or "employee_attendance_delete".
func Name(kind string, op Operation) string {
	return kind + "_" + string(op)
}

// New builds an envelope for a committed mutation. key identifies the
// mutated row (kind plus id) so same-row events keep their order on
// partitioned backends.
func New(kind string, op Operation, id string, data map[string]any) Envelope {
	return Envelope{
		Event: Name(kind, op),
		Data:  data,
		Key:   kind + ":" + id,
	}
}

// Marshal renders the envelope for the wire. Data only ever holds JSON
// scalars, rendered timestamps and nested maps built by the services, so
// a marshal failure is a code defect: DPanic crashes development builds
// and logs loudly in production, and the envelope is dropped.
func (e Envelope) Marshal() ([]byte, bool) {
	data, err := json.Marshal(e)
	if err != nil {
		zap.L().DPanic("unencodable event payload",
			zap.String("event", e.Event),
			zap.Error(err),
		)
		return nil, false
	}
	return data, true
}

// FormatTime renders timestamps for envelopes and API responses.
// RFC 3339 with nanoseconds round-trips through ParseTime without
// precision loss.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// ParseTime is the inverse of FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
