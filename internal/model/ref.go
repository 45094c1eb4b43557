package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The remote API serializes foreign keys either as a bare id (create
// responses) or as the nested object (list and detail responses).  The
// Ref types accept both shapes.

// ScheduleRef points at a schedule, optionally carrying the nested object.
type ScheduleRef struct {
	ID       int64
	Schedule *Schedule
}

func (r *ScheduleRef) UnmarshalJSON(data []byte) error {
	var s Schedule
	ok, err := decodeRef(data, &r.ID, &s)
	if err != nil {
		return fmt.Errorf("schedule ref: %w", err)
	}
	if ok {
		r.ID = s.ID
		r.Schedule = &s
	}
	return nil
}

func (r ScheduleRef) MarshalJSON() ([]byte, error) {
	if r.Schedule != nil {
		return json.Marshal(r.Schedule)
	}
	return json.Marshal(r.ID)
}

// UserRef points at a user, optionally carrying the nested object.
type UserRef struct {
	ID   int64
	User *User
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	var u User
	ok, err := decodeRef(data, &r.ID, &u)
	if err != nil {
		return fmt.Errorf("user ref: %w", err)
	}
	if ok {
		r.ID = u.ID
		r.User = &u
	}
	return nil
}

func (r UserRef) MarshalJSON() ([]byte, error) {
	if r.User != nil {
		return json.Marshal(r.User)
	}
	return json.Marshal(r.ID)
}

// decodeRef fills id for a scalar and obj for an object.  The bool result
// is true when an object was decoded.
func decodeRef(data []byte, id *int64, obj any) (bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return false, nil
	}
	if data[0] == '{' {
		return true, json.Unmarshal(data, obj)
	}
	return false, json.Unmarshal(data, id)
}
