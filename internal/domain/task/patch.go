package task

import (
	"bytes"
	"encoding/json"
	"time"
)

// OptionalString distinguishes "key absent" from "key present". A JSON
// null counts as present with an empty value.
type OptionalString struct {
	Set   bool
	Value string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true

	if bytes.Equal(b, []byte("null")) {
		o.Value = ""
		return nil
	}

	return json.Unmarshal(b, &o.Value)
}

// OptionalTime distinguishes "key absent" from "key present". A JSON
// null counts as present with a nil value, which is how a client clears
// a due date.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true

	if bytes.Equal(b, []byte("null")) {
		o.Value = nil
		return nil
	}

	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}

	o.Value = &t
	return nil
}

// UpdateTaskRequest is a partial update. Fields left out of the request
// body stay unset.
type UpdateTaskRequest struct {
	Title       OptionalString `json:"title"`
	Description OptionalString `json:"description"`
	Status      OptionalString `json:"status"`
	DueDate     OptionalTime   `json:"dueDate"`
}
