package models

import (
	"strconv"
	"time"
)

// TypeVelocity is the only violation type this system validates; other type
// strings pass through untouched.
const TypeVelocity = "VELOCITY"

// Violation is a recorded infraction detected by a piece of equipment. Once
// built it is treated as an immutable value; nothing mutates a stored record.
type Violation struct {
	ID              int64     `json:"id"`
	EquipmentSerial string    `json:"equipmentSerial"`
	OccurredAt      time.Time `json:"occurrenceDateUtc"`
	MeasuredSpeed   *float64  `json:"measuredSpeed,omitempty"`
	ConsideredSpeed *float64  `json:"consideredSpeed,omitempty"`
	RegulatedSpeed  *float64  `json:"regulatedSpeed,omitempty"`
	Picture         string    `json:"picture"`
	Type            string    `json:"type"`
}

// MaskID hides all but the last four digits of a violation id for logging.
func MaskID(id int64) string {
	s := strconv.FormatInt(id, 10)
	if len(s) < 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
