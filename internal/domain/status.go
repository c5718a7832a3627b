package domain

import "time"

type FlightStatus string

const (
	StatusOnTime   FlightStatus = "OnTime"
	StatusDelayed  FlightStatus = "Delayed"
	StatusCanceled FlightStatus = "Canceled"
	StatusUnknown  FlightStatus = "Unknown"
)

// FlightLeg is one endpoint of a flight: where and when.
type FlightLeg struct {
	Airport       string    `json:"airport"`
	ScheduledTime time.Time `json:"scheduled_time"`
	ActualTime    time.Time `json:"actual_time,omitzero"`
}

// FlightStatusRecord is an immutable snapshot of a flight's schedule state.
// Every fetch produces a fresh record; records are compared, never mutated.
type FlightStatusRecord struct {
	FlightNumber string       `json:"flight_number"`
	Date         string       `json:"date"`
	Departure    FlightLeg    `json:"departure"`
	Arrival      FlightLeg    `json:"arrival"`
	Status       FlightStatus `json:"status"`
}

// UnknownStatusRecord is what a failed or empty lookup normalizes to.
func UnknownStatusRecord(flightNumber, date string) FlightStatusRecord {
	return FlightStatusRecord{
		FlightNumber: flightNumber,
		Date:         date,
		Status:       StatusUnknown,
	}
}

// Contact holds the channels a tracking session can be reached on.
// Empty fields mean the channel is not configured for the session.
type Contact struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// TrackedSession binds one live connection to the single flight it watches.
type TrackedSession struct {
	SessionID    string
	FlightNumber string
	Date         string
	Contact      Contact
}
