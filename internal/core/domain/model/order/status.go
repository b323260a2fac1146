package order

import (
	"fmt"

	"courier-dispatch/internal/pkg/errs"
)

// Status is the position of an order in its lifecycle. Transitions only move forward:
// Created -> Assigned -> Completed.
//
// Statuses are persisted by name, so the numeric values may change freely.
//
// Example usage:
//
//	s, err := order.ParseStatus("Assigned")
//	if err != nil {
//	    return err
//	}
//	s.String() // "Assigned"
type Status int

const (
	// Unknown is the zero value and never valid.
	Unknown Status = iota
	// Created orders wait for a courier.
	Created
	// Assigned orders sit in a courier's storage place.
	Assigned
	// Completed orders were delivered. This status is final.
	Completed
)

var statusNames = map[Status]string{
	Created:   "Created",
	Assigned:  "Assigned",
	Completed: "Completed",
}

// ParseStatus maps a persisted status name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known status", s))
}

// Validate accepts Created, Assigned and Completed.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted name, "Unknown" for anything else.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// validateCourier checks that a courier is referenced exactly in the statuses that require one.
func (s Status) validateCourier(hasCourier bool) error {
	needsCourier := s == Assigned || s == Completed
	if hasCourier == needsCourier {
		return nil
	}
	if needsCourier {
		return errs.NewValueIsRequiredErrorWithCause("courierId", fmt.Errorf("status %s requires a courier", s))
	}
	return errs.NewValueIsInvalidErrorWithCause("courierId", fmt.Errorf("status %s cannot have a courier", s))
}
