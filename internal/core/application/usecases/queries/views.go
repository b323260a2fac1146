// Package queries contains the read side: queries go straight to the database
// and return flat views instead of aggregates.
package queries

import (
	"courier-dispatch/internal/core/domain/model/kernel"
)

// LocationView is a grid point as plain integers.
type LocationView struct {
	X int
	Y int
}

// CourierView is one courier on the map.
type CourierView struct {
	ID       kernel.UUID
	Name     string
	Location LocationView
}

// OrderView is one order that is still to be delivered.
type OrderView struct {
	ID kernel.UUID
	// Location is the delivery destination.
	Location LocationView
}
