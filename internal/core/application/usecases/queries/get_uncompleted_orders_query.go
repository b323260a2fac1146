package queries

import (
	"errors"

	"courier-dispatch/internal/pkg/guard"
)

// ErrGetUncompletedOrdersQueryIsNotConstructed is returned for a zero-value query.
var ErrGetUncompletedOrdersQueryIsNotConstructed = errors.New(
	"GetUncompletedOrdersQuery must be created via NewGetUncompletedOrdersQuery",
)

// GetUncompletedOrdersQuery asks for orders that are Created or Assigned.
type GetUncompletedOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetUncompletedOrdersQuery returns a valid query.
func NewGetUncompletedOrdersQuery() GetUncompletedOrdersQuery {
	return GetUncompletedOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate reports whether the query was built by NewGetUncompletedOrdersQuery.
func (q GetUncompletedOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetUncompletedOrdersQueryIsNotConstructed)
}
