package queries

import (
	"errors"

	"courier-dispatch/internal/pkg/guard"
)

// ErrGetAllCouriersQueryIsNotConstructed is returned for a zero-value query.
var ErrGetAllCouriersQueryIsNotConstructed = errors.New(
	"GetAllCouriersQuery must be created via NewGetAllCouriersQuery",
)

// GetAllCouriersQuery asks for every courier. It has no parameters.
type GetAllCouriersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAllCouriersQuery returns a valid query.
func NewGetAllCouriersQuery() GetAllCouriersQuery {
	return GetAllCouriersQuery{guard: guard.NewConstructorGuard()}
}

// Validate reports whether the query was built by NewGetAllCouriersQuery.
func (q GetAllCouriersQuery) Validate() error {
	return q.guard.Validate(ErrGetAllCouriersQueryIsNotConstructed)
}
