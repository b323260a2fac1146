package ports

import (
	"context"

	"courier-dispatch/internal/core/domain/model/kernel"
)

// GeoClient resolves a street address to a point on the grid.
type GeoClient interface {
	GetLocation(ctx context.Context, street string) (kernel.Location, error)
}
