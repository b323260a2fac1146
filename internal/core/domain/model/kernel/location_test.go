package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/pkg/errs"
)

func mustNewLocation(t *testing.T, x, y kernel.Coordinate) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(x, y)
	require.NoError(t, err)
	return loc
}

func TestNewLocation_AcceptsWholeGrid(t *testing.T) {
	for x := kernel.LocationMinX; x <= kernel.LocationMaxX; x++ {
		for y := kernel.LocationMinY; y <= kernel.LocationMaxY; y++ {
			loc, err := kernel.NewLocation(x, y)

			require.NoError(t, err)
			assert.Equal(t, x, loc.X())
			assert.Equal(t, y, loc.Y())
			assert.NoError(t, loc.Validate())
		}
	}
}

func TestNewLocation_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		x, y kernel.Coordinate
	}{
		{"x zero", 0, 5},
		{"x eleven", 11, 5},
		{"x negative", -1, 5},
		{"y zero", 5, 0},
		{"y eleven", 5, 11},
		{"y negative", 5, -1},
		{"both out", 0, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := kernel.NewLocation(tt.x, tt.y)

			require.Error(t, err)
			require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
			assert.Zero(t, loc)
		})
	}
}

func TestNewLocation_ReportsBothAxes(t *testing.T) {
	_, err := kernel.NewLocation(0, 11)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "is x")
	assert.Contains(t, err.Error(), "is y")
}

func TestNewRandomLocation(t *testing.T) {
	t.Run("stays within bounds", func(t *testing.T) {
		rnd := kernel.NewSeededRandom(42)
		for range 500 {
			loc, err := kernel.NewRandomLocation(rnd)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, loc.X(), kernel.LocationMinX)
			assert.LessOrEqual(t, loc.X(), kernel.LocationMaxX)
			assert.GreaterOrEqual(t, loc.Y(), kernel.LocationMinY)
			assert.LessOrEqual(t, loc.Y(), kernel.LocationMaxY)
		}
	})

	t.Run("same seed gives same sequence", func(t *testing.T) {
		a, b := kernel.NewSeededRandom(7), kernel.NewSeededRandom(7)
		for range 20 {
			la, err := kernel.NewRandomLocation(a)
			require.NoError(t, err)
			lb, err := kernel.NewRandomLocation(b)
			require.NoError(t, err)
			assert.Equal(t, la.String(), lb.String())
		}
	})

	t.Run("reaches both corners", func(t *testing.T) {
		rnd := kernel.NewSeededRandom(1)
		seenMin, seenMax := false, false
		for range 5000 {
			loc, err := kernel.NewRandomLocation(rnd)
			require.NoError(t, err)
			seenMin = seenMin || (loc.X() == kernel.LocationMinX && loc.Y() == kernel.LocationMinY)
			seenMax = seenMax || (loc.X() == kernel.LocationMaxX && loc.Y() == kernel.LocationMaxY)
		}
		assert.True(t, seenMin)
		assert.True(t, seenMax)
	})

	t.Run("requires a source", func(t *testing.T) {
		_, err := kernel.NewRandomLocation(nil)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestLocation_ZeroValue(t *testing.T) {
	var loc kernel.Location

	assert.Equal(t, kernel.ErrLocationIsNotConstructed, loc.Validate())

	_, err := loc.Distance(mustNewLocation(t, 1, 1))
	require.Error(t, err)

	_, err = mustNewLocation(t, 1, 1).IsEqual(loc)
	require.Error(t, err)
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "Location(3,7)", mustNewLocation(t, 3, 7).String())
	assert.Equal(t, "Location(1,1)", kernel.MinLocation().String())
	assert.Equal(t, "Location(10,10)", kernel.MaxLocation().String())
}

func TestLocation_IsEqual(t *testing.T) {
	a := mustNewLocation(t, 4, 4)

	equal, err := a.IsEqual(mustNewLocation(t, 4, 4))
	require.NoError(t, err)
	assert.True(t, equal)

	equal, err = a.IsEqual(mustNewLocation(t, 4, 5))
	require.NoError(t, err)
	assert.False(t, equal)
}

func TestLocation_Distance(t *testing.T) {
	tests := []struct {
		name     string
		from, to kernel.Location
		want     int
	}{
		{"same point", mustNewLocation(t, 5, 5), mustNewLocation(t, 5, 5), 0},
		{"diagonal forward", mustNewLocation(t, 2, 6), mustNewLocation(t, 4, 9), 5},
		{"diagonal backward", mustNewLocation(t, 4, 9), mustNewLocation(t, 2, 6), 5},
		{"corner to corner", kernel.MinLocation(), kernel.MaxLocation(), 18},
		{"mixed directions", mustNewLocation(t, 8, 3), mustNewLocation(t, 2, 9), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.Distance(tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocation_DistanceIsSymmetric(t *testing.T) {
	for x1 := kernel.LocationMinX; x1 <= kernel.LocationMaxX; x1++ {
		for y1 := kernel.LocationMinY; y1 <= kernel.LocationMaxY; y1++ {
			a := mustNewLocation(t, x1, y1)
			for x2 := kernel.LocationMinX; x2 <= kernel.LocationMaxX; x2++ {
				for y2 := kernel.LocationMinY; y2 <= kernel.LocationMaxY; y2++ {
					b := mustNewLocation(t, x2, y2)

					ab, err := a.Distance(b)
					require.NoError(t, err)
					ba, err := b.Distance(a)
					require.NoError(t, err)

					require.Equal(t, ab, ba, "%s <-> %s", a, b)
					require.GreaterOrEqual(t, ab, 0)
				}
			}
		}
	}
}

func TestGlobalRandom(t *testing.T) {
	for range 100 {
		loc, err := kernel.NewRandomLocation(kernel.GlobalRandom{})
		require.NoError(t, err)
		require.NoError(t, loc.Validate())
	}
}
