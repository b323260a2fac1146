package kernel

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"courier-dispatch/internal/pkg/errs"
	"courier-dispatch/internal/pkg/guard"
)

// Coordinate is one axis of a point on the city grid.
type Coordinate int8

// Grid bounds, inclusive on both ends.
const (
	// LocationMinX is the leftmost column.
	LocationMinX Coordinate = 1
	// LocationMinY is the bottom row.
	LocationMinY Coordinate = 1
	// LocationMaxX is the rightmost column.
	LocationMaxX Coordinate = 10
	// LocationMaxY is the top row.
	LocationMaxY Coordinate = 10
)

// ErrLocationIsNotConstructed is returned when a zero-value Location is used.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation or NewRandomLocation")

// RandomSource yields uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// NewSeededRandom returns a deterministic RandomSource that is safe for concurrent use.
// Two sources built from the same seed produce the same sequence of locations.
func NewSeededRandom(seed uint64) RandomSource {
	return &lockedRandom{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))} //nolint:gosec // not used for security
}

// GlobalRandom draws from the process-wide math/rand/v2 generator.
type GlobalRandom struct{}

// IntN returns a value in [0, n) from the shared generator.
func (GlobalRandom) IntN(n int) int {
	return rand.IntN(n) //nolint:gosec // not used for security
}

type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (r *lockedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

// Location is an immutable point on the grid.
//
// Both coordinates are kept within [LocationMin, LocationMax]. The zero value is
// not a location: it fails Validate and every operation that takes it.
//
// Business rules:
//   - 1 <= x <= 10 and 1 <= y <= 10
//   - Distance is Manhattan distance, symmetric and never negative
//   - Equality compares coordinates only
//
// Example usage:
//
//	home, _ := kernel.NewLocation(2, 6)
//	shop, _ := kernel.NewLocation(4, 9)
//	d, _ := home.Distance(shop) // 5
type Location struct { //nolint:recvcheck // setters are used during construction only
	// x is the column, within [LocationMinX, LocationMaxX]
	x Coordinate
	// y is the row, within [LocationMinY, LocationMaxY]
	y Coordinate
	// guard marks locations built by a constructor
	guard guard.ConstructorGuard
}

// NewLocation validates both coordinates and reports every violation at once.
//
// Example:
//
//	loc, err := kernel.NewLocation(11, 0)
//	// err joins two out-of-range errors, one for x and one for y
func NewLocation(x Coordinate, y Coordinate) (Location, error) {
	loc := Location{guard: guard.NewConstructorGuard()}

	if err := errors.Join(loc.setX(x), loc.setY(y)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// NewRandomLocation samples both coordinates uniformly within the grid bounds.
// The sample is passed through NewLocation so there is a single validation path.
//
// Example:
//
//	rnd := kernel.NewSeededRandom(42)
//	a, _ := kernel.NewRandomLocation(rnd)
//	b, _ := kernel.NewRandomLocation(kernel.NewSeededRandom(42))
//	same, _ := a.IsEqual(b) // true
func NewRandomLocation(rnd RandomSource) (Location, error) {
	if rnd == nil {
		return Location{}, errs.NewValueIsRequiredError("rnd")
	}
	x := LocationMinX + Coordinate(rnd.IntN(int(LocationMaxX-LocationMinX)+1))
	y := LocationMinY + Coordinate(rnd.IntN(int(LocationMaxY-LocationMinY)+1))
	return NewLocation(x, y)
}

// MinLocation returns the lower-left corner of the grid.
func MinLocation() Location {
	return Location{x: LocationMinX, y: LocationMinY, guard: guard.NewConstructorGuard()}
}

// MaxLocation returns the upper-right corner of the grid.
func MaxLocation() Location {
	return Location{x: LocationMaxX, y: LocationMaxY, guard: guard.NewConstructorGuard()}
}

// Validate reports ErrLocationIsNotConstructed for the zero value.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// X returns the column.
func (l Location) X() Coordinate {
	return l.x
}

// Y returns the row.
func (l Location) Y() Coordinate {
	return l.y
}

// String formats the location for logs and error messages.
func (l Location) String() string {
	return fmt.Sprintf("Location(%d,%d)", l.x, l.y)
}

// IsEqual compares coordinates. Both sides must be constructed locations.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.x == other.x && l.y == other.y, nil
}

// Distance returns the Manhattan distance |dx| + |dy|, which is symmetric and never negative.
func (l Location) Distance(other Location) (int, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return abs(int(l.x)-int(other.x)) + abs(int(l.y)-int(other.y)), nil
}

func (l *Location) setX(x Coordinate) error {
	if x < LocationMinX || x > LocationMaxX {
		return errs.NewValueIsOutOfRangeError("x", x, LocationMinX, LocationMaxX)
	}

	l.x = x
	return nil
}

func (l *Location) setY(y Coordinate) error {
	if y < LocationMinY || y > LocationMaxY {
		return errs.NewValueIsOutOfRangeError("y", y, LocationMinY, LocationMaxY)
	}

	l.y = y
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
