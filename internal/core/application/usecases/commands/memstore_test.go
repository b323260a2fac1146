package commands_test

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"courier-dispatch/internal/core/application/usecases/commands"
	"courier-dispatch/internal/core/domain/model/courier"
	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/core/domain/model/order"
	"courier-dispatch/internal/core/ports"
)

var errRowIsNotFound = errors.New("row is not found")

type placeRow struct {
	id      kernel.UUID
	name    string
	volume  int
	orderID *kernel.UUID
}

type courierRow struct {
	id     kernel.UUID
	name   string
	speed  int
	at     kernel.Location
	places []placeRow
}

type orderRow struct {
	id        kernel.UUID
	courierID *kernel.UUID
	at        kernel.Location
	volume    int
	status    order.Status
}

// memStore keeps rows, not aggregates: every read builds fresh copies, the way
// two separate database reads would. Writes made inside a unit of work become
// visible on Commit only.
type memStore struct {
	couriers     map[kernel.UUID]courierRow
	courierOrder []kernel.UUID
	orders       map[kernel.UUID]orderRow
	orderOrder   []kernel.UUID

	// afterCommit runs once, after the next successful Commit.
	afterCommit func()
}

func newMemStore() *memStore {
	return &memStore{
		couriers: make(map[kernel.UUID]courierRow),
		orders:   make(map[kernel.UUID]orderRow),
	}
}

func (s *memStore) Create() commands.UoW {
	return &memUoW{store: s}
}

func (s *memStore) putCourier(c *courier.Courier) {
	if _, ok := s.couriers[c.ID()]; !ok {
		s.courierOrder = append(s.courierOrder, c.ID())
	}
	s.couriers[c.ID()] = toCourierRow(c)
}

func (s *memStore) putOrder(o *order.Order) {
	if _, ok := s.orders[o.ID()]; !ok {
		s.orderOrder = append(s.orderOrder, o.ID())
	}
	s.orders[o.ID()] = toOrderRow(o)
}

func (s *memStore) courier(id kernel.UUID) (*courier.Courier, bool, error) {
	row, ok := s.couriers[id]
	if !ok {
		return nil, false, nil
	}
	c, err := row.restore()
	return c, err == nil, err
}

func (s *memStore) order(id kernel.UUID) (*order.Order, bool, error) {
	row, ok := s.orders[id]
	if !ok {
		return nil, false, nil
	}
	o, err := row.restore()
	return o, err == nil, err
}

func toCourierRow(c *courier.Courier) courierRow {
	row := courierRow{id: c.ID(), name: c.Name(), speed: c.Speed(), at: c.Location()}
	for _, sp := range c.StoragePlaces() {
		var orderID *kernel.UUID
		if id := sp.OrderID(); id != nil {
			copied := *id
			orderID = &copied
		}
		row.places = append(row.places, placeRow{id: sp.ID(), name: sp.Name(), volume: sp.TotalVolume(), orderID: orderID})
	}
	return row
}

func (r courierRow) restore() (*courier.Courier, error) {
	places := make([]*courier.StoragePlace, 0, len(r.places))
	for _, p := range r.places {
		sp, err := courier.RestoreStoragePlace(p.id, p.name, p.volume, p.orderID)
		if err != nil {
			return nil, err
		}
		places = append(places, sp)
	}
	return courier.RestoreCourier(r.id, r.name, r.speed, r.at, places)
}

func (r courierRow) busy() bool {
	return slices.ContainsFunc(r.places, func(p placeRow) bool { return p.orderID != nil })
}

func toOrderRow(o *order.Order) orderRow {
	var courierID *kernel.UUID
	if id := o.CourierID(); id != nil {
		copied := *id
		courierID = &copied
	}
	return orderRow{id: o.ID(), courierID: courierID, at: o.Location(), volume: o.Volume(), status: o.Status()}
}

func (r orderRow) restore() (*order.Order, error) {
	return order.RestoreOrder(r.id, r.courierID, r.at, r.volume, r.status)
}

type memUoW struct {
	store    *memStore
	open     bool
	couriers []courierRow
	orders   []orderRow
}

func (u *memUoW) Begin(context.Context) error {
	u.open = true
	return nil
}

func (u *memUoW) Commit(context.Context) error {
	if !u.open {
		return errors.New("no transaction")
	}
	for _, row := range u.couriers {
		u.store.couriers[row.id] = row
	}
	for _, row := range u.orders {
		u.store.orders[row.id] = row
	}
	u.reset()

	if hook := u.store.afterCommit; hook != nil {
		u.store.afterCommit = nil
		hook()
	}
	return nil
}

func (u *memUoW) Rollback(context.Context) error {
	u.reset()
	return nil
}

func (u *memUoW) reset() {
	u.open = false
	u.couriers = nil
	u.orders = nil
}

func (u *memUoW) CourierRepository() ports.CourierRepository {
	return memCourierRepository{uow: u}
}

func (u *memUoW) OrderRepository() ports.OrderRepository {
	return memOrderRepository{uow: u}
}

type memCourierRepository struct {
	uow *memUoW
}

func (r memCourierRepository) Add(_ context.Context, c *courier.Courier) error {
	r.uow.store.putCourier(c)
	return nil
}

func (r memCourierRepository) Update(_ context.Context, c *courier.Courier) error {
	if _, ok := r.uow.store.couriers[c.ID()]; !ok {
		return fmt.Errorf("update courier %s: %w", c.ID(), errRowIsNotFound)
	}
	if !r.uow.open {
		r.uow.store.putCourier(c)
		return nil
	}
	r.uow.couriers = append(r.uow.couriers, toCourierRow(c))
	return nil
}

func (r memCourierRepository) Get(_ context.Context, id kernel.UUID) (*courier.Courier, bool, error) {
	return r.uow.store.courier(id)
}

func (r memCourierRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*courier.Courier, bool, error) {
	return r.Get(ctx, id)
}

func (r memCourierRepository) GetAllFree(context.Context) ([]*courier.Courier, error) {
	return r.filter(func(row courierRow) bool { return !row.busy() })
}

func (r memCourierRepository) GetAllBusy(context.Context) ([]*courier.Courier, error) {
	return r.filter(courierRow.busy)
}

func (r memCourierRepository) GetAll(context.Context) ([]*courier.Courier, error) {
	return r.filter(func(courierRow) bool { return true })
}

func (r memCourierRepository) filter(keep func(courierRow) bool) ([]*courier.Courier, error) {
	var out []*courier.Courier
	for _, id := range r.uow.store.courierOrder {
		row := r.uow.store.couriers[id]
		if !keep(row) {
			continue
		}
		c, err := row.restore()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

type memOrderRepository struct {
	uow *memUoW
}

func (r memOrderRepository) Add(_ context.Context, o *order.Order) error {
	r.uow.store.putOrder(o)
	return nil
}

func (r memOrderRepository) Update(_ context.Context, o *order.Order) error {
	if _, ok := r.uow.store.orders[o.ID()]; !ok {
		return fmt.Errorf("update order %s: %w", o.ID(), errRowIsNotFound)
	}
	if !r.uow.open {
		r.uow.store.putOrder(o)
		return nil
	}
	r.uow.orders = append(r.uow.orders, toOrderRow(o))
	return nil
}

func (r memOrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, bool, error) {
	return r.uow.store.order(id)
}

func (r memOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, bool, error) {
	return r.Get(ctx, id)
}

func (r memOrderRepository) GetOldestCreated(_ context.Context, limit int) ([]*order.Order, error) {
	var out []*order.Order
	for _, id := range r.uow.store.orderOrder {
		if limit > 0 && len(out) == limit {
			break
		}
		row := r.uow.store.orders[id]
		if row.status != order.Created {
			continue
		}
		o, err := row.restore()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
