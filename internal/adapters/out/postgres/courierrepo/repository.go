package courierrepo

import (
	"context"
	"errors"
	"fmt"

	"courier-dispatch/internal/core/domain/model/courier"
	"courier-dispatch/internal/core/domain/model/kernel"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	occupiedPlaceExists = "EXISTS (SELECT 1 FROM storage_places sp " +
		"WHERE sp.courier_id = couriers.id AND sp.order_id IS NOT NULL)"
)

// GormCourierRepository implements ports.CourierRepository on GORM.
type GormCourierRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormCourierRepository(db *gorm.DB, tracker aggregateTracker) *GormCourierRepository {
	return &GormCourierRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormCourierRepository) Add(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return fmt.Errorf("insert courier %s: %w", aggregate.ID(), err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the courier row and upserts its storage places, so places added
// since the courier was loaded are inserted. A courier that was never added is
// reported as gorm.ErrRecordNotFound and nothing is written.
func (r *GormCourierRepository) Update(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&CourierDTO{}).
			Where("id = ?", dto.ID).
			Updates(map[string]any{
				"name":       dto.Name,
				"speed":      dto.Speed,
				"location_x": dto.Location.X,
				"location_y": dto.Location.Y,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if len(dto.StoragePlaces) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"position", "name", "total_volume", "order_id"}),
		}).Create(&dto.StoragePlaces).Error
	})
	if err != nil {
		return fmt.Errorf("update courier %s: %w", aggregate.ID(), err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, bool, error) {
	return r.get(r.withPlaces(ctx), id)
}

// GetForUpdate takes a row lock on the courier. Outside a transaction the lock
// is released as soon as the statement ends.
func (r *GormCourierRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*courier.Courier, bool, error) {
	return r.get(r.withPlaces(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormCourierRepository) get(query *gorm.DB, id kernel.UUID) (*courier.Courier, bool, error) {
	if err := id.Validate(); err != nil {
		return nil, false, err
	}

	var dto CourierDTO
	err := query.First(&dto, "couriers.id = ?", id.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	c, err := toDomain(dto)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// GetAllFree returns couriers with every storage place empty, ordered by name then id.
func (r *GormCourierRepository) GetAllFree(ctx context.Context) ([]*courier.Courier, error) {
	return r.find(r.withPlaces(ctx).Where("NOT " + occupiedPlaceExists))
}

// GetAllBusy returns couriers carrying at least one order.
func (r *GormCourierRepository) GetAllBusy(ctx context.Context) ([]*courier.Courier, error) {
	return r.find(r.withPlaces(ctx).Where(occupiedPlaceExists))
}

func (r *GormCourierRepository) GetAll(ctx context.Context) ([]*courier.Courier, error) {
	return r.find(r.withPlaces(ctx))
}

func (r *GormCourierRepository) withPlaces(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&CourierDTO{}).
		Preload("StoragePlaces", func(db *gorm.DB) *gorm.DB {
			return db.Order("storage_places.position, storage_places.id")
		})
}

func (r *GormCourierRepository) find(query *gorm.DB) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	if err := query.Order("couriers.name, couriers.id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	couriers := make([]*courier.Courier, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, c)
	}

	return couriers, nil
}
