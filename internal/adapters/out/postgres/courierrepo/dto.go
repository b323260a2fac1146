// Package courierrepo persists the courier aggregate: one row per courier and
// one row per storage place.
package courierrepo

import (
	"courier-dispatch/internal/core/domain/model/courier"
	"courier-dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO is the couriers table row.
type CourierDTO struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Name          string            `gorm:"type:varchar(255);not null;index"`
	Speed         int               `gorm:"type:int;not null"`
	Location      LocationDTO       `gorm:"embedded;embeddedPrefix:location_"`
	StoragePlaces []StoragePlaceDTO `gorm:"foreignKey:CourierID;constraint:OnDelete:CASCADE"`
}

func (CourierDTO) TableName() string {
	return "couriers"
}

type LocationDTO struct {
	X kernel.Coordinate `gorm:"type:smallint;not null"`
	Y kernel.Coordinate `gorm:"type:smallint;not null"`
}

// StoragePlaceDTO is the storage_places table row. Position keeps the order in
// which places were added, since orders are placed into the first place that fits.
type StoragePlaceDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CourierID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Position    int        `gorm:"type:int;not null;default:0"`
	Name        string     `gorm:"type:varchar(255);not null"`
	TotalVolume int        `gorm:"type:int;not null"`
	OrderID     *uuid.UUID `gorm:"type:uuid;index"`
}

func (StoragePlaceDTO) TableName() string {
	return "storage_places"
}

func fromDomain(aggregate *courier.Courier) CourierDTO {
	courierID := aggregate.ID().Bytes()
	places := aggregate.StoragePlaces()
	storagePlaces := make([]StoragePlaceDTO, 0, len(places))

	for i, sp := range places {
		var orderID *uuid.UUID
		if id := sp.OrderID(); id != nil {
			raw := id.Bytes()
			orderID = &raw
		}

		storagePlaces = append(storagePlaces, StoragePlaceDTO{
			ID:          sp.ID().Bytes(),
			CourierID:   courierID,
			Position:    i,
			Name:        sp.Name(),
			TotalVolume: sp.TotalVolume(),
			OrderID:     orderID,
		})
	}

	return CourierDTO{
		ID:    courierID,
		Name:  aggregate.Name(),
		Speed: aggregate.Speed(),
		Location: LocationDTO{
			X: aggregate.Location().X(),
			Y: aggregate.Location().Y(),
		},
		StoragePlaces: storagePlaces,
	}
}

// toDomain expects StoragePlaces to be sorted by Position.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	loc, err := kernel.NewLocation(dto.Location.X, dto.Location.Y)
	if err != nil {
		return nil, err
	}

	storagePlaces := make([]*courier.StoragePlace, 0, len(dto.StoragePlaces))
	for _, spDto := range dto.StoragePlaces {
		sp, spErr := storagePlaceToDomain(spDto)
		if spErr != nil {
			return nil, spErr
		}
		storagePlaces = append(storagePlaces, sp)
	}

	return courier.RestoreCourier(id, dto.Name, dto.Speed, loc, storagePlaces)
}

func storagePlaceToDomain(dto StoragePlaceDTO) (*courier.StoragePlace, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var orderID *kernel.UUID
	if dto.OrderID != nil {
		oID, orderErr := kernel.UUIDFromBytes((*dto.OrderID)[:])
		if orderErr != nil {
			return nil, orderErr
		}
		orderID = &oID
	}

	return courier.RestoreStoragePlace(id, dto.Name, dto.TotalVolume, orderID)
}
