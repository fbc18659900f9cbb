// Package store keeps the room-filter criteria and the latest guest
// selection that the front desk and the guest tablet share.
package store

import (
	"context"

	"hotel-pms/models"
)

// SelectionStore is shared by every API instance; getters return nil
// when nothing has been stored yet.
type SelectionStore interface {
	SaveCriteria(ctx context.Context, c models.RoomFilterCriteria) error
	Criteria(ctx context.Context) (*models.RoomFilterCriteria, error)
	// SaveSelection stores s as the latest selection. Its Timestamp is
	// raised to one past the stored selection's when it would not be
	// strictly greater; the read and the write happen as one step.
	SaveSelection(ctx context.Context, s models.GuestSelection) (*models.GuestSelection, error)
	Selection(ctx context.Context) (*models.GuestSelection, error)
	ClearSelection(ctx context.Context) error
	Close() error
}
