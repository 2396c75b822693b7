package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"asrama/internal/domain"
)

type RoomRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error)
	ListOccupancyByDorm(ctx context.Context, dormID uuid.UUID) ([]domain.RoomOccupancy, error)
}

type roomRepository struct {
	db *sqlx.DB
}

func NewRoomRepository(db *sqlx.DB) RoomRepository {
	return &roomRepository{db: db}
}

const roomColumns = `r.id, r.block_id, b.dorm_id, r.number, r.capacity, r.gender, r.created_at`

func (r *roomRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	var room domain.Room
	query := `
		SELECT ` + roomColumns + `
		FROM rooms r
		INNER JOIN blocks b ON b.id = r.block_id
		WHERE r.id = $1`

	err := r.db.GetContext(ctx, &room, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) ListOccupancyByDorm(ctx context.Context, dormID uuid.UUID) ([]domain.RoomOccupancy, error) {
	query := `
		SELECT r.id AS room_id, r.number, r.capacity,
			COUNT(a.id) FILTER (WHERE a.active) AS occupied
		FROM rooms r
		INNER JOIN blocks b ON b.id = r.block_id
		LEFT JOIN assignments a ON a.room_id = r.id
		WHERE b.dorm_id = $1
		GROUP BY r.id, r.number, r.capacity
		ORDER BY r.number`

	var rooms []domain.RoomOccupancy
	if err := r.db.SelectContext(ctx, &rooms, query, dormID); err != nil {
		return nil, err
	}
	for i := range rooms {
		rooms[i].Available = rooms[i].Capacity - rooms[i].Occupied
	}
	return rooms, nil
}
