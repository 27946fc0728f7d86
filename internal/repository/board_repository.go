package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

// GetOwned returns the principal's live boards.
func (r *BoardRepository) GetOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).Scopes(visible).
		Where("owner_id = ?", ownerID).
		Order("created_at asc").
		Find(&boards).Error
	return boards, err
}

// GetByID returns a live board, or nil if it is absent or tombstoned.
func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	err := r.db.WithContext(ctx).Scopes(visible).Where("id = ?", id).First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *BoardRepository) Update(ctx context.Context, board *model.Board) error {
	result := r.db.WithContext(ctx).Save(board)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBoardNotFound
	}
	return nil
}

// Tombstone soft-deletes the board. Repeating it is a no-op so the original
// deletion time is preserved.
func (r *BoardRepository) Tombstone(ctx context.Context, id uuid.UUID) error {
	var board model.Board
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBoardNotFound
	}
	if err != nil {
		return err
	}
	if !board.Visible() {
		return nil
	}
	board.Tombstone(time.Now().UTC())
	return r.db.WithContext(ctx).Model(&board).
		Select("deleted", "deleted_at").
		Updates(map[string]interface{}{"deleted": true, "deleted_at": board.DeletedAt}).Error
}
