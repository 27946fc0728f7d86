package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListRepository struct {
	db *gorm.DB
}

func NewListRepository(db *gorm.DB) *ListRepository {
	return &ListRepository{db: db}
}

func (r *ListRepository) Create(ctx context.Context, list *model.List) error {
	return r.db.WithContext(ctx).Create(list).Error
}

// GetByID returns a live list, or nil if it is absent or tombstoned.
func (r *ListRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.List, error) {
	var list model.List
	err := r.db.WithContext(ctx).Scopes(visible).Where("id = ?", id).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// GetByBoardID returns the board's live lists in sibling order.
func (r *ListRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.List, error) {
	var lists []model.List
	err := r.db.WithContext(ctx).Scopes(visible, siblingOrder).
		Where("board_id = ?", boardID).
		Find(&lists).Error
	return lists, err
}

// MaxPosition returns the largest position among the board's live lists, or
// nil when the board has none. Used to append at the end of the order.
func (r *ListRepository) MaxPosition(ctx context.Context, boardID uuid.UUID) (*float64, error) {
	var max *float64
	err := r.db.WithContext(ctx).Model(&model.List{}).Scopes(visible).
		Select("MAX(position)").
		Where("board_id = ?", boardID).
		Scan(&max).Error
	return max, err
}

func (r *ListRepository) Update(ctx context.Context, list *model.List) error {
	result := r.db.WithContext(ctx).Save(list)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListNotFound
	}
	return nil
}

// Tombstone soft-deletes the list. Its cards stay untouched; card reads
// apply their own visibility filter.
func (r *ListRepository) Tombstone(ctx context.Context, id uuid.UUID) error {
	var list model.List
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrListNotFound
	}
	if err != nil {
		return err
	}
	if !list.Visible() {
		return nil
	}
	list.Tombstone(time.Now().UTC())
	return r.db.WithContext(ctx).Model(&list).
		Select("deleted", "deleted_at").
		Updates(map[string]interface{}{"deleted": true, "deleted_at": list.DeletedAt}).Error
}
