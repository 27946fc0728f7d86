package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Create(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// GetByID returns a live card, or nil if it is absent or tombstoned.
func (r *CardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	var card model.Card
	err := r.db.WithContext(ctx).Scopes(visible).Where("id = ?", id).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// GetByListID returns the list's live cards in sibling order.
func (r *CardRepository) GetByListID(ctx context.Context, listID uuid.UUID) ([]model.Card, error) {
	var cards []model.Card
	err := r.db.WithContext(ctx).Scopes(visible, siblingOrder).
		Where("list_id = ?", listID).
		Find(&cards).Error
	return cards, err
}

// MaxPosition returns the largest position among the list's live cards, or
// nil when the list is empty.
func (r *CardRepository) MaxPosition(ctx context.Context, listID uuid.UUID) (*float64, error) {
	var max *float64
	err := r.db.WithContext(ctx).Model(&model.Card{}).Scopes(visible).
		Select("MAX(position)").
		Where("list_id = ?", listID).
		Scan(&max).Error
	return max, err
}

// Update persists title and description changes. Placement changes go
// through the mover, never through here.
func (r *CardRepository) Update(ctx context.Context, card *model.Card) error {
	result := r.db.WithContext(ctx).Model(card).
		Select("title", "description").
		Updates(map[string]interface{}{"title": card.Title, "description": card.Description})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

// Tombstone soft-deletes the card; repeating it is a no-op.
func (r *CardRepository) Tombstone(ctx context.Context, id uuid.UUID) error {
	var card model.Card
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCardNotFound
	}
	if err != nil {
		return err
	}
	if !card.Visible() {
		return nil
	}
	card.Tombstone(time.Now().UTC())
	return r.db.WithContext(ctx).Model(&card).
		Select("deleted", "deleted_at").
		Updates(map[string]interface{}{"deleted": true, "deleted_at": card.DeletedAt}).Error
}
