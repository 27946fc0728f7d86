package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres error codes surfaced by lock acquisition.
const (
	pgLockNotAvailable = "55P03"
	pgDeadlockDetected = "40P01"
)

// HierarchyStore is the transaction-scoped persistence surface of the move
// protocol. Construct one per transaction; every method runs on that
// transaction, so locks taken here are held until it commits or rolls back.
type HierarchyStore struct {
	tx *gorm.DB
}

func NewHierarchyStore(tx *gorm.DB) *HierarchyStore {
	return &HierarchyStore{tx: tx}
}

// SetLockTimeout bounds every subsequent lock wait in this transaction.
// Without it a contended row would block the request indefinitely.
func (s *HierarchyStore) SetLockTimeout(ctx context.Context, wait time.Duration) error {
	// SET LOCAL does not take bind parameters.
	return s.tx.WithContext(ctx).
		Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", wait.Milliseconds())).Error
}

// LockedFetchCard reads the card under an exclusive row lock. A concurrent
// transaction holding the same row blocks this read until it ends; waiting
// past the lock timeout surfaces ErrLockTimeout instead of hanging.
// Tombstoned cards are reported as not found.
func (s *HierarchyStore) LockedFetchCard(ctx context.Context, cardID uuid.UUID) (*model.Card, error) {
	var card model.Card
	err := s.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&card, "id = ?", cardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, translateLockError(err)
	}
	if !card.Visible() {
		return nil, ErrCardNotFound
	}
	return &card, nil
}

// FetchListWithOwnerChain reads the list and its board so the caller can
// re-check ownership and tombstones under the current transaction. Both
// rows are read under a share lock, so a concurrent tombstone or ownership
// change blocks until this transaction ends instead of committing between
// validation and the placement write. The rows are returned regardless of
// tombstone state; visibility is the caller's check. A list whose board row
// is missing entirely is a broken foreign key and comes back as
// ErrInvariant.
func (s *HierarchyStore) FetchListWithOwnerChain(ctx context.Context, listID uuid.UUID) (*model.List, *model.Board, error) {
	var list model.List
	err := s.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		First(&list, "id = ?", listID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrListNotFound
	}
	if err != nil {
		return nil, nil, translateLockError(err)
	}

	var board model.Board
	err = s.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		First(&board, "id = ?", list.BoardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("list %s references board %s: %w", list.ID, list.BoardID, ErrInvariant)
	}
	if err != nil {
		return nil, nil, translateLockError(err)
	}
	return &list, &board, nil
}

// WriteCardPlacement atomically updates the card's list and position, and
// nothing else.
func (s *HierarchyStore) WriteCardPlacement(ctx context.Context, cardID, listID uuid.UUID, pos float64) error {
	result := s.tx.WithContext(ctx).Model(&model.Card{}).
		Where("id = ?", cardID).
		Updates(map[string]interface{}{"list_id": listID, "position": pos})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleReference
	}
	return nil
}

// VisibleCardsLocked reads the list's live cards in sibling order, locking
// each row for the rest of the transaction. Used by rebalance, which must
// keep the whole sibling set stable while rewriting positions.
func (s *HierarchyStore) VisibleCardsLocked(ctx context.Context, listID uuid.UUID) ([]model.Card, error) {
	var cards []model.Card
	err := s.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(visible, siblingOrder).
		Where("list_id = ?", listID).
		Find(&cards).Error
	if err != nil {
		return nil, translateLockError(err)
	}
	return cards, nil
}

// WriteCardPosition updates only the position column.
func (s *HierarchyStore) WriteCardPosition(ctx context.Context, cardID uuid.UUID, pos float64) error {
	result := s.tx.WithContext(ctx).Model(&model.Card{}).
		Where("id = ?", cardID).
		Update("position", pos)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleReference
	}
	return nil
}

// translateLockError maps Postgres lock failures onto the store taxonomy.
// Both a timed-out wait and a broken deadlock mean the same thing to the
// caller: the move lost a race and may be retried.
func translateLockError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgDeadlockDetected:
			return ErrLockTimeout
		}
	}
	return err
}
