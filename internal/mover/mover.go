// Package mover implements the move protocol for cards: one transaction
// that locks the card row, re-validates the ownership chain and tombstone
// state under that lock, computes a fresh position, and writes the new
// placement. Concurrent moves of the same card serialize on the row lock;
// moves of different cards never block each other.
package mover

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/authz"
	"taskboard/internal/model"
	"taskboard/internal/position"
	"taskboard/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Request identifies the card, its destination list, and the positions of
// the neighbors the card should land between. Open sides use
// position.NoLower / position.NoUpper; a request onto an empty list leaves
// both sides open.
type Request struct {
	CardID uuid.UUID
	ListID uuid.UUID
	Lower  float64
	Upper  float64
}

type Mover struct {
	db       *gorm.DB
	lockWait time.Duration
}

func New(db *gorm.DB, lockWait time.Duration) *Mover {
	return &Mover{db: db, lockWait: lockWait}
}

// Move relocates a card within or across lists. Every check runs inside the
// same transaction as the write, against rows read under the card's row
// lock, so a concurrent move, tombstone, or ownership change is either
// observed here or serialized behind this transaction. Any failure rolls
// the transaction back; storage is untouched on every error path.
//
// Cancellation of ctx before commit aborts the transaction and releases
// the lock.
func (m *Mover) Move(ctx context.Context, principalID uuid.UUID, req Request) (*model.Card, error) {
	var moved *model.Card

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := repository.NewHierarchyStore(tx)
		if err := store.SetLockTimeout(ctx, m.lockWait); err != nil {
			return err
		}

		card, err := store.LockedFetchCard(ctx, req.CardID)
		if err != nil {
			return err
		}

		curList, curBoard, err := store.FetchListWithOwnerChain(ctx, card.ListID)
		if err != nil {
			// A live card pointing at a missing list is broken storage,
			// not a user-facing miss.
			if errors.Is(err, repository.ErrListNotFound) {
				return repository.ErrInvariant
			}
			return err
		}

		if err := authz.Authorize(principalID, curBoard); err != nil {
			return err
		}
		if !curList.Visible() || !curBoard.Visible() {
			return repository.ErrCardNotFound
		}

		destList, destBoard := curList, curBoard
		if req.ListID != card.ListID {
			destList, destBoard, err = store.FetchListWithOwnerChain(ctx, req.ListID)
			if err != nil {
				return err
			}
			if err := authz.Authorize(principalID, destBoard); err != nil {
				return err
			}
			if !destList.Visible() || !destBoard.Visible() {
				return repository.ErrListNotFound
			}
		}

		pos, err := position.Allocate(req.Lower, req.Upper)
		if err != nil {
			return err
		}

		if err := store.WriteCardPlacement(ctx, card.ID, destList.ID, pos); err != nil {
			return err
		}

		card.ListID = destList.ID
		card.Position = pos
		moved = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// RebalanceList rewrites the positions of a list's live cards to evenly
// spaced values, restoring allocation headroom after Move has returned
// position.ErrPrecisionExhausted. The whole sibling set is locked for the
// duration so no concurrent move sees a half-rewritten order.
func (m *Mover) RebalanceList(ctx context.Context, principalID, listID uuid.UUID) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := repository.NewHierarchyStore(tx)
		if err := store.SetLockTimeout(ctx, m.lockWait); err != nil {
			return err
		}

		list, board, err := store.FetchListWithOwnerChain(ctx, listID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(principalID, board); err != nil {
			return err
		}
		if !list.Visible() || !board.Visible() {
			return repository.ErrListNotFound
		}

		cards, err := store.VisibleCardsLocked(ctx, listID)
		if err != nil {
			return err
		}

		spread := position.Spread(len(cards))
		for i, card := range cards {
			if err := store.WriteCardPosition(ctx, card.ID, spread[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
