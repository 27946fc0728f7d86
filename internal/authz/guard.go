// Package authz decides whether a principal may act on a board. Ownership
// is singular and direct: the board's owner and nobody else.
package authz

import (
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
)

// ErrPermissionDenied is returned when the principal does not own the board.
var ErrPermissionDenied = errors.New("permission denied")

// Authorize allows the action iff principalID owns the board. Callers that
// mutate must run this inside the same transaction as the mutation, against
// a board row read under that transaction's locks; checking earlier leaves a
// window in which ownership can change.
func Authorize(principalID uuid.UUID, board *model.Board) error {
	if board.OwnerID != principalID {
		return ErrPermissionDenied
	}
	return nil
}
