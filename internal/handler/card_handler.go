package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"taskboard/internal/authz"
	"taskboard/internal/model"
	"taskboard/internal/mover"
	"taskboard/internal/position"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Store interfaces so the move path can be tested with mocks.
type CardStore interface {
	Create(ctx context.Context, card *model.Card) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Card, error)
	GetByListID(ctx context.Context, listID uuid.UUID) ([]model.Card, error)
	MaxPosition(ctx context.Context, listID uuid.UUID) (*float64, error)
	Update(ctx context.Context, card *model.Card) error
	Tombstone(ctx context.Context, id uuid.UUID) error
}

type ListStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.List, error)
}

type BoardStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
}

type CardMover interface {
	Move(ctx context.Context, principalID uuid.UUID, req mover.Request) (*model.Card, error)
	RebalanceList(ctx context.Context, principalID, listID uuid.UUID) error
}

var (
	_ CardStore  = (*repository.CardRepository)(nil)
	_ ListStore  = (*repository.ListRepository)(nil)
	_ BoardStore = (*repository.BoardRepository)(nil)
	_ CardMover  = (*mover.Mover)(nil)
)

type CardHandler struct {
	cardRepo  CardStore
	listRepo  ListStore
	boardRepo BoardStore
	mover     CardMover
}

func NewCardHandler(cardRepo CardStore, listRepo ListStore, boardRepo BoardStore, m CardMover) *CardHandler {
	return &CardHandler{
		cardRepo:  cardRepo,
		listRepo:  listRepo,
		boardRepo: boardRepo,
		mover:     m,
	}
}

type CreateCardRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ListID      string `json:"list_id" binding:"required,uuid"`
}

type UpdateCardRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// MoveCardRequest names the destination and where the card should land
// there: either a target index among the destination's visible cards, or
// explicit neighbor positions. With neither, the card lands as the only
// order constraint allows (both sides open).
type MoveCardRequest struct {
	ListID string   `json:"list_id" binding:"required,uuid"`
	Index  *int     `json:"index"`
	Lower  *float64 `json:"lower"`
	Upper  *float64 `json:"upper"`
}

// ownedList resolves the list and checks the caller owns its board.
// Responds on failure and returns nil.
func (h *CardHandler) ownedList(c *gin.Context, userID, listID uuid.UUID) *model.List {
	list, err := h.listRepo.GetByID(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve list"})
		return nil
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return nil
	}
	board, err := h.boardRepo.GetByID(c.Request.Context(), list.BoardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return nil
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return nil
	}
	if err := authz.Authorize(userID, board); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this board"})
		return nil
	}
	return list
}

// Create adds a card at the end of the list
// @Summary Create a card
// @Tags Cards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateCardRequest true "Card data"
// @Success 201 {object} CardResponse
// @Router /cards [post]
func (h *CardHandler) Create(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	listID, err := uuid.Parse(req.ListID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID format"})
		return
	}

	if h.ownedList(c, userID, listID) == nil {
		return
	}

	lower := position.NoLower
	max, err := h.cardRepo.MaxPosition(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cards"})
		return
	}
	if max != nil {
		lower = *max
	}
	pos, err := position.Allocate(lower, position.NoUpper)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Card order needs rebalancing"})
		return
	}

	card := &model.Card{
		Title:       req.Title,
		Description: req.Description,
		ListID:      listID,
		Position:    pos,
	}

	if err := h.cardRepo.Create(c.Request.Context(), card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create card"})
		return
	}

	c.JSON(http.StatusCreated, cardResponse(card))
}

// GetByID returns a single card
// @Summary Get a card
// @Tags Cards
// @Security BearerAuth
// @Produce json
// @Param id path string true "Card ID"
// @Success 200 {object} CardResponse
// @Router /cards/{id} [get]
func (h *CardHandler) GetByID(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	cardID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	card, err := h.cardRepo.GetByID(c.Request.Context(), cardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve card"})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}

	if h.ownedList(c, userID, card.ListID) == nil {
		return
	}

	c.JSON(http.StatusOK, cardResponse(card))
}

// GetByListID returns the list's live cards in order
// @Summary List cards of a list
// @Tags Cards
// @Security BearerAuth
// @Produce json
// @Param id path string true "List ID"
// @Success 200 {array} CardResponse
// @Router /lists/{id}/cards [get]
func (h *CardHandler) GetByListID(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	listID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if h.ownedList(c, userID, listID) == nil {
		return
	}

	cards, err := h.cardRepo.GetByListID(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cards"})
		return
	}

	out := make([]CardResponse, 0, len(cards))
	for i := range cards {
		out = append(out, cardResponse(&cards[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Update changes a card's title or description
// @Summary Update a card
// @Tags Cards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Card ID"
// @Param request body UpdateCardRequest true "Changes"
// @Success 200 {object} CardResponse
// @Router /cards/{id} [put]
func (h *CardHandler) Update(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	cardID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	card, err := h.cardRepo.GetByID(c.Request.Context(), cardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve card"})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}

	if h.ownedList(c, userID, card.ListID) == nil {
		return
	}

	if req.Title != nil {
		card.Title = *req.Title
	}
	if req.Description != nil {
		card.Description = *req.Description
	}

	if err := h.cardRepo.Update(c.Request.Context(), card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update card"})
		return
	}

	c.JSON(http.StatusOK, cardResponse(card))
}

// Delete tombstones a card
// @Summary Delete a card
// @Tags Cards
// @Security BearerAuth
// @Param id path string true "Card ID"
// @Success 204
// @Router /cards/{id} [delete]
func (h *CardHandler) Delete(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	cardID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	card, err := h.cardRepo.GetByID(c.Request.Context(), cardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve card"})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}

	if h.ownedList(c, userID, card.ListID) == nil {
		return
	}

	if err := h.cardRepo.Tombstone(c.Request.Context(), cardID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete card"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Move relocates a card within or across lists
// @Summary Move a card
// @Tags Cards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Card ID"
// @Param request body MoveCardRequest true "Destination"
// @Success 200 {object} CardResponse
// @Router /cards/{id}/move [post]
func (h *CardHandler) Move(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	cardID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req MoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	destListID, err := uuid.Parse(req.ListID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID format"})
		return
	}

	lower, upper, err := h.resolveNeighbors(c.Request.Context(), &req, destListID, cardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cards"})
		return
	}

	card, err := h.mover.Move(c.Request.Context(), userID, mover.Request{
		CardID: cardID,
		ListID: destListID,
		Lower:  lower,
		Upper:  upper,
	})

	// No room between the requested neighbors: rebalance the destination
	// and retry the move once against the respaced order.
	if errors.Is(err, position.ErrPrecisionExhausted) {
		if rbErr := h.mover.RebalanceList(c.Request.Context(), userID, destListID); rbErr != nil {
			respondMoveError(c, rbErr)
			return
		}
		lower, upper, err = h.resolveNeighbors(c.Request.Context(), &req, destListID, cardID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cards"})
			return
		}
		card, err = h.mover.Move(c.Request.Context(), userID, mover.Request{
			CardID: cardID,
			ListID: destListID,
			Lower:  lower,
			Upper:  upper,
		})
	}
	if err != nil {
		respondMoveError(c, err)
		return
	}

	c.JSON(http.StatusOK, cardResponse(card))
}

// resolveNeighbors translates the request's placement into neighbor
// positions. An index counts through the destination's visible cards with
// the moved card itself excluded, so "index 0 in its own list" means the
// top regardless of where the card sits now.
func (h *CardHandler) resolveNeighbors(ctx context.Context, req *MoveCardRequest, destListID, cardID uuid.UUID) (float64, float64, error) {
	if req.Index == nil {
		lower, upper := position.NoLower, position.NoUpper
		if req.Lower != nil {
			lower = *req.Lower
		}
		if req.Upper != nil {
			upper = *req.Upper
		}
		return lower, upper, nil
	}

	cards, err := h.cardRepo.GetByListID(ctx, destListID)
	if err != nil {
		return 0, 0, err
	}

	siblings := make([]model.Card, 0, len(cards))
	for _, sibling := range cards {
		if sibling.ID != cardID {
			siblings = append(siblings, sibling)
		}
	}

	idx := *req.Index
	if idx < 0 {
		idx = 0
	}
	if idx > len(siblings) {
		idx = len(siblings)
	}

	lower, upper := position.NoLower, position.NoUpper
	if idx > 0 {
		lower = siblings[idx-1].Position
	}
	if idx < len(siblings) {
		upper = siblings[idx].Position
	}
	return lower, upper, nil
}

func respondMoveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrCardNotFound),
		errors.Is(err, repository.ErrListNotFound),
		errors.Is(err, repository.ErrBoardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, authz.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this board"})
	case errors.Is(err, repository.ErrLockTimeout),
		errors.Is(err, repository.ErrStaleReference),
		errors.Is(err, position.ErrPrecisionExhausted),
		errors.Is(err, position.ErrInvalidNeighbors):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrInvariant):
		log.Printf("🚨 invariant violation during card move: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move card"})
	}
}
