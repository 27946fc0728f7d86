package handler

import (
	"net/http"

	"taskboard/internal/authz"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	boardRepo *repository.BoardRepository
	listRepo  *repository.ListRepository
	cardRepo  *repository.CardRepository
}

func NewBoardHandler(boardRepo *repository.BoardRepository, listRepo *repository.ListRepository, cardRepo *repository.CardRepository) *BoardHandler {
	return &BoardHandler{boardRepo: boardRepo, listRepo: listRepo, cardRepo: cardRepo}
}

type CreateBoardRequest struct {
	Title string `json:"title" binding:"required"`
}

type UpdateBoardRequest struct {
	Title string `json:"title" binding:"required"`
}

type BoardResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	OwnerID string `json:"owner_id"`
}

type CardResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Position    float64 `json:"position"`
	ListID      string  `json:"list_id"`
}

type ListResponse struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Position float64        `json:"position"`
	BoardID  string         `json:"board_id"`
	Cards    []CardResponse `json:"cards,omitempty"`
}

type BoardDetailResponse struct {
	BoardResponse
	Lists []ListResponse `json:"lists"`
}

// Create creates a new board owned by the authenticated user
// @Summary Create a board
// @Tags Boards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateBoardRequest true "Board data"
// @Success 201 {object} BoardResponse
// @Router /boards [post]
func (h *BoardHandler) Create(c *gin.Context) {
	ownerID, ok := principalID(c)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board := &model.Board{
		Title:   req.Title,
		OwnerID: ownerID,
	}

	if err := h.boardRepo.Create(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}

	c.JSON(http.StatusCreated, boardResponse(board))
}

// GetAll returns the authenticated user's boards
// @Summary List owned boards
// @Tags Boards
// @Security BearerAuth
// @Produce json
// @Success 200 {array} BoardResponse
// @Router /boards [get]
func (h *BoardHandler) GetAll(c *gin.Context) {
	ownerID, ok := principalID(c)
	if !ok {
		return
	}

	boards, err := h.boardRepo.GetOwned(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}

	out := make([]BoardResponse, 0, len(boards))
	for i := range boards {
		out = append(out, boardResponse(&boards[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetByID returns a board with its live lists and cards
// @Summary Get a board
// @Tags Boards
// @Security BearerAuth
// @Produce json
// @Param id path string true "Board ID"
// @Success 200 {object} BoardDetailResponse
// @Router /boards/{id} [get]
func (h *BoardHandler) GetByID(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	boardID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if err := authz.Authorize(userID, board); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this board"})
		return
	}

	lists, err := h.listRepo.GetByBoardID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lists"})
		return
	}

	detail := BoardDetailResponse{
		BoardResponse: boardResponse(board),
		Lists:         make([]ListResponse, 0, len(lists)),
	}
	for i := range lists {
		cards, err := h.cardRepo.GetByListID(c.Request.Context(), lists[i].ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cards"})
			return
		}
		detail.Lists = append(detail.Lists, listResponse(&lists[i], cards))
	}

	c.JSON(http.StatusOK, detail)
}

// Update renames a board
// @Summary Rename a board
// @Tags Boards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Board ID"
// @Param request body UpdateBoardRequest true "New title"
// @Success 200 {object} BoardResponse
// @Router /boards/{id} [put]
func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	boardID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if err := authz.Authorize(userID, board); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can update the board"})
		return
	}

	board.Title = req.Title
	if err := h.boardRepo.Update(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update board"})
		return
	}

	c.JSON(http.StatusOK, boardResponse(board))
}

// Delete tombstones a board. Its lists and cards stay in storage but the
// board disappears from every default read.
// @Summary Delete a board
// @Tags Boards
// @Security BearerAuth
// @Param id path string true "Board ID"
// @Success 204
// @Router /boards/{id} [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	boardID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if err := authz.Authorize(userID, board); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can delete the board"})
		return
	}

	if err := h.boardRepo.Tombstone(c.Request.Context(), boardID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
		return
	}

	c.Status(http.StatusNoContent)
}

func boardResponse(board *model.Board) BoardResponse {
	return BoardResponse{
		ID:      board.ID.String(),
		Title:   board.Title,
		OwnerID: board.OwnerID.String(),
	}
}

func listResponse(list *model.List, cards []model.Card) ListResponse {
	resp := ListResponse{
		ID:       list.ID.String(),
		Title:    list.Title,
		Position: list.Position,
		BoardID:  list.BoardID.String(),
		Cards:    make([]CardResponse, 0, len(cards)),
	}
	for i := range cards {
		resp.Cards = append(resp.Cards, cardResponse(&cards[i]))
	}
	return resp
}

func cardResponse(card *model.Card) CardResponse {
	return CardResponse{
		ID:          card.ID.String(),
		Title:       card.Title,
		Description: card.Description,
		Position:    card.Position,
		ListID:      card.ListID.String(),
	}
}
