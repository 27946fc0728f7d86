package handler

import (
	"net/http"

	"taskboard/internal/authz"
	"taskboard/internal/model"
	"taskboard/internal/position"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ListHandler struct {
	listRepo  *repository.ListRepository
	boardRepo *repository.BoardRepository
}

func NewListHandler(listRepo *repository.ListRepository, boardRepo *repository.BoardRepository) *ListHandler {
	return &ListHandler{listRepo: listRepo, boardRepo: boardRepo}
}

type CreateListRequest struct {
	Title   string `json:"title" binding:"required"`
	BoardID string `json:"board_id" binding:"required,uuid"`
}

type UpdateListRequest struct {
	Title    *string  `json:"title"`
	Position *float64 `json:"position"`
}

// ownedBoard loads the board and checks the caller owns it. Responds on
// failure and returns nil.
func (h *ListHandler) ownedBoard(c *gin.Context, userID, boardID uuid.UUID) *model.Board {
	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return nil
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return nil
	}
	if err := authz.Authorize(userID, board); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this board"})
		return nil
	}
	return board
}

// Create adds a list at the end of the board's order
// @Summary Create a list
// @Tags Lists
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateListRequest true "List data"
// @Success 201 {object} ListResponse
// @Router /lists [post]
func (h *ListHandler) Create(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}

	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	boardID, err := uuid.Parse(req.BoardID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	if h.ownedBoard(c, userID, boardID) == nil {
		return
	}

	// Append after the current maximum position.
	lower := position.NoLower
	max, err := h.listRepo.MaxPosition(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lists"})
		return
	}
	if max != nil {
		lower = *max
	}
	pos, err := position.Allocate(lower, position.NoUpper)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "List order needs rebalancing"})
		return
	}

	list := &model.List{
		Title:    req.Title,
		BoardID:  boardID,
		Position: pos,
	}

	if err := h.listRepo.Create(c.Request.Context(), list); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create list"})
		return
	}

	c.JSON(http.StatusCreated, listResponse(list, nil))
}

// GetByBoardID returns the board's live lists in order
// @Summary List lists of a board
// @Tags Lists
// @Security BearerAuth
// @Produce json
// @Param id path string true "Board ID"
// @Success 200 {array} ListResponse
// @Router /boards/{id}/lists [get]
func (h *ListHandler) GetByBoardID(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	boardID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if h.ownedBoard(c, userID, boardID) == nil {
		return
	}

	lists, err := h.listRepo.GetByBoardID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lists"})
		return
	}

	out := make([]ListResponse, 0, len(lists))
	for i := range lists {
		out = append(out, listResponse(&lists[i], nil))
	}
	c.JSON(http.StatusOK, out)
}

// Update renames or repositions a list
// @Summary Update a list
// @Tags Lists
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "List ID"
// @Param request body UpdateListRequest true "Changes"
// @Success 200 {object} ListResponse
// @Router /lists/{id} [put]
func (h *ListHandler) Update(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	listID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	list, err := h.listRepo.GetByID(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve list"})
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	if h.ownedBoard(c, userID, list.BoardID) == nil {
		return
	}

	if req.Title != nil {
		list.Title = *req.Title
	}
	if req.Position != nil {
		list.Position = *req.Position
	}

	if err := h.listRepo.Update(c.Request.Context(), list); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update list"})
		return
	}

	c.JSON(http.StatusOK, listResponse(list, nil))
}

// Delete tombstones a list. Its cards stay in storage; card reads filter
// independently.
// @Summary Delete a list
// @Tags Lists
// @Security BearerAuth
// @Param id path string true "List ID"
// @Success 204
// @Router /lists/{id} [delete]
func (h *ListHandler) Delete(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	listID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	list, err := h.listRepo.GetByID(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve list"})
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	if h.ownedBoard(c, userID, list.BoardID) == nil {
		return
	}

	if err := h.listRepo.Tombstone(c.Request.Context(), listID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete list"})
		return
	}

	c.Status(http.StatusNoContent)
}
