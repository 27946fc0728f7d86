package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskboard/internal/authz"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/mover"
	"taskboard/internal/position"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCardStore struct {
	mock.Mock
}

func (m *MockCardStore) Create(ctx context.Context, card *model.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	args := m.Called(ctx, id)
	card := args.Get(0)
	if card == nil {
		return nil, args.Error(1)
	}
	return card.(*model.Card), args.Error(1)
}

func (m *MockCardStore) GetByListID(ctx context.Context, listID uuid.UUID) ([]model.Card, error) {
	args := m.Called(ctx, listID)
	cards := args.Get(0)
	if cards == nil {
		return nil, args.Error(1)
	}
	return cards.([]model.Card), args.Error(1)
}

func (m *MockCardStore) MaxPosition(ctx context.Context, listID uuid.UUID) (*float64, error) {
	args := m.Called(ctx, listID)
	max := args.Get(0)
	if max == nil {
		return nil, args.Error(1)
	}
	return max.(*float64), args.Error(1)
}

func (m *MockCardStore) Update(ctx context.Context, card *model.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardStore) Tombstone(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockListStore struct {
	mock.Mock
}

func (m *MockListStore) GetByID(ctx context.Context, id uuid.UUID) (*model.List, error) {
	args := m.Called(ctx, id)
	list := args.Get(0)
	if list == nil {
		return nil, args.Error(1)
	}
	return list.(*model.List), args.Error(1)
}

type MockBoardStore struct {
	mock.Mock
}

func (m *MockBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	args := m.Called(ctx, id)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

type MockMover struct {
	mock.Mock
}

func (m *MockMover) Move(ctx context.Context, principalID uuid.UUID, req mover.Request) (*model.Card, error) {
	args := m.Called(ctx, principalID, req)
	card := args.Get(0)
	if card == nil {
		return nil, args.Error(1)
	}
	return card.(*model.Card), args.Error(1)
}

func (m *MockMover) RebalanceList(ctx context.Context, principalID, listID uuid.UUID) error {
	args := m.Called(ctx, principalID, listID)
	return args.Error(0)
}

func setupCardTest(userID uuid.UUID) (*gin.Engine, *MockCardStore, *MockListStore, *MockBoardStore, *MockMover) {
	gin.SetMode(gin.TestMode)
	r := gin.Default()

	cardStore := new(MockCardStore)
	listStore := new(MockListStore)
	boardStore := new(MockBoardStore)
	mockMover := new(MockMover)

	cardHandler := handler.NewCardHandler(cardStore, listStore, boardStore, mockMover)

	// Inject the principal the way the auth middleware would.
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})
	r.POST("/cards/:id/move", cardHandler.Move)

	return r, cardStore, listStore, boardStore, mockMover
}

func postMove(t *testing.T, router *gin.Engine, cardID uuid.UUID, body handler.MoveCardRequest) *httptest.ResponseRecorder {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	assert.NoError(t, err)

	req, _ := http.NewRequest("POST", "/cards/"+cardID.String()+"/move", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestMoveCard_ByIndexBetweenNeighbors(t *testing.T) {
	userID := uuid.New()
	router, cardStore, _, _, mockMover := setupCardTest(userID)

	cardID := uuid.New()
	destListID := uuid.New()

	siblings := []model.Card{
		{ID: uuid.New(), ListID: destListID, Position: 100.0},
		{ID: uuid.New(), ListID: destListID, Position: 200.0},
	}
	cardStore.On("GetByListID", mock.Anything, destListID).Return(siblings, nil)

	moved := &model.Card{ID: cardID, Title: "moved", ListID: destListID, Position: 150.0}
	mockMover.On("Move", mock.Anything, userID, mover.Request{
		CardID: cardID,
		ListID: destListID,
		Lower:  100.0,
		Upper:  200.0,
	}).Return(moved, nil)

	idx := 1
	resp := postMove(t, router, cardID, handler.MoveCardRequest{
		ListID: destListID.String(),
		Index:  &idx,
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var body handler.CardResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, destListID.String(), body.ListID)
	assert.Equal(t, 150.0, body.Position)

	cardStore.AssertExpectations(t)
	mockMover.AssertExpectations(t)
}

func TestMoveCard_ExplicitNeighborsSkipEnumeration(t *testing.T) {
	userID := uuid.New()
	router, cardStore, _, _, mockMover := setupCardTest(userID)

	cardID := uuid.New()
	destListID := uuid.New()
	lower, upper := 100.0, 200.0

	moved := &model.Card{ID: cardID, ListID: destListID, Position: 150.0}
	mockMover.On("Move", mock.Anything, userID, mover.Request{
		CardID: cardID,
		ListID: destListID,
		Lower:  lower,
		Upper:  upper,
	}).Return(moved, nil)

	resp := postMove(t, router, cardID, handler.MoveCardRequest{
		ListID: destListID.String(),
		Lower:  &lower,
		Upper:  &upper,
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	cardStore.AssertNotCalled(t, "GetByListID", mock.Anything, mock.Anything)
	mockMover.AssertExpectations(t)
}

func TestMoveCard_NoPlacementMeansOpenSides(t *testing.T) {
	userID := uuid.New()
	router, _, _, _, mockMover := setupCardTest(userID)

	cardID := uuid.New()
	destListID := uuid.New()

	moved := &model.Card{ID: cardID, ListID: destListID, Position: position.DefaultStart}
	mockMover.On("Move", mock.Anything, userID, mover.Request{
		CardID: cardID,
		ListID: destListID,
		Lower:  position.NoLower,
		Upper:  position.NoUpper,
	}).Return(moved, nil)

	resp := postMove(t, router, cardID, handler.MoveCardRequest{
		ListID: destListID.String(),
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	mockMover.AssertExpectations(t)
}

func TestMoveCard_PermissionDenied(t *testing.T) {
	userID := uuid.New()
	router, _, _, _, mockMover := setupCardTest(userID)

	cardID := uuid.New()
	destListID := uuid.New()

	mockMover.On("Move", mock.Anything, userID, mock.AnythingOfType("mover.Request")).
		Return(nil, authz.ErrPermissionDenied)

	resp := postMove(t, router, cardID, handler.MoveCardRequest{
		ListID: destListID.String(),
	})

	assert.Equal(t, http.StatusForbidden, resp.Code)
	mockMover.AssertExpectations(t)
}

func TestMoveCard_CardNotFound(t *testing.T) {
	userID := uuid.New()
	router, _, _, _, mockMover := setupCardTest(userID)

	mockMover.On("Move", mock.Anything, userID, mock.AnythingOfType("mover.Request")).
		Return(nil, repository.ErrCardNotFound)

	resp := postMove(t, router, uuid.New(), handler.MoveCardRequest{
		ListID: uuid.New().String(),
	})

	assert.Equal(t, http.StatusNotFound, resp.Code)
	mockMover.AssertExpectations(t)
}

func TestMoveCard_LockTimeoutIsConflict(t *testing.T) {
	userID := uuid.New()
	router, _, _, _, mockMover := setupCardTest(userID)

	mockMover.On("Move", mock.Anything, userID, mock.AnythingOfType("mover.Request")).
		Return(nil, repository.ErrLockTimeout)

	resp := postMove(t, router, uuid.New(), handler.MoveCardRequest{
		ListID: uuid.New().String(),
	})

	assert.Equal(t, http.StatusConflict, resp.Code)
	mockMover.AssertExpectations(t)
}

func TestMoveCard_PrecisionExhaustedTriggersRebalanceAndRetry(t *testing.T) {
	userID := uuid.New()
	router, cardStore, _, _, mockMover := setupCardTest(userID)

	cardID := uuid.New()
	destListID := uuid.New()

	crowded := []model.Card{
		{ID: uuid.New(), ListID: destListID, Position: 1.0},
		{ID: uuid.New(), ListID: destListID, Position: 1.0000000000000002},
	}
	respaced := []model.Card{
		{ID: crowded[0].ID, ListID: destListID, Position: 65535.0},
		{ID: crowded[1].ID, ListID: destListID, Position: 131070.0},
	}
	cardStore.On("GetByListID", mock.Anything, destListID).Return(crowded, nil).Once()
	cardStore.On("GetByListID", mock.Anything, destListID).Return(respaced, nil).Once()

	mockMover.On("Move", mock.Anything, userID, mock.AnythingOfType("mover.Request")).
		Return(nil, position.ErrPrecisionExhausted).Once()
	mockMover.On("RebalanceList", mock.Anything, userID, destListID).Return(nil).Once()

	moved := &model.Card{ID: cardID, ListID: destListID, Position: 98302.5}
	mockMover.On("Move", mock.Anything, userID, mover.Request{
		CardID: cardID,
		ListID: destListID,
		Lower:  65535.0,
		Upper:  131070.0,
	}).Return(moved, nil).Once()

	idx := 1
	resp := postMove(t, router, cardID, handler.MoveCardRequest{
		ListID: destListID.String(),
		Index:  &idx,
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	cardStore.AssertExpectations(t)
	mockMover.AssertExpectations(t)
}
