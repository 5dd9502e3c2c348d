package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gochat/internal/common"
	"gochat/internal/model"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, ownerID string) ([]*model.ContactRow, error) {
	args := m.Called(ctx, ownerID)
	if rows := args.Get(0); rows != nil {
		return rows.([]*model.ContactRow), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Add(ctx context.Context, callerID string, req AddRequest) (bool, error) {
	args := m.Called(ctx, callerID, req)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) Resync(ctx context.Context, callerID, chatID string) ([]*model.ContactRow, error) {
	args := m.Called(ctx, callerID, chatID)
	if rows := args.Get(0); rows != nil {
		return rows.([]*model.ContactRow), args.Error(1)
	}
	return nil, args.Error(1)
}

func serve(svc Service, req *http.Request, userID string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req.WithContext(common.WithUserID(req.Context(), userID)))
	return rec
}

func TestHandler_List(t *testing.T) {
	t.Run("rows", func(t *testing.T) {
		svc := new(MockService)
		svc.On("List", mock.Anything, "2").Return([]*model.ContactRow{
			{ID: "c1", OwnerID: "2", ChatID: "1_2", CounterpartID: "1", CounterpartName: "Alice", LastMessage: "hello"},
		}, nil)

		rec := serve(svc, httptest.NewRequest(http.MethodGet, "/api/contacts", nil), "2")

		require.Equal(t, http.StatusOK, rec.Code)
		var rows []map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "1", rows[0]["senderId"])
		assert.Equal(t, "Alice", rows[0]["senderName"])
		assert.Equal(t, "hello", rows[0]["lastMessage"])
	})

	t.Run("empty list is an array", func(t *testing.T) {
		svc := new(MockService)
		svc.On("List", mock.Anything, "2").Return(nil, nil)

		rec := serve(svc, httptest.NewRequest(http.MethodGet, "/api/contacts", nil), "2")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestHandler_Add(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	body := map[string]any{
		"senderName": "Bob", "lastMessage": "hey", "time": at.Format(time.RFC3339),
		"userId": "1", "userName": "Alice", "senderId": "2", "chatId": "1_2",
	}

	t.Run("ok", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Add", mock.Anything, "1", AddRequest{
			OwnerID: "1", OwnerName: "Alice", ChatID: "1_2", CounterpartID: "2",
			CounterpartName: "Bob", LastMessage: "hey", LastMessageAt: at,
		}).Return(true, nil)
		raw, _ := json.Marshal(body)

		rec := serve(svc, httptest.NewRequest(http.MethodPost, "/api/contacts", bytes.NewReader(raw)), "1")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Contact added successfully"}`, rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("empty time is accepted as unset", func(t *testing.T) {
		for _, raw := range []string{
			`{"time":"","senderId":"2","chatId":"1_2"}`,
			`{"time":null,"senderId":"2","chatId":"1_2"}`,
			`{"senderId":"2","chatId":"1_2"}`,
		} {
			svc := new(MockService)
			svc.On("Add", mock.Anything, "1", AddRequest{ChatID: "1_2", CounterpartID: "2"}).Return(true, nil)

			rec := serve(svc, httptest.NewRequest(http.MethodPost, "/api/contacts", strings.NewReader(raw)), "1")

			assert.Equal(t, http.StatusOK, rec.Code, raw)
			svc.AssertExpectations(t)
		}
	})

	t.Run("unparseable time", func(t *testing.T) {
		svc := new(MockService)
		raw := `{"time":"yesterday","senderId":"2","chatId":"1_2"}`

		rec := serve(svc, httptest.NewRequest(http.MethodPost, "/api/contacts", strings.NewReader(raw)), "1")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign owner", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Add", mock.Anything, "3", mock.Anything).Return(false, ErrForeignOwner)
		raw, _ := json.Marshal(body)

		rec := serve(svc, httptest.NewRequest(http.MethodPost, "/api/contacts", bytes.NewReader(raw)), "3")

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHandler_Resync(t *testing.T) {
	svc := new(MockService)
	svc.On("Resync", mock.Anything, "1", "1_2").Return(nil, ErrEmptyChat)

	rec := serve(svc, httptest.NewRequest(http.MethodPost, "/api/contacts/1_2/resync", nil), "1")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}
