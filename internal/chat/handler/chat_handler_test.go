package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gochat/internal/chat/service"
	"gochat/internal/common"
	"gochat/internal/errs"
	"gochat/internal/model"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) SendMessage(ctx context.Context, senderID string, req service.SendRequest) (*model.Message, error) {
	args := m.Called(ctx, senderID, req)
	if msg := args.Get(0); msg != nil {
		return msg.(*model.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatService) GetMessages(ctx context.Context, chatID string, since *time.Time) ([]*model.Message, error) {
	args := m.Called(ctx, chatID, since)
	if msgs := args.Get(0); msgs != nil {
		return msgs.([]*model.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func newRouter(svc service.ChatService) *mux.Router {
	r := mux.NewRouter()
	NewChatHandler(svc, zap.NewNop()).RegisterRoutes(r)
	return r
}

func authed(req *http.Request, userID string) *http.Request {
	return req.WithContext(common.WithUserID(req.Context(), userID))
}

func TestChatHandler_SendMessage(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		setup      func(svc *MockChatService)
		wantStatus int
	}{
		{
			name: "created",
			body: `{"chatId":"1_2","recipient":"2","message":"hello","name":"Alice"}`,
			setup: func(svc *MockChatService) {
				svc.On("SendMessage", mock.Anything, "1", service.SendRequest{
					ChatID: "1_2", RecipientID: "2", Body: "hello", SenderName: "Alice",
				}).Return(&model.Message{ID: "m1", ChatID: "1_2", SenderID: "1", RecipientID: "2", Body: "hello", Timestamp: ts}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "missing fields",
			body: `{"chatId":"1_2","recipient":"2"}`,
			setup: func(svc *MockChatService) {
				svc.On("SendMessage", mock.Anything, "1", mock.Anything).Return(nil, service.ErrMissingFields)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "ledger out of sync",
			body: `{"chatId":"1_2","recipient":"2","message":"hello"}`,
			setup: func(svc *MockChatService) {
				svc.On("SendMessage", mock.Anything, "1", mock.Anything).Return(nil, errs.ErrLedgerSync)
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "malformed json",
			body:       `{"chatId":`,
			setup:      func(*MockChatService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockChatService)
			tc.setup(svc)
			req := authed(httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewBufferString(tc.body)), "1")
			rec := httptest.NewRecorder()

			newRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			svc.AssertExpectations(t)
			if tc.wantStatus == http.StatusCreated {
				var body map[string]any
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, "1_2", body["chatId"])
				assert.Equal(t, "1", body["sender"])
				assert.Equal(t, "2", body["recipient"])
				assert.Equal(t, "hello", body["message"])
				assert.Equal(t, ts.Format(time.RFC3339Nano), body["timestamp"])
			}
		})
	}
}

func TestChatHandler_GetMessages(t *testing.T) {
	t.Run("full log", func(t *testing.T) {
		svc := new(MockChatService)
		svc.On("GetMessages", mock.Anything, "1_2", (*time.Time)(nil)).Return([]*model.Message{
			{ID: "a", ChatID: "1_2", Body: "hello"},
			{ID: "b", ChatID: "1_2", Body: "hi"},
		}, nil)
		rec := httptest.NewRecorder()

		newRouter(svc).ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/messages/1_2", nil), "1"))

		require.Equal(t, http.StatusOK, rec.Code)
		var got []model.Message
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		require.Len(t, got, 2)
		assert.Equal(t, "hello", got[0].Body)
		assert.Equal(t, "hi", got[1].Body)
	})

	t.Run("delta with since", func(t *testing.T) {
		since := time.Date(2024, 3, 1, 10, 0, 0, 5000000, time.UTC)
		svc := new(MockChatService)
		svc.On("GetMessages", mock.Anything, "1_2", mock.MatchedBy(func(s *time.Time) bool {
			return s != nil && s.Equal(since)
		})).Return([]*model.Message{}, nil)
		rec := httptest.NewRecorder()
		url := "/api/messages/1_2?since=" + since.Format(time.RFC3339Nano)

		newRouter(svc).ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, url, nil), "1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("bad since", func(t *testing.T) {
		svc := new(MockChatService)
		rec := httptest.NewRecorder()

		newRouter(svc).ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/messages/1_2?since=yesterday", nil), "1"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "GetMessages")
	})
}
