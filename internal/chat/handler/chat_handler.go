// Package handler exposes the message log over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gochat/internal/chat/service"
	"gochat/internal/common"
	"gochat/internal/errs"
	"gochat/internal/httputil"
	"gochat/internal/model"
)

var errBadSince = errs.New(errs.ErrInvalidInput, "Invalid since parameter")

type ChatHandler struct {
	chatService service.ChatService
	log         *zap.Logger
}

func NewChatHandler(chatService service.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

type sendMessageRequest struct {
	ChatID    string `json:"chatId"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	Name      string `json:"name"`
}

type sendMessageResponse struct {
	ChatID    string    `json:"chatId"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RegisterRoutes mounts the message routes on an authenticated router.
func (h *ChatHandler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/api/messages", h.SendMessage).Methods(http.MethodPost)
	protected.HandleFunc("/api/messages/{chatId}", h.GetMessages).Methods(http.MethodGet)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	senderID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	var req sendMessageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	msg, err := h.chatService.SendMessage(r.Context(), senderID, service.SendRequest{
		ChatID:      req.ChatID,
		RecipientID: req.Recipient,
		Body:        req.Message,
		SenderName:  req.Name,
	})
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, sendMessageResponse{
		ChatID:    msg.ChatID,
		Sender:    msg.SenderID,
		Recipient: msg.RecipientID,
		Message:   msg.Body,
		Timestamp: msg.Timestamp,
	})
}

// GetMessages returns the chat log; ?since=<RFC3339> limits it to messages at or after that instant.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatId"]

	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			httputil.WriteError(w, r, h.log, errBadSince)
			return
		}
		since = &ts
	}

	msgs, err := h.chatService.GetMessages(r.Context(), chatID, since)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	if msgs == nil {
		msgs = []*model.Message{}
	}
	httputil.WriteJSON(w, http.StatusOK, msgs)
}
