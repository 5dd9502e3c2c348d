package contact

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gochat/internal/common"
	"gochat/internal/httputil"
	"gochat/internal/model"
)

type Handler struct {
	svc Service
	log *zap.Logger
}

func NewHandler(svc Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type addContactRequest struct {
	SenderName  string    `json:"senderName"`
	LastMessage string    `json:"lastMessage"`
	Time        looseTime `json:"time"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	SenderID    string    `json:"senderId"`
	ChatID      string    `json:"chatId"`
}

// looseTime reads an RFC 3339 string; "" and null leave it unset, as older
// clients post an empty time for a chat without messages.
type looseTime time.Time

func (t *looseTime) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		*t = looseTime{}
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(*raw))
	if err != nil {
		return err
	}
	*t = looseTime(ts)
	return nil
}

func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/api/contacts", h.List).Methods(http.MethodGet)
	protected.HandleFunc("/api/contacts", h.Add).Methods(http.MethodPost)
	protected.HandleFunc("/api/contacts/{chatId}/resync", h.Resync).Methods(http.MethodPost)
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := common.UserIDFromContext(r.Context())
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Access denied. No token provided.")
	}
	return id, ok
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}

	rows, err := h.svc.List(r.Context(), callerID)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	if rows == nil {
		rows = []*model.ContactRow{}
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req addContactRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	created, err := h.svc.Add(r.Context(), callerID, AddRequest{
		OwnerID:         req.UserID,
		OwnerName:       req.UserName,
		ChatID:          req.ChatID,
		CounterpartID:   req.SenderID,
		CounterpartName: req.SenderName,
		LastMessage:     req.LastMessage,
		LastMessageAt:   time.Time(req.Time),
	})
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	h.log.Debug("contact add", zap.String("owner", callerID), zap.String("chat_id", req.ChatID), zap.Bool("created", created))
	httputil.WriteMessage(w, http.StatusOK, "Contact added successfully")
}

func (h *Handler) Resync(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}

	rows, err := h.svc.Resync(r.Context(), callerID, mux.Vars(r)["chatId"])
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}
