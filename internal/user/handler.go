package user

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gochat/internal/common"
	"gochat/internal/httputil"
)

// Handler wires the authentication routes to UserService.
type Handler struct {
	userService UserService
	log         *zap.Logger
}

func NewHandler(userService UserService, log *zap.Logger) *Handler {
	return &Handler{userService: userService, log: log}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	ID    string `json:"_id"`
}

type profileResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterRoutes mounts /signup and /login on public and /profile on protected.
func (h *Handler) RegisterRoutes(public, protected *mux.Router) {
	public.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
	public.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	protected.HandleFunc("/profile", h.Profile).Methods(http.MethodGet)
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	user, err := h.userService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	h.log.Info("user registered", zap.String("user_id", user.ID))
	httputil.WriteMessage(w, http.StatusOK, "User created successfully")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	user, token, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{Token: token, ID: user.ID})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	user, err := h.userService.Profile(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profileResponse{Name: user.Name, Email: user.Email})
}
