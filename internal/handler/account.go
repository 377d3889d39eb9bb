package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mindlog/mindlog/internal/auth"
	"github.com/mindlog/mindlog/internal/handler/dto"
	"github.com/mindlog/mindlog/internal/middleware"
	"github.com/mindlog/mindlog/internal/model"
)

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, username, password, email string) (*model.User, error)
}

// AccountHandler handles registration and login.
type AccountHandler struct {
	users  Registrar
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(users Registrar, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{users: users, logger: logger}
}

// Register handles POST /register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := middleware.ParseRequestForm(r); err != nil {
		middleware.WriteFormError(w, err)
		return
	}

	form, err := dto.RegisterFormFrom(r.Form)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	user, err := h.users.Register(r.Context(), form.Username, form.Password, form.Email)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RegisterResponse{Status: dto.StatusSuccess, UserID: user.ID})
}

// Login handles POST /login. Credentials have already been verified by the
// Credentials middleware.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipal(r.Context())

	h.logger.Info("user_logged_in",
		"user_id", p.UserID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Status:   dto.StatusSuccess,
		UserID:   p.UserID,
		Username: p.Username,
	})
}
