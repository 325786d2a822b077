package http

import (
	"log/slog"
	"net/http"

	"github.com/clienthub/identity/internal/service"
	"github.com/clienthub/identity/pkg/httputil"
	"github.com/clienthub/identity/pkg/middleware"
)

// AccountHandler handles HTTP requests for account profile endpoints.
type AccountHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAccountHandler creates a new account HTTP handler.
func NewAccountHandler(svc *service.AuthService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{service: svc, logger: logger}
}

// GetProfile handles GET /api/v1/users/me
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFromContext(r.Context())
	if accountID == "" {
		writeUnauthenticated(w)
		return
	}

	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: account})
}
