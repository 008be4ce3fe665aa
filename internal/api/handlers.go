package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rohitkotecha14/sellscale-challenge/internal/apperr"
	"github.com/rohitkotecha14/sellscale-challenge/internal/auth"
	"github.com/rohitkotecha14/sellscale-challenge/internal/market"
	"github.com/rohitkotecha14/sellscale-challenge/internal/models"
	"github.com/rohitkotecha14/sellscale-challenge/internal/portfolio"
	"github.com/rohitkotecha14/sellscale-challenge/internal/wallet"
)

// UserStore is the slice of persistence the handlers need directly: resolving
// the session cookie to a user and deleting accounts.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// MarketData is the market gateway surface the stock routes proxy to.
type MarketData interface {
	Quote(ctx context.Context, ticker string) (*market.Quote, error)
	Daily(ctx context.Context, ticker, outputSize string) (*market.Chart, error)
	Search(ctx context.Context, keywords string) ([]market.Match, error)
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Auth      *auth.AuthService
	Users     UserStore
	Portfolio *portfolio.Service
	Wallet    *wallet.Service
	Market    MarketData
}

// NewHandler creates a new handler
func NewHandler(authSvc *auth.AuthService, users UserStore, pf *portfolio.Service, wl *wallet.Service, md MarketData) *Handler {
	return &Handler{Auth: authSvc, Users: users, Portfolio: pf, Wallet: wl, Market: md}
}

// Register handles POST /user/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Auth.Register(r.Context(), req.Username, req.Email, req.FirstName, req.LastName, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /user/login: verifies credentials and sets the session
// cookie. The cookie's max-age matches the token's own expiry window.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Auth.SessionTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged in successfully"})
}

// Logout handles POST /user/logout by clearing the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me handles GET /user/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /user/delete. Portfolio rows cascade with the
// account.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err := h.Users.DeleteUser(r.Context(), user.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWallet handles GET /user/wallet, returning the bare balance.
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	balance, err := h.Wallet.Balance(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// UpdateWallet handles PUT /user/wallet. The new balance arrives as the
// new_balance query parameter, which is what the frontend sends.
func (h *Handler) UpdateWallet(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	raw := r.URL.Query().Get("new_balance")
	newBalance, err := decimal.NewFromString(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "new_balance must be a number")
		return
	}

	balance, err := h.Wallet.SetBalance(r.Context(), user.ID, newBalance)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Wallet balance updated",
		"new_balance": balance,
	})
}

// ViewPortfolio handles GET /portfolio/view
func (h *Handler) ViewPortfolio(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	entries, err := h.Portfolio.Portfolio(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []models.PortfolioEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"portfolio": entries})
}

type tradeRequest struct {
	Ticker   string `json:"ticker"`
	Quantity int64  `json:"quantity"`
}

// BuyStock handles POST /portfolio/buy
func (h *Handler) BuyStock(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.Portfolio.Buy(r.Context(), user.ID, req.Ticker, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// SellStock handles POST /portfolio/sell
func (h *Handler) SellStock(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.Portfolio.Sell(r.Context(), user.ID, req.Ticker, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// QueryStock handles GET /stock/query/{ticker}
func (h *Handler) QueryStock(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	quote, err := h.Market.Quote(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, apperr.ErrTickerNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Stock %s not found", ticker))
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// ChartStock handles GET /stock/chart/{ticker}. The period query parameter
// picks the provider output size: long windows fetch the full series.
func (h *Handler) ChartStock(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	outputSize := "compact"
	switch r.URL.Query().Get("period") {
	case "1y", "2y", "5y", "10y", "max":
		outputSize = "full"
	}

	chart, err := h.Market.Daily(r.Context(), ticker, outputSize)
	if err != nil {
		if errors.Is(err, apperr.ErrTickerNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("No historical data found for %s", ticker))
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

// SearchStock handles GET /stock/search/{name}
func (h *Handler) SearchStock(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	matches, err := h.Market.Search(r.Context(), name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if matches == nil {
		matches = []market.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}
