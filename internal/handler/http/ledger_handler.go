package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
	"github.com/cypherlabdev/wager-settlement-service/internal/service"
	"github.com/cypherlabdev/wager-settlement-service/internal/settlement"
)

// LedgerHandler exposes the ledger over HTTP
type LedgerHandler struct {
	service *service.LedgerService
	logger  zerolog.Logger
}

// NewLedgerHandler creates a new ledger HTTP handler
func NewLedgerHandler(service *service.LedgerService, logger zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{
		service: service,
		logger:  logger.With().Str("component", "ledger_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided mux
func (h *LedgerHandler) RegisterRoutes(mux *http.ServeMux) {
	// GET /api/v1/leagues and GET /api/v1/leagues/:league/offers
	mux.HandleFunc("/api/v1/leagues", h.handleLeagues)
	mux.HandleFunc("/api/v1/leagues/", h.handleLeagueOffers)

	// GET pending wager groups, POST a new wager
	mux.HandleFunc("/api/v1/wagers", h.handleWagers)

	// GET /api/v1/balance, POST /api/v1/balance/adjust
	mux.HandleFunc("/api/v1/balance", h.handleBalance)
	mux.HandleFunc("/api/v1/balance/adjust", h.handleAdjust)

	// GET /api/v1/matches, POST /api/v1/matches/:match_key/result
	mux.HandleFunc("/api/v1/matches", h.handleMatches)
	mux.HandleFunc("/api/v1/matches/", h.handleApplyResult)

	mux.HandleFunc("/api/v1/history", h.handleHistory)
	mux.HandleFunc("/api/v1/settlements", h.handleSettle)
}

func (h *LedgerHandler) handleLeagues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	leagues, err := h.service.Leagues(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list leagues")
		h.errorResponse(w, http.StatusInternalServerError, "failed to list leagues")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count":   len(leagues),
		"leagues": leagues,
	})
}

// handleLeagueOffers handles GET /api/v1/leagues/:league/offers
func (h *LedgerHandler) handleLeagueOffers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/leagues/")
	league, ok := strings.CutSuffix(path, "/offers")
	if !ok || league == "" {
		h.errorResponse(w, http.StatusBadRequest, "invalid path: expected /api/v1/leagues/:league/offers")
		return
	}

	offers, err := h.service.Offers(r.Context(), league)
	if err != nil {
		h.logger.Error().Err(err).Str("league", league).Msg("failed to list offers")
		h.errorResponse(w, http.StatusInternalServerError, "failed to list offers")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"league": league,
		"count":  len(offers),
		"offers": offers,
	})
}

// PlaceWagerRequest is the body of POST /api/v1/wagers
type PlaceWagerRequest struct {
	League    string          `json:"league"`
	MatchKey  string          `json:"match_key"`
	Type      models.BetKind  `json:"type"`
	Selection string          `json:"selection"` // home, draw, away, over or under
	Stake     decimal.Decimal `json:"stake"`
}

func parseSelection(s string) (models.Outcome, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home":
		return models.Home, true
	case "draw":
		return models.Draw, true
	case "away":
		return models.Away, true
	case "over":
		return models.Over, true
	case "under":
		return models.Under, true
	}
	return 0, false
}

func (h *LedgerHandler) handleWagers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		pending := h.service.PendingWagers()
		h.jsonResponse(w, http.StatusOK, map[string]interface{}{
			"count":  len(pending),
			"wagers": pending,
		})
	case http.MethodPost:
		h.placeWager(w, r)
	default:
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *LedgerHandler) placeWager(w http.ResponseWriter, r *http.Request) {
	var req PlaceWagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.League == "" || req.MatchKey == "" || req.Type == "" {
		h.errorResponse(w, http.StatusBadRequest, "league, match_key and type are required")
		return
	}
	outcome, ok := parseSelection(req.Selection)
	if !ok {
		h.errorResponse(w, http.StatusBadRequest, "selection must be one of home, draw, away, over, under")
		return
	}

	group, err := h.service.PlaceWager(r.Context(), req.League, req.MatchKey, req.Type, outcome, req.Stake)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.jsonResponse(w, http.StatusCreated, map[string]interface{}{
		"wager_group": group,
		"balance":     h.service.Balance(),
	})
}

func (h *LedgerHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{"balance": h.service.Balance()})
}

// AdjustRequest is the body of POST /api/v1/balance/adjust
type AdjustRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *LedgerHandler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount.IsZero() {
		h.errorResponse(w, http.StatusBadRequest, "amount must not be zero")
		return
	}

	balance, err := h.service.AdjustBalance(r.Context(), req.Amount)
	if err != nil {
		h.logger.Warn().Err(err).Str("amount", req.Amount.String()).Msg("balance adjustment rejected")
		h.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{"balance": balance})
}

func (h *LedgerHandler) handleMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	matches := h.service.Matches()
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count":   len(matches),
		"matches": matches,
	})
}

// ResultRequest is the body of POST /api/v1/matches/:match_key/result
type ResultRequest struct {
	Result string `json:"result"` // "2-1" or "2:1"
}

// handleApplyResult handles POST /api/v1/matches/:match_key/result
func (h *LedgerHandler) handleApplyResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/matches/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "result" {
		h.errorResponse(w, http.StatusBadRequest, "invalid path: expected /api/v1/matches/:match_key/result")
		return
	}

	var req ResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	score, err := service.ParseScore(req.Result)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	if err := h.service.ApplyResult(r.Context(), parts[0], score); err != nil {
		h.serviceError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"match_key": parts[0],
		"result":    score,
	})
}

func (h *LedgerHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.errorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	logs, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read history")
		h.errorResponse(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count":   len(logs),
		"history": logs,
	})
}

// SettlementResponse represents the API response for a settlement pass
type SettlementResponse struct {
	Settled       int                    `json:"settled"`
	TotalSpent    string                 `json:"total_spend"`
	TotalReturned string                 `json:"total_get"`
	Balance       string                 `json:"balance"`
	Logs          []models.SettlementLog `json:"logs"`
}

// ToSettlementResponse converts a runner report to the API format
func ToSettlementResponse(report *settlement.Report, balance models.Money) *SettlementResponse {
	logs := report.Logs
	if logs == nil {
		logs = []models.SettlementLog{}
	}
	return &SettlementResponse{
		Settled:       report.Settled,
		TotalSpent:    report.TotalSpent.String(),
		TotalReturned: report.TotalReturned.String(),
		Balance:       balance.String(),
		Logs:          logs,
	}
}

func (h *LedgerHandler) handleSettle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	report, err := h.service.Settle(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("settlement failed")
		h.errorResponse(w, http.StatusInternalServerError, "settlement failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, ToSettlementResponse(report, h.service.Balance()))
}

func (h *LedgerHandler) serviceError(w http.ResponseWriter, err error) {
	var invalid *service.InvalidWagerError
	switch {
	case errors.As(err, &invalid):
		h.errorResponse(w, http.StatusUnprocessableEntity, invalid.Error())
	case errors.Is(err, service.ErrOfferNotFound), errors.Is(err, service.ErrMatchNotFound):
		h.errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMarketClosed), errors.Is(err, service.ErrKeyConflict), errors.Is(err, service.ErrStaleState):
		h.errorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidResult):
		h.errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("request failed")
		h.errorResponse(w, http.StatusInternalServerError, "internal error")
	}
}

// jsonResponse writes a JSON response
func (h *LedgerHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *LedgerHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}
