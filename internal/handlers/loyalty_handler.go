package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/platebite/backend/internal/cache"
	"github.com/platebite/backend/internal/loyalty"
	"github.com/platebite/backend/internal/models"
	"github.com/platebite/backend/internal/services"
)

// LoyaltyHandler exposes the loyalty engine over HTTP. The handler owns the
// ambient concerns (validation, balance cache, event queue); the engine itself
// only ever sees its store.
type LoyaltyHandler struct {
	accounts  *loyalty.AccountService
	balances  *cache.BalanceCache
	events    *services.EventPublisher
	validator *services.ValidationHelper
}

func NewLoyaltyHandler(accounts *loyalty.AccountService, balances *cache.BalanceCache, events *services.EventPublisher) *LoyaltyHandler {
	return &LoyaltyHandler{
		accounts:  accounts,
		balances:  balances,
		events:    events,
		validator: services.NewValidationHelper(),
	}
}

// CreateAccountRequest is the payload for opening a loyalty account.
type CreateAccountRequest struct {
	UserID string `json:"userId" validate:"required,uuid4"`
}

// AddPointsRequest is the payload for accruing points.
type AddPointsRequest struct {
	UserID      string          `json:"userId" validate:"required,uuid4"`
	Points      int64           `json:"points" validate:"required,gt=0"`
	Reason      string          `json:"reason" validate:"required,max=255"`
	ReferenceID string          `json:"referenceId,omitempty" validate:"omitempty,max=64"`
	Metadata    models.Metadata `json:"metadata,omitempty"`
}

// RedeemPointsRequest is the payload for spending points on a reward.
type RedeemPointsRequest struct {
	UserID         string          `json:"userId" validate:"required,uuid4"`
	Points         int64           `json:"points" validate:"required,gt=0"`
	RewardType     string          `json:"rewardType" validate:"required,max=100"`
	RewardMetadata models.Metadata `json:"rewardMetadata,omitempty"`
}

// decodeJSON applies the shared request-body discipline: size cap, unknown
// fields rejected, exactly one JSON object.
func (h *LoyaltyHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	if err := h.validator.ValidateStruct(dst); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}

// writeServiceError maps the loyalty error taxonomy onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var insufficient *loyalty.InsufficientPointsError
	switch {
	case errors.Is(err, loyalty.ErrAccountNotFound):
		services.SendErrorResponse(w, "Loyalty account not found", http.StatusNotFound, nil)
	case errors.Is(err, loyalty.ErrRedemptionNotFound):
		services.SendErrorResponse(w, "Redemption not found", http.StatusNotFound, nil)
	case errors.Is(err, loyalty.ErrAccountExists):
		services.SendErrorResponse(w, "Loyalty account already exists", http.StatusConflict, nil)
	case errors.Is(err, loyalty.ErrNonPositivePoints):
		services.SendErrorResponse(w, "Points must be a positive integer", http.StatusBadRequest, nil)
	case errors.As(err, &insufficient):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error":     "Insufficient points",
			"available": insufficient.Available,
			"required":  insufficient.Required,
		})
	case errors.Is(err, loyalty.ErrStoreUnavailable):
		services.SendErrorResponse(w, "Service temporarily unavailable", http.StatusServiceUnavailable, nil)
	default:
		services.SendErrorResponse(w, "Failed to process request", http.StatusInternalServerError, nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// CreateAccount opens a loyalty account for a user
// @Summary Create loyalty account
// @Description Open the single loyalty account for a user. Returns the existing account if one was created concurrently.
// @Tags loyalty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAccountRequest true "Account creation request"
// @Success 201 {object} models.LoyaltyAccount
// @Success 200 {object} models.LoyaltyAccount "Account already existed"
// @Failure 400 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /loyalty/accounts [post]
func (h *LoyaltyHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	acct, err := h.accounts.CreateAccount(r.Context(), req.UserID)
	if errors.Is(err, loyalty.ErrAccountExists) {
		// Parallel create or repeat call: hand back the existing account.
		existing, lookupErr := h.accounts.GetAccount(r.Context(), req.UserID)
		if lookupErr != nil {
			writeServiceError(w, lookupErr)
			return
		}
		writeJSON(w, http.StatusOK, existing)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, acct)
}

// AddPoints accrues points on an account
// @Summary Add points
// @Description Atomically add points, recompute the tier, and append a ledger entry
// @Tags loyalty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddPointsRequest true "Accrual request"
// @Success 200 {object} models.LoyaltyAccount
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /loyalty/add-points [post]
func (h *LoyaltyHandler) AddPoints(w http.ResponseWriter, r *http.Request) {
	var req AddPointsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	acct, err := h.accounts.AddPoints(r.Context(), req.UserID, req.Points, req.Reason, req.ReferenceID, req.Metadata)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.balances.Invalidate(r.Context(), req.UserID)
	h.events.Publish(r.Context(), services.LoyaltyEvent{
		Type:       "POINTS_ADDED",
		UserID:     req.UserID,
		AccountID:  acct.ID,
		Points:     req.Points,
		Tier:       acct.Tier,
		OccurredAt: time.Now().UTC(),
	})

	writeJSON(w, http.StatusOK, acct)
}

// RedeemPoints spends points on a reward
// @Summary Redeem points
// @Description Atomically check sufficiency, deduct points, append the negative ledger entry, and record the redemption
// @Tags loyalty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RedeemPointsRequest true "Redemption request"
// @Success 200 {object} models.LoyaltyRedemption
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 422 {object} map[string]any "Insufficient points with available/required amounts"
// @Failure 503 {object} services.ErrorResponse
// @Router /loyalty/redeem-points [post]
func (h *LoyaltyHandler) RedeemPoints(w http.ResponseWriter, r *http.Request) {
	var req RedeemPointsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	red, err := h.accounts.Redeem(r.Context(), req.UserID, req.Points, req.RewardType, req.RewardMetadata)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.balances.Invalidate(r.Context(), req.UserID)
	h.events.Publish(r.Context(), services.LoyaltyEvent{
		Type:       "POINTS_REDEEMED",
		UserID:     req.UserID,
		AccountID:  red.AccountID,
		Points:     req.Points,
		RewardType: req.RewardType,
		OccurredAt: time.Now().UTC(),
	})

	writeJSON(w, http.StatusOK, red)
}

// GetBalance returns the current points balance
// @Summary Get points balance
// @Description Current balance for a user, served from cache when possible
// @Tags loyalty
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} object{userId=string,pointsBalance=int64}
// @Failure 404 {object} services.ErrorResponse
// @Router /loyalty/users/{userId}/balance [get]
func (h *LoyaltyHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	if balance, ok := h.balances.Get(r.Context(), userID); ok {
		writeJSON(w, http.StatusOK, map[string]any{"userId": userID, "pointsBalance": balance})
		return
	}

	balance, err := h.accounts.GetBalance(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.balances.Set(r.Context(), userID, balance)

	writeJSON(w, http.StatusOK, map[string]any{"userId": userID, "pointsBalance": balance})
}

// GetAccount returns a user's loyalty account
// @Summary Get account by user
// @Tags loyalty
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} models.LoyaltyAccount
// @Failure 404 {object} services.ErrorResponse
// @Router /loyalty/users/{userId}/account [get]
func (h *LoyaltyHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.accounts.GetAccount(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

// GetAccountByID returns an account by its id
// @Summary Get account by id
// @Tags loyalty
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} models.LoyaltyAccount
// @Failure 404 {object} services.ErrorResponse
// @Router /loyalty/accounts/{id} [get]
func (h *LoyaltyHandler) GetAccountByID(w http.ResponseWriter, r *http.Request) {
	acct, err := h.accounts.GetAccountByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

// GetAccountDetails returns the account with history and lifetime totals
// @Summary Get account details
// @Description Account, recent transactions and redemptions (newest first), lifetime earned and redeemed totals
// @Tags loyalty
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} loyalty.AccountDetails
// @Failure 404 {object} services.ErrorResponse
// @Router /loyalty/users/{userId}/details [get]
func (h *LoyaltyHandler) GetAccountDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.accounts.GetAccountDetails(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// ListAccounts returns every loyalty account
// @Summary List all accounts
// @Tags loyalty
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{accounts=[]models.LoyaltyAccount,count=int}
// @Router /loyalty/accounts [get]
func (h *LoyaltyHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts, "count": len(accounts)})
}

// ListActiveAccounts returns active accounts only
// @Summary List active accounts
// @Tags loyalty
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{accounts=[]models.LoyaltyAccount,count=int}
// @Router /loyalty/accounts/active [get]
func (h *LoyaltyHandler) ListActiveAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts, "count": len(accounts)})
}

// ListAccountsByTier returns active accounts in a tier
// @Summary List accounts by tier
// @Tags loyalty
// @Produce json
// @Security BearerAuth
// @Param tier path string true "Tier" Enums(Bronze, Silver, Gold, Platinum)
// @Success 200 {object} object{accounts=[]models.LoyaltyAccount,count=int}
// @Failure 400 {object} services.ErrorResponse
// @Router /loyalty/accounts/tier/{tier} [get]
func (h *LoyaltyHandler) ListAccountsByTier(w http.ResponseWriter, r *http.Request) {
	tier, err := models.ParseTier(chi.URLParam(r, "tier"))
	if err != nil {
		services.SendErrorResponse(w, "Unknown tier", http.StatusBadRequest, nil)
		return
	}

	accounts, err := h.accounts.ListByTier(r.Context(), tier)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts, "count": len(accounts)})
}

// DeactivateAccount hides an account from active listings
// @Summary Deactivate account
// @Description Administrative deactivation; the account stays mutable so paid orders keep earning
// @Tags loyalty
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} models.LoyaltyAccount
// @Failure 404 {object} services.ErrorResponse
// @Router /loyalty/accounts/{id}/deactivate [put]
func (h *LoyaltyHandler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	h.setAccountActive(w, r, false)
}

// ReinstateAccount restores a deactivated account
// @Summary Reinstate account
// @Tags loyalty
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} models.LoyaltyAccount
// @Failure 404 {object} services.ErrorResponse
// @Router /loyalty/accounts/{id}/reinstate [put]
func (h *LoyaltyHandler) ReinstateAccount(w http.ResponseWriter, r *http.Request) {
	h.setAccountActive(w, r, true)
}

func (h *LoyaltyHandler) setAccountActive(w http.ResponseWriter, r *http.Request, active bool) {
	acct, err := h.accounts.SetActive(r.Context(), chi.URLParam(r, "id"), active)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

// DeleteAccount removes an account and its history
// @Summary Delete account
// @Description Administrative delete; cascades transactions and redemptions
// @Tags loyalty
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} services.ErrorResponse
// @Router /loyalty/accounts/{id} [delete]
func (h *LoyaltyHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	acct, err := h.accounts.GetAccountByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	h.balances.Invalidate(r.Context(), acct.UserID)
	log.Printf("[LOYALTY] Account %s deleted via API", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}
