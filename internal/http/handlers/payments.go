package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/sqlinline"
)

type paymentCreateRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Reference   string `json:"reference"`
}

type paymentDTO struct {
	ID          string    `json:"id"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"`
	Status      string    `json:"status"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaymentsCreate records a completed wallet payment and flips the caller to
// premium. Provider-side verification happened upstream; the reference is the
// idempotency key.
func (a *App) PaymentsCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req paymentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.AmountCents <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "amount_cents must be positive")
		return
	}
	if req.Reference == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "reference required")
		return
	}
	payment := &domain.Payment{
		UserID:      userID,
		AmountCents: req.AmountCents,
		Method:      domain.PaymentMethodWallet,
		Status:      domain.PaymentStatusCompleted,
		Reference:   req.Reference,
		Country:     middleware.CountryFromContext(r.Context()),
	}
	saved, err := a.Users.ActivatePremium(r.Context(), payment, a.now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyPremium):
			a.error(w, http.StatusConflict, "already_premium", "account is already premium")
		case errors.Is(err, domain.ErrDuplicatePayment):
			a.error(w, http.StatusConflict, "duplicate_payment", "payment reference already processed")
		case errors.Is(err, domain.ErrNotFound):
			a.error(w, http.StatusNotFound, "not_found", "user not found")
		default:
			a.Logger.Error().Err(err).Str("user_id", userID).Msg("activate premium failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to process payment")
		}
		return
	}
	a.logUsage(r.Context(), userID, "PREMIUM_ACTIVATED", true, 0, map[string]any{"method": string(saved.Method)})
	a.json(w, http.StatusCreated, paymentDTO{
		ID:          saved.ID,
		AmountCents: saved.AmountCents,
		Method:      string(saved.Method),
		Status:      string(saved.Status),
		Reference:   saved.Reference,
		CreatedAt:   saved.CreatedAt,
	})
}

func (a *App) PaymentsList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	rows, err := a.SQL.Query(r.Context(), sqlinline.QSelectPaymentsByUser, userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load payments")
		return
	}
	defer rows.Close()
	items := []paymentDTO{}
	for rows.Next() {
		var p paymentDTO
		if err := rows.Scan(&p.ID, &p.AmountCents, &p.Method, &p.Status, &p.Reference, &p.CreatedAt); err != nil {
			continue
		}
		items = append(items, p)
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if middleware.RoleFromContext(r.Context()) != string(domain.UserRoleAdmin) {
		a.error(w, http.StatusForbidden, "forbidden", "admin role required")
		return false
	}
	return true
}

func (a *App) AdminPaymentsList(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListPayments)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load payments")
		return
	}
	defer rows.Close()
	var items []map[string]any
	for rows.Next() {
		var id, userID, name, email, method, status, reference, country string
		var amount int64
		var createdAt time.Time
		if err := rows.Scan(&id, &userID, &name, &email, &amount, &method, &status, &reference, &country, &createdAt); err != nil {
			continue
		}
		items = append(items, map[string]any{
			"id":           id,
			"user_id":      userID,
			"user_name":    name,
			"user_email":   email,
			"amount_cents": amount,
			"method":       method,
			"status":       status,
			"reference":    reference,
			"country":      country,
			"created_at":   createdAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// AdminGrantPremium marks any user as paid without a wallet transaction.
func (a *App) AdminGrantPremium(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	targetID := chi.URLParam(r, "user_id")
	if targetID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user_id required")
		return
	}
	payment := &domain.Payment{
		UserID:    targetID,
		Method:    domain.PaymentMethodAdmin,
		Status:    domain.PaymentStatusCompleted,
		Reference: "admin:" + targetID + ":" + a.now().Format("20060102150405"),
	}
	saved, err := a.Users.ActivatePremium(r.Context(), payment, a.now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyPremium):
			a.error(w, http.StatusConflict, "already_premium", "user is already premium")
		case errors.Is(err, domain.ErrNotFound):
			a.error(w, http.StatusNotFound, "not_found", "user not found")
		default:
			a.Logger.Error().Err(err).Str("user_id", targetID).Msg("admin grant failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to grant premium")
		}
		return
	}
	a.json(w, http.StatusOK, map[string]any{"user_id": targetID, "payment_id": saved.ID, "is_premium": true})
}

func (a *App) AdminRevokePremium(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	targetID := chi.URLParam(r, "user_id")
	if targetID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user_id required")
		return
	}
	if err := a.Users.RevokePremium(r.Context(), targetID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		a.Logger.Error().Err(err).Str("user_id", targetID).Msg("admin revoke failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to revoke premium")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"user_id": targetID, "is_premium": false})
}
