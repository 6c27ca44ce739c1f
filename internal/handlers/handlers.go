package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/service"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/auth"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

// DedupeStore is the slice of the cache the webhook handler needs to claim
// notification IDs. Satisfied by pkg/cache.Store.
type DedupeStore interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

type Handlers struct {
	scheduling service.SchedulingService
	payment    service.PaymentService
	dedupe     DedupeStore
	jwtSecret  string
}

func New(scheduling service.SchedulingService, payment service.PaymentService, dedupe DedupeStore, jwtSecret string) *Handlers {
	return &Handlers{
		scheduling: scheduling,
		payment:    payment,
		dedupe:     dedupe,
		jwtSecret:  jwtSecret,
	}
}

// RequireSession verifies the auth provider's bearer token.
func (h *Handlers) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := h.parseBearer(r)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Missing or invalid session token", CodeUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
		ctx = context.WithValue(ctx, claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalSession attaches claims when a valid token is present but lets
// anonymous requests through (guest claims carry an email instead).
func (h *Handlers) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := h.parseBearer(r); claims != nil {
			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, claimsKey, claims)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := h.parseBearer(r)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Missing or invalid session token", CodeUnauthorized)
			return
		}
		if claims.Role != auth.RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin access required", CodeForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
		ctx = context.WithValue(ctx, claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handlers) parseBearer(r *http.Request) *auth.Claims {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	claims, err := auth.Parse(strings.TrimPrefix(header, "Bearer "), h.jwtSecret)
	if err != nil {
		return nil
	}
	return claims
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
