package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiddoconnect/campaign-service/internal/domain"
	"github.com/kiddoconnect/campaign-service/internal/repository"
)

// RecipientHandler serves the external registration endpoint: embeddable
// signup forms post here with a tenant's API key to enroll a child for
// birthday reminders.
type RecipientHandler struct {
	recipients repository.RecipientRepository
	apiKeys    repository.APIKeyRepository
	logger     *zap.Logger
}

func NewRecipientHandler(
	recipients repository.RecipientRepository,
	apiKeys repository.APIKeyRepository,
	logger *zap.Logger,
) *RecipientHandler {
	return &RecipientHandler{recipients: recipients, apiKeys: apiKeys, logger: logger}
}

// Register handles POST /api/v1/recipients
func (h *RecipientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRecipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		mapError(w, err)
		return
	}

	key, err := h.apiKeys.GetActive(r.Context(), req.APIKey)
	if err != nil {
		mapError(w, err)
		return
	}

	birthdate, _ := time.Parse("2006-01-02", req.Birthdate) // validated above
	now := time.Now().UTC()
	ip := clientIP(r)

	rec := &domain.Recipient{
		ID:         uuid.New().String(),
		TenantID:   key.TenantID,
		Name:       req.ChildName,
		Birthdate:  birthdate,
		ParentName: req.ParentName,
		Email:      req.Email,
		ConsentAt:  &now,
		ConsentIP:  &ip,
		CreatedAt:  now,
	}
	if req.Phone != "" {
		rec.Phone = &req.Phone
	}
	if req.Source != "" {
		rec.Tags = []string{req.Source}
	}

	if err := h.recipients.Create(r.Context(), rec); err != nil {
		h.logger.Error("recipient registration failed",
			zap.String("tenant_id", key.TenantID),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	if err := h.apiKeys.TouchLastUsed(r.Context(), req.APIKey, now); err != nil {
		// Bookkeeping only; the registration itself already succeeded.
		h.logger.Warn("failed to update api key last_used_at", zap.Error(err))
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    rec,
	})
}

// clientIP prefers the X-Forwarded-For chain's first hop, falling back to
// the connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
