package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kiddoconnect/campaign-service/internal/domain"
	"github.com/kiddoconnect/campaign-service/internal/repository"
)

func newRegisterRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipients", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegister_CreatesRecipient(t *testing.T) {
	store := repository.NewMockStore()
	store.AddAPIKey(&domain.APIKey{
		ID:       "k1",
		TenantID: "t1",
		Key:      "pk_live_abc",
		Active:   true,
	})

	h := NewRecipientHandler(store.Recipients(), store.APIKeys(), zap.NewNop())

	req := newRegisterRequest(t, `{
		"api_key": "pk_live_abc",
		"parent_name": "Dana",
		"email": "dana@example.com",
		"phone": "+15550100",
		"child_name": "Ava",
		"birthdate": "2020-04-29",
		"source": "embed-widget"
	}`)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Success bool              `json:"success"`
		Data    *domain.Recipient `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Success || body.Data == nil {
		t.Fatalf("body = %+v, want success with data", body)
	}
	if body.Data.TenantID != "t1" {
		t.Errorf("tenant_id = %q, want %q", body.Data.TenantID, "t1")
	}
	if body.Data.Name != "Ava" {
		t.Errorf("name = %q, want %q", body.Data.Name, "Ava")
	}
	if want := time.Date(2020, time.April, 29, 0, 0, 0, 0, time.UTC); !body.Data.Birthdate.Equal(want) {
		t.Errorf("birthdate = %v, want %v", body.Data.Birthdate, want)
	}
	if len(body.Data.Tags) != 1 || body.Data.Tags[0] != "embed-widget" {
		t.Errorf("tags = %v, want [embed-widget]", body.Data.Tags)
	}
	if body.Data.ConsentAt == nil {
		t.Error("consent_at not recorded")
	}
	if body.Data.ConsentIP == nil || *body.Data.ConsentIP != "203.0.113.9" {
		t.Errorf("consent_ip = %v, want first forwarded hop", body.Data.ConsentIP)
	}

	stored, err := store.Recipients().ListActiveByTenant(context.Background(), "t1")
	if err != nil {
		t.Fatalf("list recipients: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored recipients = %d, want 1", len(stored))
	}
}

func TestRegister_InvalidAPIKey(t *testing.T) {
	store := repository.NewMockStore()
	store.AddAPIKey(&domain.APIKey{ID: "k1", TenantID: "t1", Key: "pk_revoked", Active: false})

	h := NewRecipientHandler(store.Recipients(), store.APIKeys(), zap.NewNop())

	for _, key := range []string{"pk_revoked", "pk_unknown"} {
		req := newRegisterRequest(t, `{
			"api_key": "`+key+`",
			"email": "dana@example.com",
			"child_name": "Ava",
			"birthdate": "2020-04-29"
		}`)
		rr := httptest.NewRecorder()
		h.Register(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("key %q: status = %d, want 401", key, rr.Code)
		}
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	store := repository.NewMockStore()
	h := NewRecipientHandler(store.Recipients(), store.APIKeys(), zap.NewNop())

	tests := []struct {
		name string
		body string
	}{
		{"missing api key", `{"email":"d@e.com","child_name":"Ava","birthdate":"2020-04-29"}`},
		{"missing child name", `{"api_key":"k","email":"d@e.com","birthdate":"2020-04-29"}`},
		{"missing email", `{"api_key":"k","child_name":"Ava","birthdate":"2020-04-29"}`},
		{"bad birthdate", `{"api_key":"k","email":"d@e.com","child_name":"Ava","birthdate":"29/04/2020"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.Register(rr, newRegisterRequest(t, tt.body))

			if rr.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", rr.Code)
			}
		})
	}
}

func TestRegister_MalformedJSON(t *testing.T) {
	store := repository.NewMockStore()
	h := NewRecipientHandler(store.Recipients(), store.APIKeys(), zap.NewNop())

	rr := httptest.NewRecorder()
	h.Register(rr, newRegisterRequest(t, `{not json`))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestRegister_TouchesAPIKeyLastUsed(t *testing.T) {
	store := repository.NewMockStore()
	store.AddAPIKey(&domain.APIKey{ID: "k1", TenantID: "t1", Key: "pk_live_abc", Active: true})

	h := NewRecipientHandler(store.Recipients(), store.APIKeys(), zap.NewNop())

	rr := httptest.NewRecorder()
	h.Register(rr, newRegisterRequest(t, `{
		"api_key": "pk_live_abc",
		"email": "dana@example.com",
		"child_name": "Ava",
		"birthdate": "2020-04-29"
	}`))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rr.Code)
	}
	key, err := store.APIKeys().GetActive(context.Background(), "pk_live_abc")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if key.LastUsedAt == nil {
		t.Error("last_used_at not updated")
	}
}
