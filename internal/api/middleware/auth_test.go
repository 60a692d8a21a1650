package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTriggerAuth(t *testing.T) {
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	guarded := TriggerAuth("secret-token")(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantNext   bool
	}{
		{"valid token", "Bearer secret-token", http.StatusOK, true},
		{"wrong token", "Bearer wrong", http.StatusUnauthorized, false},
		{"missing header", "", http.StatusUnauthorized, false},
		{"missing bearer prefix", "secret-token", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(http.MethodPost, "/internal/run/schedule", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			guarded.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if reached != tt.wantNext {
				t.Errorf("next handler reached = %v, want %v", reached, tt.wantNext)
			}
		})
	}
}
