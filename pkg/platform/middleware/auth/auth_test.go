package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"clientview/pkg/requestcontext"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("bad signature")
	}
	return &JWTClaims{Subject: "operator-7", JTI: "j1"}, nil
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var actor string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = requestcontext.Actor(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		validator  JWTValidator
		header     string
		wantStatus int
		wantActor  string
	}{
		{name: "valid token", validator: stubValidator{}, header: "Bearer good", wantStatus: http.StatusNoContent, wantActor: "operator-7"},
		{name: "missing header", validator: stubValidator{}, wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", validator: stubValidator{}, header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", validator: stubValidator{}, header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "disabled", validator: nil, wantStatus: http.StatusNoContent, wantActor: requestcontext.AnonymousActor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor = ""
			req := httptest.NewRequest(http.MethodPost, "/clients", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			RequireAuth(tt.validator, logger)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantActor, actor)
		})
	}
}
