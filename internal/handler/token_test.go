package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonison01/shop3/internal/auth"
)

func TestTokenHandler_Mint(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	tests := []struct {
		name           string
		apiKey         string
		body           string
		expectedStatus int
	}{
		{
			name:           "success",
			apiKey:         "dev-key",
			body:           `{"api_key":"dev-key","user_id":"user-42"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong_key",
			apiKey:         "dev-key",
			body:           `{"api_key":"bad-key","user_id":"user-42"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "disabled_without_key",
			apiKey:         "",
			body:           `{"api_key":"anything","user_id":"user-42"}`,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "missing_user_id",
			apiKey:         "dev-key",
			body:           `{"api_key":"dev-key"}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTokenHandler(issuer, tt.apiKey)

			req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			h.Mint(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

				subject, err := issuer.Validate(resp["token"])
				require.NoError(t, err)
				assert.Equal(t, "user-42", subject)
			}
		})
	}
}
