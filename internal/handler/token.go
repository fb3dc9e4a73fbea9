package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/bonison01/shop3/internal/auth"
)

// TokenHandler mints session tokens for local development and service
// callers. Production sessions come from the hosted auth provider; this
// endpoint only exists behind a shared API key and is disabled when no key
// is configured.
type TokenHandler struct {
	issuer   *auth.TokenIssuer
	apiKey   string
	validate *validator.Validate
}

func NewTokenHandler(issuer *auth.TokenIssuer, apiKey string) *TokenHandler {
	return &TokenHandler{issuer: issuer, apiKey: apiKey, validate: validator.New()}
}

type tokenRequest struct {
	APIKey string `json:"api_key" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
}

func (h *TokenHandler) Mint(w http.ResponseWriter, r *http.Request) {
	if h.apiKey == "" {
		respondWithError(w, http.StatusForbidden, "token minting is disabled")
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.apiKey)) != 1 {
		respondWithError(w, http.StatusUnauthorized, "invalid api key")
		return
	}

	token, err := h.issuer.Generate(req.UserID)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to mint token")
		respondWithError(w, http.StatusInternalServerError, "failed to mint token")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}
