package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/bonison01/shop3/internal/dashboard"
)

type DashboardHandler struct {
	svc dashboard.Service
}

func NewDashboardHandler(svc dashboard.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to compute dashboard stats")
		respondWithError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
