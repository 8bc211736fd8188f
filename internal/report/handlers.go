package report

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-hall/internal/common"
	"github.com/noah-isme/backend-hall/internal/ledger"
	"github.com/noah-isme/backend-hall/internal/obs"
)

// Handler exposes the report endpoint.
type Handler struct {
	Svc *Service
	Log zerolog.Logger
}

// Get returns the report for ?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "REPORT_NOT_CONFIGURED", "report service not configured", nil)
		return
	}
	q := r.URL.Query()
	rep, err := h.Svc.Generate(r.Context(), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		var verrs ledger.ValidationErrors
		if errors.As(err, &verrs) {
			obs.ObserveValidationErrors(verrs)
			common.WriteError(w, common.ValidationFailed("invalid report range", verrs.Fields(), err))
			return
		}
		common.WriteError(w, err)
		h.Log.Error().Err(err).Msg("report generation failed")
		return
	}
	common.Data(w, http.StatusOK, rep)
}
