package dashboard

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-hall/internal/common"
	"github.com/noah-isme/backend-hall/internal/ledger"
	"github.com/noah-isme/backend-hall/internal/obs"
)

// Handler exposes the dashboard endpoint.
type Handler struct {
	Svc *Service
	Log zerolog.Logger
}

// Get returns the summary for ?month=YYYY-MM, defaulting to the current month.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "DASHBOARD_NOT_CONFIGURED", "dashboard service not configured", nil)
		return
	}
	summary, err := h.Svc.Summary(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		if errors.Is(err, ErrInvalidMonth) {
			obs.ObserveValidationErrors(err)
			var fe *ledger.FieldError
			errors.As(err, &fe)
			common.WriteError(w, common.ValidationFailed("invalid month", map[string]string{fe.Field: fe.Err.Error()}, err))
			return
		}
		common.WriteError(w, err)
		h.Log.Error().Err(err).Msg("dashboard summary failed")
		return
	}
	common.Data(w, http.StatusOK, summary)
}
