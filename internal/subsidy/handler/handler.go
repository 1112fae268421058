package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"subsidy/internal/report"
	"subsidy/internal/subsidy/calculator"
	"subsidy/internal/subsidy/location"
	"subsidy/internal/subsidy/service"
	"subsidy/internal/subsidy/zone"
	dErrors "subsidy/pkg/domain-errors"
	"subsidy/pkg/platform/httputil"
	"subsidy/pkg/requestcontext"
)

// Service defines the operations the HTTP layer needs.
type Service interface {
	Process(ctx context.Context, req calculator.Request) (*service.Outcome, error)
	Report(ctx context.Context, req calculator.Request) (*service.Outcome, []byte, error)
	Locate(ctx context.Context, subdivision string) (location.Entry, error)
	Zones() []zone.Profile
	Zone(code zone.Code) (zone.Profile, error)
}

// Handler wires subsidy endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a subsidy handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts subsidy endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/calculate", h.HandleCalculate)
	r.Post("/calculate/report", h.HandleReport)
	r.Get("/zones", h.HandleListZones)
	r.Get("/zones/{code}", h.HandleGetZone)
	r.Get("/locations/resolve", h.HandleResolve)
}

// HandleCalculate handles POST /calculate. The emailed report is queued, not
// sent inline.
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CalculateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	out, err := h.service.Process(ctx, req.Parsed())
	if err != nil {
		h.logFailure(ctx, "subsidy calculation failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "subsidy calculated",
		"request_id", requestID,
		"client_ip", requestcontext.ClientIP(ctx),
		"user_agent", requestcontext.UserAgent(ctx),
		"report_id", out.ReportID.String(),
		"zone", out.Zone.String(),
		"delivery", string(out.Delivery),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromOutcome(out))
}

// HandleReport handles POST /calculate/report and streams the PDF.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CalculateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	out, pdf, err := h.service.Report(ctx, req.Parsed())
	if err != nil {
		h.logFailure(ctx, "subsidy report failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "subsidy report rendered",
		"request_id", requestID,
		"client_ip", requestcontext.ClientIP(ctx),
		"user_agent", requestcontext.UserAgent(ctx),
		"report_id", out.ReportID.String(),
		"zone", out.Zone.String(),
		"bytes", len(pdf),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Header().Set("X-Report-ID", out.ReportID.String())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.logger.WarnContext(ctx, "failed to write report",
			"request_id", requestID,
			"error", err,
		)
	}
}

// HandleListZones handles GET /zones.
func (h *Handler) HandleListZones(w http.ResponseWriter, r *http.Request) {
	profiles := h.service.Zones()
	resp := ZonesResponse{Zones: make([]ZoneResponse, 0, len(profiles))}
	for _, p := range profiles {
		resp.Zones = append(resp.Zones, FromProfile(p))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleGetZone handles GET /zones/{code}.
func (h *Handler) HandleGetZone(w http.ResponseWriter, r *http.Request) {
	code, err := zone.ParseCode(chi.URLParam(r, "code"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeNotFound, "zone not found"))
		return
	}
	p, err := h.service.Zone(code)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeNotFound, "zone not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(p))
}

// HandleResolve handles GET /locations/resolve?subdivision=.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.URL.Query().Get("subdivision")
	if name == "" {
		httputil.WriteError(w, dErrors.Field(dErrors.CodeInvalidInput, "subdivision", "subdivision is required"))
		return
	}
	entry, err := h.service.Locate(ctx, name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEntry(entry))
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg, requestID string, err error) {
	attrs := []any{
		"request_id", requestID,
		"client_ip", requestcontext.ClientIP(ctx),
		"user_agent", requestcontext.UserAgent(ctx),
		"code", string(dErrors.CodeOf(err)),
		"error", err,
	}
	if dErrors.HTTPStatus(dErrors.CodeOf(err)) < http.StatusInternalServerError {
		h.logger.WarnContext(ctx, msg, attrs...)
		return
	}
	h.logger.ErrorContext(ctx, msg, attrs...)
}
