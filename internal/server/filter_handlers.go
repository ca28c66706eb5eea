package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/uniformedi/dlpgate/internal/chat"
	"github.com/uniformedi/dlpgate/internal/filter"
	"github.com/uniformedi/dlpgate/internal/redact"
	"github.com/uniformedi/dlpgate/internal/telemetry"
)

// filterFunc is either Engine.Inlet or Engine.Outlet.
type filterFunc func(ctx context.Context, body *chat.Body, requestID string) filter.Outcome

func (s *Server) handleInlet(w http.ResponseWriter, r *http.Request) {
	s.handleFilter(w, r, "inlet", s.engine.Inlet)
}

func (s *Server) handleOutlet(w http.ResponseWriter, r *http.Request) {
	s.handleFilter(w, r, "outlet", s.engine.Outlet)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request, direction string, run filterFunc) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "invalid_request_error")
		return
	}

	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", requestID)

	cfg := s.cfgs.Snapshot()
	r.Body = http.MaxBytesReader(w, r.Body, cfg.Server.MaxBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "invalid_request_error")
		return
	}

	var body chat.Body
	if err := json.Unmarshal(raw, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "invalid_request_error")
		return
	}

	ctx, span := s.telemetry.Tracer().Start(r.Context(), "dlpgate.filter."+direction)
	defer span.End()

	start := time.Now()
	outcome := run(ctx, &body, requestID)
	elapsed := time.Since(start)

	switch o := outcome.(type) {
	case filter.Pass:
		s.recordOutcome(span, direction, "pass", outcome, elapsed)
		w.Header().Set("X-DLP-Outcome", "pass")
		if !o.Modified {
			// Byte-identical echo when nothing changed.
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(raw)
			return
		}
		writeBody(w, o.Body)

	case filter.Blocked:
		s.recordOutcome(span, direction, "blocked", outcome, elapsed)
		w.Header().Set("X-DLP-Outcome", "blocked")
		writeError(w, http.StatusUnprocessableEntity, o.Reason, "dlp_blocked")

	case filter.Redacted:
		s.recordOutcome(span, direction, "redacted", outcome, elapsed)
		w.Header().Set("X-DLP-Outcome", "redacted")
		writeBody(w, o.Body)

	default:
		writeError(w, http.StatusInternalServerError, "unknown filter outcome", "internal_error")
	}
}

// recordOutcome annotates the request span and emits the filter metrics.
// Attributes go through the telemetry denylist; counts only, never content.
func (s *Server) recordOutcome(span trace.Span, direction, name string, outcome filter.Outcome, elapsed time.Duration) {
	report := outcome.Summary()
	span.SetAttributes(telemetry.SafeAttributes(map[string]interface{}{
		"dlpgate.direction":     direction,
		"dlpgate.outcome":       name,
		"dlpgate.findings":      len(report.Detections),
		"dlpgate.skipped_files": len(report.SkippedFiles),
	})...)
	if s.telemetry == nil {
		return
	}
	s.telemetry.RecordFilterMetrics(
		direction,
		name,
		s.cfgs.Snapshot().Filter.NormalizedMode(),
		float64(elapsed.Microseconds())/1000.0,
		len(report.Detections),
		len(report.SkippedFiles),
	)
}

func writeBody(w http.ResponseWriter, body *chat.Body) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		redact.Logf("dlp: failed to write response body: %v", err)
	}
}
