// Package handler exposes the dossier pipeline over HTTP.
package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/dossier"
	dErrors "github.com/stinkypony1968-a11y/physician-dossier/pkg/domain-errors"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/httputil"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/requestcontext"
)

// Service defines the dossier operations the handler depends on.
type Service interface {
	BuildDossier(ctx context.Context, req dossier.Request) (dossier.Dossier, error)
}

const (
	formatJSON = "json"
	formatXLSX = "xlsx"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler wires dossier endpoints to the pipeline service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a dossier handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts dossier endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/dossiers", h.HandleBuild)
	r.Post("/dossiers/export", h.HandleExport)
}

// HandleBuild handles POST /v1/dossiers requests.
func (h *Handler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[BuildRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.BuildDossier(ctx, req.ToPipelineRequest())
	if err != nil {
		h.logger.WarnContext(ctx, "dossier build rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "dossier request served",
		"request_id", requestID,
		"resolved", result.Identity.Found,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromDossier(result))
}

// HandleExport handles POST /v1/dossiers/export requests. The dossier is
// rendered fully into memory before any byte is written, so export failures
// still produce a clean error response instead of a truncated attachment.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatJSON
	}
	if format != formatJSON && format != formatXLSX {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "format must be json or xlsx"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[BuildRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.BuildDossier(ctx, req.ToPipelineRequest())
	if err != nil {
		h.logger.WarnContext(ctx, "dossier export rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	contentType := "application/json"
	if format == formatXLSX {
		contentType = contentTypeXLSX
		err = dossier.ExportWorkbook(&buf, result)
	} else {
		err = dossier.ExportJSON(&buf, result)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "dossier export failed",
			"request_id", requestID,
			"format", format,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "export failed"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(result, format)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func exportFilename(d dossier.Dossier, format string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(d.Name.Full), " ", "-"))
	if slug == "" {
		return "dossier." + format
	}
	return "dossier-" + slug + "." + format
}
