package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/service"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/httputil"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/middleware"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/pagination"
)

// AdminHandler serves the moderation queue, analytics dashboard, and CSV
// export. Role checks happen in the services.
type AdminHandler struct {
	moderation *service.ModerationService
	analytics  *service.AnalyticsService
	export     *service.ExportService
	logger     *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(
	moderation *service.ModerationService,
	analytics *service.AnalyticsService,
	export *service.ExportService,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		moderation: moderation,
		analytics:  analytics,
		export:     export,
		logger:     logger,
	}
}

// PendingQueue handles GET /api/v1/admin/reviews/{kind}/pending
func (h *AdminHandler) PendingQueue(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r, 25, 100)

	reviews, total, err := h.moderation.ListPending(r.Context(),
		domain.Kind(chi.URLParam(r, "kind")),
		middleware.RoleFromContext(r.Context()),
		p.Page, p.PerPage,
	)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.ListResponse{
		Data: reviews,
		Meta: httputil.NewListMeta(total, p.Page, p.PerPage),
	})
}

// Dashboard handles GET /api/v1/admin/analytics
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("days must be an integer"), h.logger)
			return
		}
		days = parsed
	}

	dash, err := h.analytics.Dashboard(r.Context(), middleware.RoleFromContext(r.Context()), days)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: dash})
}

// Export handles GET /api/v1/admin/analytics/export
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	var kind *domain.Kind
	if v := r.URL.Query().Get("kind"); v != "" {
		k := domain.Kind(v)
		kind = &k
	}

	// Buffer the whole document so errors still produce a JSON response.
	var buf bytes.Buffer
	if err := h.export.WriteCSV(r.Context(), &buf, middleware.RoleFromContext(r.Context()), kind); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	filename := "reviews-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
