package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/service"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/httputil"
)

// PublicHandler serves the unauthenticated read-only API. Only approved
// reviews are ever visible here.
type PublicHandler struct {
	query  *service.QueryService
	stats  *service.StatsService
	logger *slog.Logger
}

// NewPublicHandler creates a new public HTTP handler.
func NewPublicHandler(query *service.QueryService, stats *service.StatsService, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{
		query:  query,
		stats:  stats,
		logger: logger,
	}
}

// List handles GET /public/v1/reviews/{kind}
func (h *PublicHandler) List(w http.ResponseWriter, r *http.Request) {
	q := listQueryFromRequest(r)
	q.AuthorID = ""

	result, err := h.query.ListPublic(r.Context(), domain.Kind(chi.URLParam(r, "kind")), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeListResult(w, result)
}

// Get handles GET /public/v1/reviews/{kind}/{id}
func (h *PublicHandler) Get(w http.ResponseWriter, r *http.Request) {
	review, err := h.query.GetPublic(r.Context(), domain.Kind(chi.URLParam(r, "kind")), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// Stats handles GET /public/v1/reviews/{kind}/stats/{targetId}
func (h *PublicHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.GetRatingStats(r.Context(),
		domain.Kind(chi.URLParam(r, "kind")),
		chi.URLParam(r, "targetId"),
	)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}
