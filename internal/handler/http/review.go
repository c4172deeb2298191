package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/service"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/httputil"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/middleware"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/validator"
)

// ReviewHandler handles the authenticated review API.
type ReviewHandler struct {
	moderation *service.ModerationService
	votes      *service.VoteService
	query      *service.QueryService
	stats      *service.StatsService
	logger     *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(
	moderation *service.ModerationService,
	votes *service.VoteService,
	query *service.QueryService,
	stats *service.StatsService,
	logger *slog.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		moderation: moderation,
		votes:      votes,
		query:      query,
		stats:      stats,
		logger:     logger,
	}
}

// --- Request DTOs ---

// SubmitReviewRequest is the JSON request body for submitting a review.
type SubmitReviewRequest struct {
	TargetID string   `json:"target_id" validate:"required"`
	Rating   int      `json:"rating" validate:"gte=0,lte=5"`
	Title    string   `json:"title" validate:"max=255"`
	Body     string   `json:"body" validate:"required"`
	Photos   []string `json:"photos" validate:"max=10,dive,url"`
}

// EditReviewRequest is the JSON request body for editing a review.
type EditReviewRequest struct {
	Rating int      `json:"rating" validate:"gte=0,lte=5"`
	Title  string   `json:"title" validate:"max=255"`
	Body   string   `json:"body" validate:"required"`
	Photos []string `json:"photos" validate:"max=10,dive,url"`
}

// VoteRequest is the JSON request body for a helpfulness vote.
type VoteRequest struct {
	Helpful *bool `json:"helpful" validate:"required"`
}

// RespondRequest is the JSON request body for an owner response.
type RespondRequest struct {
	Response string `json:"response" validate:"required,max=2000"`
}

// UpdateStatusRequest is the JSON request body for a moderation decision.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected dismissed"`
}

// ReportAbuseRequest is the JSON request body for flagging a review.
type ReportAbuseRequest struct {
	Reason  string `json:"reason" validate:"required,oneof=spam offensive fake other"`
	Details string `json:"details" validate:"max=1000"`
}

// --- Handlers ---

// Submit handles POST /api/v1/reviews/{kind}
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.moderation.Submit(r.Context(), &service.SubmitReviewInput{
		Kind:     domain.Kind(chi.URLParam(r, "kind")),
		TargetID: req.TargetID,
		AuthorID: middleware.UserIDFromContext(r.Context()),
		Rating:   req.Rating,
		Title:    req.Title,
		Body:     req.Body,
		Photos:   req.Photos,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// List handles GET /api/v1/reviews/{kind}
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	q := listQueryFromRequest(r)

	result, err := h.query.List(r.Context(), domain.Kind(chi.URLParam(r, "kind")), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeListResult(w, result)
}

// Get handles GET /api/v1/reviews/{kind}/{id}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	review, err := h.query.Get(r.Context(), domain.Kind(chi.URLParam(r, "kind")), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// Edit handles PATCH /api/v1/reviews/{kind}/{id}
func (h *ReviewHandler) Edit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req EditReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.moderation.Edit(r.Context(), &service.EditReviewInput{
		Kind:      domain.Kind(chi.URLParam(r, "kind")),
		ReviewID:  chi.URLParam(r, "id"),
		ActorID:   middleware.UserIDFromContext(r.Context()),
		ActorRole: middleware.RoleFromContext(r.Context()),
		Rating:    req.Rating,
		Title:     req.Title,
		Body:      req.Body,
		Photos:    req.Photos,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// Delete handles DELETE /api/v1/reviews/{kind}/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.moderation.Delete(r.Context(),
		domain.Kind(chi.URLParam(r, "kind")),
		chi.URLParam(r, "id"),
		middleware.UserIDFromContext(r.Context()),
		middleware.RoleFromContext(r.Context()),
	)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Vote handles POST /api/v1/reviews/{kind}/{id}/vote
func (h *ReviewHandler) Vote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.votes.Vote(r.Context(),
		domain.Kind(chi.URLParam(r, "kind")),
		chi.URLParam(r, "id"),
		middleware.UserIDFromContext(r.Context()),
		*req.Helpful,
	)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Respond handles POST /api/v1/reviews/{kind}/{id}/response
func (h *ReviewHandler) Respond(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.moderation.Respond(r.Context(), &service.RespondInput{
		Kind:      domain.Kind(chi.URLParam(r, "kind")),
		ReviewID:  chi.URLParam(r, "id"),
		ActorID:   middleware.UserIDFromContext(r.Context()),
		ActorRole: middleware.RoleFromContext(r.Context()),
		Response:  req.Response,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// UpdateStatus handles PUT /api/v1/reviews/{kind}/{id}/status
func (h *ReviewHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.moderation.UpdateStatus(r.Context(),
		domain.Kind(chi.URLParam(r, "kind")),
		chi.URLParam(r, "id"),
		req.Status,
		middleware.UserIDFromContext(r.Context()),
		middleware.RoleFromContext(r.Context()),
	)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// Report handles POST /api/v1/reviews/{kind}/{id}/report
func (h *ReviewHandler) Report(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req ReportAbuseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	report, err := h.moderation.ReportAbuse(r.Context(), &service.ReportAbuseInput{
		Kind:       domain.Kind(chi.URLParam(r, "kind")),
		ReviewID:   chi.URLParam(r, "id"),
		ReporterID: middleware.UserIDFromContext(r.Context()),
		Reason:     req.Reason,
		Details:    req.Details,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: report})
}

// Stats handles GET /api/v1/reviews/{kind}/stats/{targetId}
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
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

// --- Helpers ---

func listQueryFromRequest(r *http.Request) service.ListQuery {
	values := r.URL.Query()

	q := service.ListQuery{
		TargetID:  values.Get("target_id"),
		AuthorID:  values.Get("author_id"),
		Sentiment: values.Get("sentiment"),
		Sort:      values.Get("sort"),
	}
	if v := values.Get("rating"); v != "" {
		if rating, err := strconv.Atoi(v); err == nil {
			q.Rating = rating
		}
	}
	if v := values.Get("has_photos"); v == "true" || v == "false" {
		hasPhotos := v == "true"
		q.HasPhotos = &hasPhotos
	}
	if values.Get("verified_only") == "true" {
		q.VerifiedOnly = true
	}
	if v := values.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			q.Page = page
		}
	}
	if v := values.Get("per_page"); v != "" {
		if perPage, err := strconv.Atoi(v); err == nil {
			q.PerPage = perPage
		}
	}
	return q
}

func writeListResult(w http.ResponseWriter, result *service.ListResult) {
	meta := httputil.NewListMeta(result.Total, result.Page, result.PerPage)
	meta.StarCounts = result.StarCounts
	httputil.WriteJSON(w, http.StatusOK, httputil.ListResponse{
		Data: result.Reviews,
		Meta: meta,
	})
}
