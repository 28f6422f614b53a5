package engine

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/imadgeboyega/kiekky-kinship/internal/activity"
	"github.com/imadgeboyega/kiekky-kinship/internal/common/utils"
	"github.com/imadgeboyega/kiekky-kinship/internal/learning"
	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
	"github.com/imadgeboyega/kiekky-kinship/internal/profile"
)

const maxLimit = 50

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	var dto ScoreRequestDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.ErrorResponse(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Score(r.Context(), dto.ProfileA, dto.ProfileB)
	if err != nil {
		h.respondError(w, err, "Failed to score profiles")
		return
	}

	utils.SuccessResponse(w, result, http.StatusOK)
}

func (h *Handler) RecommendPeers(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	recs, err := h.service.RecommendPeers(r.Context(), chi.URLParam(r, "profileID"), limit)
	if err != nil {
		h.respondError(w, err, "Failed to recommend peers")
		return
	}

	utils.SuccessResponse(w, recs, http.StatusOK)
}

func (h *Handler) RecommendActivities(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	recs, err := h.service.RecommendActivities(r.Context(), chi.URLParam(r, "profileID"), limit)
	if err != nil {
		h.respondError(w, err, "Failed to recommend activities")
		return
	}

	utils.SuccessResponse(w, recs, http.StatusOK)
}

func (h *Handler) ActivityFit(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.ActivityFit(r.Context(), chi.URLParam(r, "profileID"), chi.URLParam(r, "activityID"))
	if err != nil {
		h.respondError(w, err, "Failed to evaluate activity")
		return
	}

	utils.SuccessResponse(w, rec, http.StatusOK)
}

func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var dto FeedbackBatchDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.ErrorResponse(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.service.SubmitFeedback(r.Context(), dto.Records)
	if err != nil {
		h.respondError(w, err, "Failed to record feedback")
		return
	}

	status := http.StatusAccepted
	if len(receipt.Accepted) == 0 {
		status = http.StatusUnprocessableEntity
	}
	utils.SuccessResponse(w, receipt, status)
}

func (h *Handler) GetActiveModel(w http.ResponseWriter, r *http.Request) {
	utils.SuccessResponse(w, ActiveModelResponse{
		Model:            h.service.ActiveModel(),
		ReferenceVersion: h.service.ReferenceVersion(),
	}, http.StatusOK)
}

func (h *Handler) GetDrafts(w http.ResponseWriter, r *http.Request) {
	utils.SuccessResponse(w, h.service.Drafts(), http.StatusOK)
}

func (h *Handler) ProposeModel(w http.ResponseWriter, r *http.Request) {
	proposal, err := h.service.ProposeModel(r.Context())
	if err != nil {
		h.respondError(w, err, "Failed to propose model update")
		return
	}

	status := http.StatusOK
	if proposal.Draft != nil {
		status = http.StatusCreated
	}
	utils.SuccessResponse(w, proposal, status)
}

func (h *Handler) ActivateModel(w http.ResponseWriter, r *http.Request) {
	var dto ActivateRequestDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.ErrorResponse(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	model, err := h.service.ActivateModel(r.Context(), chi.URLParam(r, "version"), dto.ExpectedActiveVersion)
	if err != nil {
		h.respondError(w, err, "Failed to activate model")
		return
	}

	utils.SuccessResponse(w, model, http.StatusOK)
}

func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	utils.SuccessResponse(w, h.service.Regions(), http.StatusOK)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":            "healthy",
		"reference_version": h.service.ReferenceVersion(),
		"model_version":     h.service.ActiveModel().Version,
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, profile.ErrProfileNotFound),
		errors.Is(err, matching.ErrMissingProfile),
		errors.Is(err, activity.ErrActivityNotFound),
		errors.Is(err, learning.ErrModelNotFound):
		utils.ErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, learning.ErrVersionConflict):
		utils.ErrorResponse(w, err.Error(), http.StatusConflict)
	case errors.Is(err, matching.ErrInvalidModelConfiguration):
		utils.ErrorResponse(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrSchedulerUnavailable):
		utils.ErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
	default:
		logging.Error().Err(err).Msg(fallback)
		utils.ErrorResponse(w, fallback, http.StatusInternalServerError)
	}
}

// parseLimit reads ?limit=. Absent means the engine default.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		utils.ErrorResponse(w, "limit must be an integer between 1 and 50", http.StatusBadRequest)
		return 0, false
	}
	return limit, true
}
