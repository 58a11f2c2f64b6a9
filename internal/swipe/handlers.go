package swipe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unimatch/campusmatch-backend/internal/auth"
	"github.com/unimatch/campusmatch-backend/internal/common/utils"
)

type Handler struct {
	service Service
	log     logrus.FieldLogger
}

func NewHandler(service Service, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{service: service, log: log}
}

func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cards, err := h.service.GetRecommendations(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get recommendations")
		return
	}

	utils.RespondWithData(w, http.StatusOK, cards)
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	h.handleSwipe(w, r, h.service.Like)
}

func (h *Handler) Pass(w http.ResponseWriter, r *http.Request) {
	h.handleSwipe(w, r, h.service.Pass)
}

func (h *Handler) SuperLike(w http.ResponseWriter, r *http.Request) {
	h.handleSwipe(w, r, h.service.SuperLike)
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.service.UndoLastSwipe(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to undo swipe")
		return
	}

	// Recoverable rejections (not premium, nothing to undo) still come back
	// as 200 with Success=false so the client can render the paywall.
	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.service.GetStats(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get swipe stats")
		return
	}

	utils.RespondWithData(w, http.StatusOK, stats)
}

func (h *Handler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var update FilterUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&update); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if update.AgeRangeMin != nil && update.AgeRangeMax != nil && *update.AgeRangeMin > *update.AgeRangeMax {
		utils.RespondWithError(w, http.StatusBadRequest, "age_range_min cannot exceed age_range_max")
		return
	}

	settings, err := h.service.UpdateFilters(r.Context(), userID, &update)
	if err != nil {
		if errors.Is(err, ErrPremiumRequired) {
			utils.RespondWithError(w, http.StatusForbidden, "Custom filters are a premium feature")
			return
		}
		h.respondServiceError(w, err, "Failed to update filters")
		return
	}

	utils.RespondWithData(w, http.StatusOK, settings)
}

func (h *Handler) CheckSwipeLimit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status, err := h.service.CheckSwipeLimit(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to check swipe limit")
		return
	}

	utils.RespondWithData(w, http.StatusOK, status)
}

// handleSwipe is the shared body for Like, Pass and SuperLike, which differ
// only in the service call.
func (h *Handler) handleSwipe(w http.ResponseWriter, r *http.Request,
	action func(ctx context.Context, userID, targetUserID uuid.UUID) (*SwipeResult, error)) {

	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TargetUserID == userID {
		utils.RespondWithError(w, http.StatusBadRequest, "Cannot swipe on yourself")
		return
	}

	result, err := action(r.Context(), userID, req.TargetUserID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to process swipe")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, ErrProfileNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	h.log.WithError(err).Error(fallback)
	utils.RespondWithError(w, http.StatusInternalServerError, fallback)
}
