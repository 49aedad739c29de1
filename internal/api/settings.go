package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Rapor/internal/events"
	"github.com/MikeSquared-Agency/Rapor/internal/grading"
	"github.com/MikeSquared-Agency/Rapor/internal/metrics"
	"github.com/MikeSquared-Agency/Rapor/internal/store"
)

type SettingsHandler struct {
	store    store.Store
	events   events.Client
	defaults grading.WeightConfig
	logger   *slog.Logger
}

func NewSettingsHandler(s store.Store, e events.Client, defaults grading.WeightConfig, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{store: s, events: e, defaults: defaults, logger: logger}
}

type WeightsResponse struct {
	grading.WeightConfig
	Source    string     `json:"source"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// activeWeights returns the saved configuration, or the configured defaults
// when nothing has been saved yet.
func activeWeights(ctx context.Context, s store.Store, defaults grading.WeightConfig) (*store.WeightSettings, string, error) {
	ws, err := s.GetWeightConfig(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load weights: %w", err)
	}
	if ws == nil {
		return &store.WeightSettings{Weights: defaults}, "default", nil
	}
	return ws, "saved", nil
}

// GetWeights handles GET /api/v1/settings/weights
func (h *SettingsHandler) GetWeights(w http.ResponseWriter, r *http.Request) {
	ws, source, err := activeWeights(r.Context(), h.store, h.defaults)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := WeightsResponse{WeightConfig: ws.Weights, Source: source, UpdatedBy: ws.UpdatedBy}
	if !ws.UpdatedAt.IsZero() {
		resp.UpdatedAt = &ws.UpdatedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

type UpdateWeightsRequest struct {
	Harian *float64 `json:"harian_weight" validate:"required"`
	UTS    *float64 `json:"uts_weight" validate:"required"`
	UAS    *float64 `json:"uas_weight" validate:"required"`
}

// PutWeights handles PUT /api/v1/settings/weights. The save is all or
// nothing: an invalid configuration is never persisted.
func (h *SettingsHandler) PutWeights(w http.ResponseWriter, r *http.Request) {
	var req UpdateWeightsRequest
	if err := decodeRequest(r, &req); err != nil {
		metrics.WeightConfigSaves.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := grading.WeightConfig{Harian: *req.Harian, UTS: *req.UTS, UAS: *req.UAS}
	if err := grading.ValidateWeightConfig(cfg); err != nil {
		metrics.WeightConfigSaves.WithLabelValues("invalid").Inc()
		var iw *grading.InvalidWeightConfigError
		if errors.As(err, &iw) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":      iw.Error(),
				"reason":     "invalid_weight_config",
				"actual_sum": iw.ActualSum,
			})
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ws := &store.WeightSettings{Weights: cfg, UpdatedBy: r.Header.Get(userIDHeader)}
	if err := h.store.SaveWeightConfig(r.Context(), ws); err != nil {
		metrics.WeightConfigSaves.WithLabelValues("error").Inc()
		h.logger.Error("failed to save weights", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save weights")
		return
	}
	metrics.WeightConfigSaves.WithLabelValues("saved").Inc()
	h.logger.Info("weights updated",
		"harian", cfg.Harian, "uts", cfg.UTS, "uas", cfg.UAS,
		"updated_by", ws.UpdatedBy,
	)

	if h.events != nil {
		if err := h.events.Publish(events.SubjectWeightsUpdated, events.WeightsUpdatedEvent{
			Weights:   cfg,
			UpdatedBy: ws.UpdatedBy,
			Timestamp: ws.UpdatedAt,
		}); err != nil {
			h.logger.Warn("failed to publish weights update", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, WeightsResponse{
		WeightConfig: cfg,
		Source:       "saved",
		UpdatedBy:    ws.UpdatedBy,
		UpdatedAt:    &ws.UpdatedAt,
	})
}

// Predicates handles GET /api/v1/grading/predicates
func (h *SettingsHandler) Predicates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, grading.Bands())
}
