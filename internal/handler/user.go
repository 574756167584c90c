package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openbanana/studio-server-go/internal/middleware"
	"github.com/openbanana/studio-server-go/internal/service"
)

type UserHandler struct {
	userService    *service.UserService
	checkInService *service.CheckInService
}

func NewUserHandler(userService *service.UserService, checkInService *service.CheckInService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		checkInService: checkInService,
	}
}

func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/info", h.Info)
	r.Post("/checkin", h.CheckIn)
	r.Get("/checkin/status", h.CheckInStatus)
	r.Get("/api-key", h.GetAPIKey)
	r.Post("/api-key", h.SaveAPIKey)
	r.Delete("/api-key", h.DeleteAPIKey)
	r.Post("/api-key/test", h.TestAPIKey)

	return r
}

// GET /api/user/info
func (h *UserHandler) Info(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUser(r.Context())

	info, err := h.userService.Info(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := formatUser(info.User)
	payload["can_checkin"] = info.CanCheckIn
	payload["has_api_key"] = info.HasPersonalKey

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    payload,
	})
}

// POST /api/user/checkin
func (h *UserHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUser(r.Context())

	result, err := h.checkInService.CheckIn(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"points_earned":     result.PointsEarned,
		"total_points":      result.TotalPoints,
		"checkin_count":     result.CheckinCount,
		"last_checkin_date": result.LastCheckinDate,
	})
}

// GET /api/user/checkin/status
func (h *UserHandler) CheckInStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUser(r.Context())

	can, err := h.checkInService.CanCheckIn(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"can_checkin": can,
	})
}

// GET /api/user/api-key
func (h *UserHandler) GetAPIKey(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUser(r.Context())

	info, err := h.userService.GetAPIKey(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if info == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"has_api_key": false,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"has_api_key":  true,
		"api_key":      info.MaskedKey,
		"api_base_url": info.BaseURL,
		"updated_at":   info.UpdatedAt,
	})
}

// POST /api/user/api-key
func (h *UserHandler) SaveAPIKey(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUser(r.Context())

	var req struct {
		APIKey     string `json:"api_key"`
		APIBaseURL string `json:"api_base_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	info, err := h.userService.SaveAPIKey(r.Context(), claims.UserID, req.APIKey, req.APIBaseURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"api_key":      info.MaskedKey,
		"api_base_url": info.BaseURL,
	})
}

// DELETE /api/user/api-key
func (h *UserHandler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUser(r.Context())

	if err := h.userService.DeleteAPIKey(r.Context(), claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// POST /api/user/api-key/test
func (h *UserHandler) TestAPIKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := h.userService.TestAPIKey(r.Context(), req.APIKey); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "API key looks valid",
	})
}
