package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openbanana/studio-server-go/internal/service"
)

type AdminHandler struct {
	adminService        *service.AdminService
	announcementService *service.AnnouncementService
	inspirationService  *service.InspirationService
}

func NewAdminHandler(
	adminService *service.AdminService,
	announcementService *service.AnnouncementService,
	inspirationService *service.InspirationService,
) *AdminHandler {
	return &AdminHandler{
		adminService:        adminService,
		announcementService: announcementService,
		inspirationService:  inspirationService,
	}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/stats", h.Stats)
	r.Get("/users", h.ListUsers)
	r.Post("/users/{id}/points", h.AdjustPoints)
	r.Delete("/users/{id}", h.DeleteUser)
	r.Get("/announcements", h.ListAnnouncements)
	r.Post("/announcements", h.CreateAnnouncement)
	r.Put("/announcements/{id}/active", h.SetAnnouncementActive)
	r.Delete("/announcements/{id}", h.DeleteAnnouncement)
	r.Get("/inspirations", h.ListInspirations)
	r.Post("/inspirations", h.CreateInspiration)
	r.Delete("/inspirations/{id}", h.DeleteInspiration)

	return r
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	pagination := ParsePagination(r)

	users, total, err := h.adminService.ListUsers(r.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	formatted := make([]map[string]any, 0, len(users))
	for i := range users {
		formatted = append(formatted, formatUser(&users[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   formatted,
		"total":   total,
		"limit":   pagination.Limit,
		"offset":  pagination.Offset,
	})
}

// POST /api/admin/users/{id}/points
func (h *AdminHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	user, err := h.adminService.AdjustPoints(r.Context(), id, req.Delta)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    formatUser(user),
	})
}

// DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.adminService.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GET /api/admin/announcements
func (h *AdminHandler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	anns, err := h.announcementService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"announcements": anns,
	})
}

// POST /api/admin/announcements
func (h *AdminHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content     string `json:"content"`
		IsImportant bool   `json:"isImportant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	ann, err := h.announcementService.Create(r.Context(), req.Content, req.IsImportant)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"announcement": ann,
	})
}

// PUT /api/admin/announcements/{id}/active
func (h *AdminHandler) SetAnnouncementActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid announcement id"})
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := h.announcementService.SetActive(r.Context(), id, req.Active); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GET /api/admin/inspirations
func (h *AdminHandler) ListInspirations(w http.ResponseWriter, r *http.Request) {
	items, err := h.inspirationService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"inspirations": items,
	})
}

// POST /api/admin/inspirations
func (h *AdminHandler) CreateInspiration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL    string `json:"url"`
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	item, err := h.inspirationService.Create(r.Context(), req.URL, req.Prompt)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"inspiration": item,
	})
}

// DELETE /api/admin/inspirations/{id}
func (h *AdminHandler) DeleteInspiration(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid inspiration id"})
		return
	}

	if err := h.inspirationService.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DELETE /api/admin/announcements/{id}
func (h *AdminHandler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid announcement id"})
		return
	}

	if err := h.announcementService.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
