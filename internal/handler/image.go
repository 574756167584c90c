package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/openbanana/studio-server-go/internal/config"
	"github.com/openbanana/studio-server-go/internal/middleware"
	"github.com/openbanana/studio-server-go/internal/model"
	"github.com/openbanana/studio-server-go/internal/service"
	"github.com/openbanana/studio-server-go/internal/upstream"
)

type ImageHandler struct {
	genService          *service.GenerationService
	announcementService *service.AnnouncementService
	inspirationService  *service.InspirationService
}

func NewImageHandler(
	genService *service.GenerationService,
	announcementService *service.AnnouncementService,
	inspirationService *service.InspirationService,
) *ImageHandler {
	return &ImageHandler{
		genService:          genService,
		announcementService: announcementService,
		inspirationService:  inspirationService,
	}
}

func (h *ImageHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/models", h.Models)
	r.Post("/generate", h.Generate)
	r.Post("/edit", h.Edit)
	r.Get("/history", h.History)
	r.Delete("/creations/{id}", h.DeleteCreation)

	return r
}

// GET /api/image/models
func (h *ImageHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"models":  model.SupportedModels,
	})
}

// POST /api/image/generate
func (h *ImageHandler) Generate(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUser(r.Context())

	var req struct {
		Prompt string `json:"prompt"`
		Model  string `json:"model"`
		Size   string `json:"size"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Count  int    `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	result, err := h.genService.Generate(r.Context(), claims.UserID, service.GenerateParams{
		Prompt: req.Prompt,
		Model:  model.ImageModel(req.Model),
		Size:   req.Size,
		Width:  req.Width,
		Height: req.Height,
		Count:  req.Count,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"images":           formatCreations(result.Creations),
		"remaining_points": result.RemainingPoints,
		"used_api_key":     result.UsedPersonalKey,
	})
}

// POST /api/image/edit (multipart/form-data)
func (h *ImageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUser(r.Context())

	if err := r.ParseMultipartForm(config.MaxUploadBodyBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid multipart form"})
		return
	}

	images, err := readUploadedImages(r)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read uploaded reference images")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Could not read uploaded images"})
		return
	}

	width, _ := strconv.Atoi(r.FormValue("width"))
	height, _ := strconv.Atoi(r.FormValue("height"))

	result, err := h.genService.Edit(r.Context(), claims.UserID, service.EditParams{
		Prompt: r.FormValue("prompt"),
		Model:  model.ImageModel(r.FormValue("model")),
		Size:   r.FormValue("size"),
		Width:  width,
		Height: height,
		Images: images,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"images":           formatCreations(result.Creations),
		"remaining_points": result.RemainingPoints,
		"used_api_key":     result.UsedPersonalKey,
	})
}

// readUploadedImages collects reference images from the "images" field,
// falling back to a single "image" field for older clients.
func readUploadedImages(r *http.Request) ([]upstream.InputImage, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["image"]
	}

	var images []upstream.InputImage
	for _, header := range headers {
		img, err := readUploadedImage(header)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func readUploadedImage(header *multipart.FileHeader) (upstream.InputImage, error) {
	file, err := header.Open()
	if err != nil {
		return upstream.InputImage{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return upstream.InputImage{}, err
	}

	name := header.Filename
	if name == "" {
		name = "image.png"
	}
	return upstream.InputImage{Name: name, Data: data}, nil
}

// GET /api/image/history
func (h *ImageHandler) History(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUser(r.Context())
	pagination := ParsePagination(r)

	creations, err := h.genService.History(r.Context(), claims.UserID, pagination.Limit, pagination.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"images":  formatCreations(creations),
		"limit":   pagination.Limit,
		"offset":  pagination.Offset,
	})
}

// DELETE /api/image/creations/{id}
func (h *ImageHandler) DeleteCreation(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.genService.DeleteCreation(r.Context(), claims.UserID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GET /api/announcement (public)
func (h *ImageHandler) LatestAnnouncement(w http.ResponseWriter, r *http.Request) {
	ann, err := h.announcementService.Latest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"announcement": ann,
	})
}

// GET /api/inspirations (public)
func (h *ImageHandler) Inspirations(w http.ResponseWriter, r *http.Request) {
	items, err := h.inspirationService.Feed(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"inspirations": items,
	})
}
