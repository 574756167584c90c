package handler

import (
	"net/http"
	"time"

	"github.com/openbanana/studio-server-go/internal/httputil"
	"github.com/openbanana/studio-server-go/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

func formatUser(u *model.User) map[string]any {
	return map[string]any{
		"id":                u.ID,
		"username":          u.Username,
		"email":             u.Email,
		"role":              u.Role,
		"drawing_points":    u.DrawingPoints,
		"creation_count":    u.CreationCount,
		"token_count":       u.TokenCount,
		"checkin_count":     u.CheckinCount,
		"last_checkin_date": formatDate(u.LastCheckinDate),
		"created_at":        u.CreatedAt.Format(time.RFC3339),
	}
}

func formatCreation(c model.Creation) map[string]any {
	return map[string]any{
		"id":         c.ID,
		"prompt":     c.Prompt,
		"url":        c.ImageURL,
		"model":      c.Model,
		"size":       c.Size,
		"created_at": c.CreatedAt.Format(time.RFC3339),
	}
}

func formatCreations(creations []model.Creation) []map[string]any {
	out := make([]map[string]any, 0, len(creations))
	for _, c := range creations {
		out = append(out, formatCreation(c))
	}
	return out
}
