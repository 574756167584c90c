package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/openbanana/studio-server-go/internal/errors"
	"github.com/openbanana/studio-server-go/internal/model"
)

func TestGenerate(t *testing.T) {
	t.Run("sends OpenAI-compatible request and parses result", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotPayload map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"url": "https://img.example.com/a.png", "width": 1024, "height": 1024},
				},
			})
		}))
		defer server.Close()

		client := NewHTTPClient(5 * time.Second)
		result, err := client.Generate(context.Background(), GenerateRequest{
			Prompt:     "a banana in space",
			Model:      model.ModelNanoBanana,
			Size:       "1024x1024",
			Credential: Credential{APIKey: "sk-test", BaseURL: server.URL},
		})
		require.NoError(t, err)

		assert.Equal(t, "/v1/images/generations", gotPath)
		assert.Equal(t, "Bearer sk-test", gotAuth)
		assert.Equal(t, "a banana in space", gotPayload["prompt"])
		assert.Equal(t, "nano-banana", gotPayload["model"])
		assert.Equal(t, "1024x1024", gotPayload["size"])
		assert.Equal(t, float64(1024), gotPayload["width"])

		assert.Equal(t, "https://img.example.com/a.png", result.URL)
		assert.Equal(t, 1024, result.Width)
		assert.Equal(t, 1024, result.Height)
	})

	t.Run("recovers dimensions from size string in response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"url": "https://img.example.com/b.png", "size": "800x600"},
				},
			})
		}))
		defer server.Close()

		client := NewHTTPClient(5 * time.Second)
		result, err := client.Generate(context.Background(), GenerateRequest{
			Prompt:     "p",
			Model:      model.ModelGPT4oImage,
			Size:       "1024x1024",
			Credential: Credential{APIKey: "k", BaseURL: server.URL},
		})
		require.NoError(t, err)
		assert.Equal(t, 800, result.Width)
		assert.Equal(t, 600, result.Height)
	})

	t.Run("recovers dimensions from url query", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"url": "https://img.example.com/c.png?w=512&h=768"},
				},
			})
		}))
		defer server.Close()

		client := NewHTTPClient(5 * time.Second)
		result, err := client.Generate(context.Background(), GenerateRequest{
			Prompt:     "p",
			Model:      model.ModelGPT4oImage,
			Size:       "",
			Credential: Credential{APIKey: "k", BaseURL: server.URL},
		})
		require.NoError(t, err)
		assert.Equal(t, 512, result.Width)
		assert.Equal(t, 768, result.Height)
	})

	t.Run("falls back to requested size when response has none", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"url": "https://img.example.com/d.png"}},
			})
		}))
		defer server.Close()

		client := NewHTTPClient(5 * time.Second)
		result, err := client.Generate(context.Background(), GenerateRequest{
			Prompt:     "p",
			Model:      model.ModelGPT4oImage,
			Size:       "512x512",
			Credential: Credential{APIKey: "k", BaseURL: server.URL},
		})
		require.NoError(t, err)
		assert.Equal(t, 512, result.Width)
		assert.Equal(t, 512, result.Height)
	})

	t.Run("classifies auth failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewHTTPClient(5 * time.Second)
		_, err := client.Generate(context.Background(), GenerateRequest{
			Prompt:     "p",
			Model:      model.ModelGPT4oImage,
			Size:       "1024x1024",
			Credential: Credential{APIKey: "bad", BaseURL: server.URL},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rejected the API key")
	})

	t.Run("classifies server errors as upstream unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewHTTPClient(5 * time.Second)
		_, err := client.Generate(context.Background(), GenerateRequest{
			Prompt:     "p",
			Model:      model.ModelGPT4oImage,
			Size:       "1024x1024",
			Credential: Credential{APIKey: "sk-test", BaseURL: server.URL},
		})
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeUpstreamUnavailable, appErr.Code)
	})

	t.Run("classifies rate limiting as upstream unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewHTTPClient(5 * time.Second)
		_, err := client.Generate(context.Background(), GenerateRequest{
			Prompt:     "p",
			Model:      model.ModelGPT4oImage,
			Size:       "1024x1024",
			Credential: Credential{APIKey: "sk-test", BaseURL: server.URL},
		})
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeUpstreamUnavailable, appErr.Code)
	})

	t.Run("errors when response has no image", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
		}))
		defer server.Close()

		client := NewHTTPClient(5 * time.Second)
		_, err := client.Generate(context.Background(), GenerateRequest{
			Prompt:     "p",
			Model:      model.ModelGPT4oImage,
			Size:       "1024x1024",
			Credential: Credential{APIKey: "k", BaseURL: server.URL},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no image url")
	})
}

func TestEdit(t *testing.T) {
	t.Run("sends multipart request with reference images", func(t *testing.T) {
		var gotPath, gotPrompt string
		var gotFiles int

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, r.ParseMultipartForm(8<<20))
			gotPrompt = r.FormValue("prompt")
			gotFiles = len(r.MultipartForm.File["image"])

			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"url": "https://img.example.com/edit.png", "width": 640, "height": 480},
				},
			})
		}))
		defer server.Close()

		client := NewHTTPClient(5 * time.Second)
		result, err := client.Edit(context.Background(), EditRequest{
			Prompt: "make it blue",
			Model:  model.ModelNanoBananaHD,
			Size:   "640x480",
			Images: []InputImage{
				{Name: "a.png", Data: []byte{0x1}},
				{Name: "b.png", Data: []byte{0x2}},
			},
			Credential: Credential{APIKey: "k", BaseURL: server.URL},
		})
		require.NoError(t, err)

		assert.Equal(t, "/v1/images/edits", gotPath)
		assert.Equal(t, "make it blue", gotPrompt)
		assert.Equal(t, 2, gotFiles)
		assert.Equal(t, "https://img.example.com/edit.png", result.URL)
		assert.Equal(t, 640, result.Width)
	})
}
