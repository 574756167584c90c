package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/openbanana/studio-server-go/internal/errors"
	"github.com/openbanana/studio-server-go/internal/model"
	"github.com/openbanana/studio-server-go/internal/util"
)

// Credential is one upstream API credential: either the system's shared key
// or a user's personal key.
type Credential struct {
	APIKey  string
	BaseURL string
}

// Result is one normalized upstream image. Width/Height are zero when the
// upstream response did not include usable dimensions.
type Result struct {
	URL    string
	Width  int
	Height int
	// Tokens is the upstream-reported token usage, zero when not reported.
	Tokens int64
}

type GenerateRequest struct {
	Prompt     string
	Model      model.ImageModel
	Size       string
	Credential Credential
}

// InputImage is one reference image attached to an edit request.
type InputImage struct {
	Name string
	Data []byte
}

type EditRequest struct {
	Prompt     string
	Model      model.ImageModel
	Size       string
	Images     []InputImage
	Credential Credential
}

// Client produces images via an OpenAI-compatible image API.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (*Result, error)
	Edit(ctx context.Context, req EditRequest) (*Result, error)
}

type HTTPClient struct {
	httpClient *http.Client
}

func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	payload := map[string]any{
		"model":           string(req.Model),
		"prompt":          req.Prompt,
		"n":               1,
		"size":            req.Size,
		"response_format": "url",
	}
	// Some OpenAI-compatible backends (SD/MJ wrappers) want explicit
	// width/height fields next to the size string.
	if w, h, ok := util.ParseSize(req.Size); ok {
		payload["width"] = w
		payload["height"] = h
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	endpoint, err := joinURL(req.Credential.BaseURL, "/v1/images/generations")
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.Credential.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, req.Size)
}

func (c *HTTPClient) Edit(ctx context.Context, req EditRequest) (*Result, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("prompt", req.Prompt); err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}
	if err := form.WriteField("model", string(req.Model)); err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}
	if err := form.WriteField("n", "1"); err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}
	if err := form.WriteField("response_format", "url"); err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}
	if req.Size != "" {
		if err := form.WriteField("size", req.Size); err != nil {
			return nil, fmt.Errorf("write form: %w", err)
		}
		if w, h, ok := util.ParseSize(req.Size); ok {
			_ = form.WriteField("width", strconv.Itoa(w))
			_ = form.WriteField("height", strconv.Itoa(h))
		}
	}

	for _, img := range req.Images {
		part, err := form.CreateFormFile("image", img.Name)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, fmt.Errorf("write form file: %w", err)
		}
	}

	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	endpoint, err := joinURL(req.Credential.BaseURL, "/v1/images/edits")
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.Credential.APIKey)
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	return c.do(httpReq, req.Size)
}

// imagesResponse matches the OpenAI images API response shape.
type imagesResponse struct {
	Data []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Size   string `json:"size"`
	} `json:"data"`
	Usage *struct {
		TotalTokens int64 `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *HTTPClient) do(req *http.Request, requestedSize string) (*Result, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.UpstreamUnavailable(fmt.Errorf("upstream request: %w", err))
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		log.Warn().
			Int("status", resp.StatusCode).
			Str("body", truncateBody(rawBody)).
			Msg("upstream returned error status")
		return nil, classifyStatus(resp.StatusCode, rawBody)
	}

	var parsed imagesResponse
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode upstream response: %w (body=%s)", err, truncateBody(rawBody))
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("upstream error: %s", parsed.Error.Message)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return nil, fmt.Errorf("upstream returned no image url")
	}

	item := parsed.Data[0]
	result := &Result{URL: item.URL, Width: item.Width, Height: item.Height}
	if parsed.Usage != nil {
		result.Tokens = parsed.Usage.TotalTokens
	}

	// Recover dimensions the upstream buried in a size string or in the URL
	// query, falling back to the requested size label.
	if result.Width == 0 || result.Height == 0 {
		if w, h, ok := util.ParseSize(item.Size); ok {
			result.Width, result.Height = w, h
		} else if w, h, ok := dimsFromURL(item.URL); ok {
			result.Width, result.Height = w, h
		} else if w, h, ok := util.ParseSize(requestedSize); ok {
			result.Width, result.Height = w, h
		}
	}

	return result, nil
}

func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("upstream rejected the API key (status %d)", status)
	case status == http.StatusTooManyRequests:
		return apperrors.UpstreamUnavailable(fmt.Errorf("upstream rate limit exceeded (status %d)", status))
	case status >= 500:
		return apperrors.UpstreamUnavailable(fmt.Errorf("upstream error: status=%d body=%s", status, truncateBody(body)))
	default:
		return fmt.Errorf("upstream error: status=%d body=%s", status, truncateBody(body))
	}
}

func dimsFromURL(raw string) (int, int, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, 0, false
	}
	q := u.Query()
	w := firstNonEmpty(q.Get("w"), q.Get("width"))
	h := firstNonEmpty(q.Get("h"), q.Get("height"))
	if w == "" || h == "" {
		return 0, 0, false
	}
	width, err1 := strconv.Atoi(w)
	height, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinURL(base, endpoint string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("upstream base URL is not configured")
	}
	baseURL, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

const maxLoggedBodyBytes = 512

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxLoggedBodyBytes {
		return s[:maxLoggedBodyBytes] + "..."
	}
	return s
}
