// Package caption asks a captioning service to describe images.
package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/wethinkt/go-pikeru/internal/thumb"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

// Captioner describes one image.
type Captioner interface {
	Caption(ctx context.Context, path string) (string, error)
	Online(ctx context.Context) bool
}

// ErrOffline is returned when the service cannot be reached.
var ErrOffline = errors.New("caption: service offline")

// Endpoints understood by Client.
const (
	EndpointCaption     = "/caption"
	EndpointInterrogate = "/sdapi/v1/interrogate"
)

const (
	DefaultURL   = "http://127.0.0.1:7860"
	DefaultModel = "clip"

	// maxUpload is the longest side of the image sent for captioning.
	maxUpload      = 512
	requestTimeout = 2 * time.Minute
)

// Client talks to an HTTP captioning service that takes
// {"image": base64, "model": name} and answers {"caption": text}.
type Client struct {
	BaseURL  string
	Endpoint string
	Model    string
	HTTP     *http.Client
}

// NewClient returns a Client with defaults filled in.
func NewClient(baseURL, endpoint, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if endpoint == "" {
		endpoint = EndpointCaption
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Endpoint: endpoint,
		Model:    model,
		HTTP:     &http.Client{Timeout: requestTimeout},
	}
}

type request struct {
	Image string `json:"image"`
	Model string `json:"model"`
}

type response struct {
	Caption string `json:"caption"`
}

// Caption uploads the image at path and returns the service's caption.
func (c *Client) Caption(ctx context.Context, path string) (string, error) {
	payload, err := encodeImage(path)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(request{Image: payload, Model: c.Model})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrOffline, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("caption service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	tuilog.Log.Debug("Captioned image", "path", path, "caption", out.Caption)
	return strings.TrimSpace(out.Caption), nil
}

// Online reports whether the service answers at all.
func (c *Client) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return false
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return true
}

// encodeImage returns the base64 PNG of path scaled to maxUpload. Files
// the decoders do not know are sent as they are.
func encodeImage(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return base64.StdEncoding.EncodeToString(raw), nil
	}
	b := img.Bounds()
	if b.Dx() <= maxUpload && b.Dy() <= maxUpload {
		return base64.StdEncoding.EncodeToString(raw), nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb.Fit(img, maxUpload)); err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
