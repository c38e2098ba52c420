package mux

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reel/internal/config"
	"reel/internal/services"
)

// Upload is a direct-upload session as reported by the Mux API.
type Upload struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	AssetID string `json:"asset_id"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// PlaybackID is one playback identity attached to a Mux asset.
type PlaybackID struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

// AssetErrors is the failure payload Mux attaches to an errored asset.
type AssetErrors struct {
	Type     string   `json:"type"`
	Messages []string `json:"messages"`
}

// APIAsset is the remote asset record returned by the Mux video API.
type APIAsset struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	PlaybackIDs []PlaybackID `json:"playback_ids"`
	Errors      *AssetErrors `json:"errors"`
}

// Remote asset statuses reported by the API.
const (
	assetStatusReady   = "ready"
	assetStatusErrored = "errored"

	uploadStatusErrored   = "errored"
	uploadStatusCancelled = "cancelled"
	uploadStatusTimedOut  = "timed_out"
)

// Client is a minimal Mux video API client covering direct uploads and asset
// status reads.
type Client struct {
	baseURL     string
	tokenID     string
	tokenSecret string
	corsOrigin  string
	httpClient  *http.Client
}

// NewClient builds a client from the Mux configuration section. Credentials
// must be present; callers gate on that before constructing one.
func NewClient(cfg config.Mux) (*Client, error) {
	if strings.TrimSpace(cfg.TokenID) == "" || strings.TrimSpace(cfg.TokenSecret) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "mux", "client", "token_id and token_secret are required", nil)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.mux.com"
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		tokenID:     cfg.TokenID,
		tokenSecret: cfg.TokenSecret,
		corsOrigin:  cfg.CORSOrigin,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

// CreateDirectUpload opens a direct-upload session. passthrough is echoed
// back on the created asset so records can be correlated out of band.
func (c *Client) CreateDirectUpload(ctx context.Context, passthrough string) (*Upload, error) {
	body := map[string]any{
		"cors_origin": c.corsOrigin,
		"new_asset_settings": map[string]any{
			"playback_policy": []string{"public"},
			"passthrough":     passthrough,
		},
	}
	var upload Upload
	if err := c.doJSON(ctx, http.MethodPost, "/video/v1/uploads", body, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

// GetUpload reads a direct-upload session.
func (c *Client) GetUpload(ctx context.Context, uploadID string) (*Upload, error) {
	var upload Upload
	if err := c.doJSON(ctx, http.MethodGet, "/video/v1/uploads/"+uploadID, nil, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

// CreateRemoteAsset asks Mux to ingest a source by URL, skipping the byte
// upload entirely.
func (c *Client) CreateRemoteAsset(ctx context.Context, sourceURL string) (*APIAsset, error) {
	body := map[string]any{
		"input":           []map[string]any{{"url": sourceURL}},
		"playback_policy": []string{"public"},
	}
	var remote APIAsset
	if err := c.doJSON(ctx, http.MethodPost, "/video/v1/assets", body, &remote); err != nil {
		return nil, err
	}
	return &remote, nil
}

// GetAsset reads a remote asset record.
func (c *Client) GetAsset(ctx context.Context, assetID string) (*APIAsset, error) {
	var remote APIAsset
	if err := c.doJSON(ctx, http.MethodGet, "/video/v1/assets/"+assetID, nil, &remote); err != nil {
		return nil, err
	}
	return &remote, nil
}

// envelope matches the {"data": ...} wrapper the Mux API puts around every
// successful response.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

type apiError struct {
	Error struct {
		Type     string   `json:"type"`
		Messages []string `json:"messages"`
	} `json:"error"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.tokenID, c.tokenSecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "mux", method+" "+path, "request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrTransient, "mux", method+" "+path, "read response", err)
	}

	if resp.StatusCode >= 400 {
		message := apiMessage(payload)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return services.Wrap(services.ErrConfiguration, "mux", method+" "+path, message, nil)
		}
		return services.Wrap(services.ErrTransient, "mux", method+" "+path,
			fmt.Sprintf("status %d: %s", resp.StatusCode, message), nil)
	}

	if out == nil {
		return nil
	}
	var wrapped envelope
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return fmt.Errorf("decode response envelope: %w", err)
	}
	if err := json.Unmarshal(wrapped.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func apiMessage(payload []byte) string {
	var decoded apiError
	if err := json.Unmarshal(payload, &decoded); err == nil && len(decoded.Error.Messages) > 0 {
		return strings.Join(decoded.Error.Messages, "; ")
	}
	return strings.TrimSpace(string(payload))
}
