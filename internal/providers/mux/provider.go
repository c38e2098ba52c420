package mux

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"reel/internal/asset"
	"reel/internal/config"
	"reel/internal/fileutil"
	"reel/internal/logging"
	"reel/internal/services"
	"reel/internal/store"
	"reel/internal/throttle"
	"reel/internal/transform"
)

// ProviderName is the registry key for the Mux backend.
const ProviderName = "mux"

// errNoPlaybackID signals a ready report that arrived before any playback id.
// The poll loop keeps waiting; sources may only be written together with the
// terminal ready status.
var errNoPlaybackID = errors.New("asset ready without a playback id")

// Provider drives assets through the Mux direct-upload pipeline: create an
// upload session (throttled), push the bytes, then poll until Mux reports the
// derived asset ready or errored. Every identifier learned along the way is
// persisted immediately so a restart resumes from the last persisted step
// instead of repeating completed ones.
type Provider struct {
	cfg    *config.Config
	store  *store.Store
	queue  *throttle.Queue
	logger *slog.Logger

	pollInterval time.Duration

	mu     sync.Mutex
	client *Client
}

// New builds the Mux provider. The client is created lazily so a config
// without Mux credentials only fails when a Mux upload is actually attempted.
func New(cfg *config.Config, st *store.Store, queue *throttle.Queue, logger *slog.Logger) *Provider {
	pollInterval := time.Duration(cfg.Workflow.PollIntervalMS) * time.Millisecond
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Provider{
		cfg:          cfg,
		store:        st,
		queue:        queue,
		logger:       logging.NewComponentLogger(logger, "mux"),
		pollInterval: pollInterval,
	}
}

// Name implements providers.Provider.
func (p *Provider) Name() string { return ProviderName }

// UploadLocalFile pushes a local video through the direct-upload flow. An
// asset that already carries persisted Mux identifiers re-enters the flow at
// the matching step.
func (p *Provider) UploadLocalFile(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
	if a.IsTerminal() {
		return a, nil
	}
	client, err := p.ensureClient()
	if err != nil {
		return nil, err
	}

	if assetID := a.MetadataString(ProviderName, "assetId"); assetID != "" {
		return p.pollAsset(ctx, client, a.OriginalFilePath, assetID)
	}
	if uploadID := a.MetadataString(ProviderName, "uploadId"); uploadID != "" {
		return p.resumeUpload(ctx, client, a, uploadID)
	}

	upload, err := p.createUpload(ctx, client)
	if err != nil {
		return nil, err
	}
	updated, err := p.store.Update(ctx, a.OriginalFilePath, map[string]any{
		"status": asset.StatusUploading,
		"providerMetadata": map[string]any{
			ProviderName: map[string]any{
				"uploadId":  upload.ID,
				"uploadUrl": upload.URL,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("direct upload created",
		logging.String(logging.FieldSource, a.OriginalFilePath),
		logging.String("upload_id", upload.ID))

	if err := p.putFile(ctx, upload.URL, updated.OriginalFilePath); err != nil {
		return nil, err
	}
	if _, err := p.store.Update(ctx, a.OriginalFilePath, map[string]any{
		"status": asset.StatusProcessing,
	}); err != nil {
		return nil, err
	}
	return p.awaitAsset(ctx, client, a.OriginalFilePath, upload.ID)
}

// UploadRemoteFile hands a remote URL straight to Mux via ingest-by-URL; the
// bytes never pass through this process.
func (p *Provider) UploadRemoteFile(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
	if a.IsTerminal() {
		return a, nil
	}
	client, err := p.ensureClient()
	if err != nil {
		return nil, err
	}

	if assetID := a.MetadataString(ProviderName, "assetId"); assetID != "" {
		return p.pollAsset(ctx, client, a.OriginalFilePath, assetID)
	}

	var remote *APIAsset
	err = p.queue.Do(ctx, func(ctx context.Context) error {
		created, createErr := client.CreateRemoteAsset(ctx, a.OriginalFilePath)
		if createErr != nil {
			return createErr
		}
		remote = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := p.store.Update(ctx, a.OriginalFilePath, map[string]any{
		"status": asset.StatusProcessing,
		"providerMetadata": map[string]any{
			ProviderName: map[string]any{"assetId": remote.ID},
		},
	}); err != nil {
		return nil, err
	}
	p.logger.Info("remote ingest started",
		logging.String(logging.FieldSource, a.OriginalFilePath),
		logging.String("mux_asset_id", remote.ID))
	return p.pollAsset(ctx, client, a.OriginalFilePath, remote.ID)
}

// createUpload runs the session-creation call through the throttle queue so
// bursts of discovered files stay inside the provider's pacing.
func (p *Provider) createUpload(ctx context.Context, client *Client) (*Upload, error) {
	var upload *Upload
	err := p.queue.Do(ctx, func(ctx context.Context) error {
		created, createErr := client.CreateDirectUpload(ctx, uuid.NewString())
		if createErr != nil {
			return createErr
		}
		upload = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return upload, nil
}

// resumeUpload re-enters the flow for an asset that persisted an upload
// session but no Mux asset id. When the session never received the bytes the
// put is repeated; the session URL stays valid until Mux times it out.
func (p *Provider) resumeUpload(ctx context.Context, client *Client, a *asset.Asset, uploadID string) (*asset.Asset, error) {
	upload, err := client.GetUpload(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	switch upload.Status {
	case uploadStatusErrored, uploadStatusCancelled, uploadStatusTimedOut:
		return p.failAsset(ctx, a.OriginalFilePath, map[string]any{
			"type":     "upload_" + upload.Status,
			"messages": []string{"direct upload did not complete"},
		})
	}

	if upload.AssetID == "" {
		uploadURL := upload.URL
		if uploadURL == "" {
			uploadURL = a.MetadataString(ProviderName, "uploadUrl")
		}
		if uploadURL == "" {
			return nil, services.Wrap(services.ErrTransient, "mux", "resume",
				"upload session has no URL to retry", nil)
		}
		if err := p.putFile(ctx, uploadURL, a.OriginalFilePath); err != nil {
			return nil, err
		}
	}
	if a.Status == asset.StatusUploading && upload.AssetID != "" {
		if _, err := p.store.Update(ctx, a.OriginalFilePath, map[string]any{
			"status": asset.StatusProcessing,
		}); err != nil {
			return nil, err
		}
	}
	return p.awaitAsset(ctx, client, a.OriginalFilePath, uploadID)
}

// awaitAsset polls the upload session until Mux mints the asset id, persists
// it, then follows the asset to a terminal state.
func (p *Provider) awaitAsset(ctx context.Context, client *Client, source, uploadID string) (*asset.Asset, error) {
	assetID := ""
	for assetID == "" {
		upload, err := client.GetUpload(ctx, uploadID)
		if err != nil {
			return nil, err
		}
		switch upload.Status {
		case uploadStatusErrored, uploadStatusCancelled, uploadStatusTimedOut:
			return p.failAsset(ctx, source, map[string]any{
				"type":     "upload_" + upload.Status,
				"messages": []string{"direct upload did not complete"},
			})
		}
		if upload.AssetID != "" {
			assetID = upload.AssetID
			break
		}
		if err := p.wait(ctx); err != nil {
			return nil, err
		}
	}

	if _, err := p.store.Update(ctx, source, map[string]any{
		"status":           asset.StatusProcessing,
		"providerMetadata": map[string]any{ProviderName: map[string]any{"assetId": assetID}},
	}); err != nil {
		return nil, err
	}
	return p.pollAsset(ctx, client, source, assetID)
}

// pollAsset follows a Mux asset until it is ready or errored. The playback id
// is persisted as soon as it appears, before readiness, so a crash between
// the two still leaves the record resumable without re-querying history.
func (p *Provider) pollAsset(ctx context.Context, client *Client, source, assetID string) (*asset.Asset, error) {
	playbackPersisted := false
	for {
		remote, err := client.GetAsset(ctx, assetID)
		if err != nil {
			return nil, err
		}

		if !playbackPersisted && len(remote.PlaybackIDs) > 0 {
			if _, err := p.store.Update(ctx, source, store.MetadataPatch(ProviderName, map[string]any{
				"playbackId": remote.PlaybackIDs[0].ID,
			})); err != nil {
				return nil, err
			}
			playbackPersisted = true
		}

		switch remote.Status {
		case assetStatusReady:
			finished, err := p.finishAsset(ctx, source)
			if errors.Is(err, errNoPlaybackID) {
				break
			}
			return finished, err
		case assetStatusErrored:
			failure := map[string]any{"type": "asset_errored"}
			if remote.Errors != nil {
				failure["type"] = remote.Errors.Type
				failure["messages"] = remote.Errors.Messages
			}
			return p.failAsset(ctx, source, failure)
		}

		if err := p.wait(ctx); err != nil {
			return nil, err
		}
	}
}

// finishAsset derives playback sources from the persisted metadata and writes
// the terminal ready record. A ready report without a playback id yields
// errNoPlaybackID instead of a sourceless terminal record.
func (p *Provider) finishAsset(ctx context.Context, source string) (*asset.Asset, error) {
	current, err := p.store.Get(ctx, source)
	if err != nil {
		return nil, err
	}
	derived := transform.Mux(*current)
	if len(derived.Sources) == 0 {
		return nil, errNoPlaybackID
	}
	patch := map[string]any{
		"status":  asset.StatusReady,
		"sources": derived.Sources,
	}
	if derived.Poster != "" {
		patch["poster"] = derived.Poster
	}
	updated, err := p.store.Update(ctx, source, patch)
	if err != nil {
		return nil, err
	}
	p.logger.Info("asset ready",
		logging.String(logging.FieldSource, source),
		logging.String("playback_id", updated.MetadataString(ProviderName, "playbackId")))
	return updated, nil
}

// failAsset records a terminal provider failure and returns the matching
// error so the caller classifies it as non-retryable.
func (p *Provider) failAsset(ctx context.Context, source string, failure map[string]any) (*asset.Asset, error) {
	updated, err := p.store.Update(ctx, source, map[string]any{
		"status": asset.StatusError,
		"error":  failure,
	})
	if err != nil {
		return nil, err
	}
	p.logger.Warn("asset errored",
		logging.String(logging.FieldSource, source),
		logging.Any("failure", failure))
	return updated, services.Wrap(services.ErrProviderFailed, "mux", "process",
		fmt.Sprintf("provider reported %v for %s", failure["type"], source), nil)
}

// putFile streams the video bytes to the upload session URL. Raw byte pushes
// are not throttled; only job-creation calls are.
func (p *Provider) putFile(ctx context.Context, uploadURL, source string) error {
	path := p.resolveLocalPath(source)
	file, err := os.Open(path)
	if err != nil {
		return services.Wrap(services.ErrValidation, "mux", "upload", "open source file", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat source file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", fileutil.ContentTypeForName(path))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "mux", "upload", "put bytes", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return services.Wrap(services.ErrTransient, "mux", "upload",
			fmt.Sprintf("upload target returned %s", resp.Status), nil)
	}
	p.logger.Info("bytes uploaded",
		logging.String(logging.FieldSource, source),
		logging.Int64("size", info.Size()))
	return nil
}

func (p *Provider) resolveLocalPath(source string) string {
	if filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(p.cfg.Paths.VideosDir, source)
}

func (p *Provider) ensureClient() (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	client, err := NewClient(p.cfg.Mux)
	if err != nil {
		return nil, err
	}
	p.client = client
	return client, nil
}

func (p *Provider) wait(ctx context.Context) error {
	timer := time.NewTimer(p.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
