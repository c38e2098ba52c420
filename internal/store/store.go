package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"reel/internal/asset"
	"reel/internal/config"
	"reel/internal/services"
)

// ErrInvalidTransition is returned when an update would move an asset's
// status backward through the lifecycle or out of a terminal state.
var ErrInvalidTransition = errors.New("invalid status transition")

// Store reads and writes asset sidecar files under the videos directory.
type Store struct {
	videosDir string
	remoteDir string
}

// Open builds a Store rooted at the configured videos directory.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil || strings.TrimSpace(cfg.Paths.VideosDir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "paths.videos_dir is not set", nil)
	}
	return &Store{
		videosDir: cfg.Paths.VideosDir,
		remoteDir: cfg.RemoteSidecarDir(),
	}, nil
}

// Create writes a new sidecar only if none exists for the asset's source.
// When a record already exists the stored asset is returned with
// created=false; duplicate creation is a silent no-op so concurrent
// discovery of the same file is safe.
func (s *Store) Create(ctx context.Context, a *asset.Asset) (*asset.Asset, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if a == nil || strings.TrimSpace(a.OriginalFilePath) == "" {
		return nil, false, services.Wrap(services.ErrValidation, "store", "create", "asset requires an originalFilePath", nil)
	}

	path := s.SidecarPath(a.OriginalFilePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, false, fmt.Errorf("create sidecar directory: %w", err)
	}

	raw, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, false, fmt.Errorf("encode asset: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			existing, readErr := s.Get(ctx, a.OriginalFilePath)
			if readErr != nil {
				return nil, false, readErr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create sidecar: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(raw); err != nil {
		return nil, false, fmt.Errorf("write sidecar: %w", err)
	}
	if err := file.Sync(); err != nil {
		return nil, false, fmt.Errorf("sync sidecar: %w", err)
	}

	created := *a
	return &created, true, nil
}

// Get reads the asset record for a source.
func (s *Store) Get(ctx context.Context, source string) (*asset.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.readSidecar(s.SidecarPath(source))
}

// Update deep-merges a partial patch into the stored record, stamps
// updatedAt, and writes the result back atomically. A status field in the
// patch is validated against the transition graph; a backward move fails
// with ErrInvalidTransition and leaves the record untouched.
func (s *Store) Update(ctx context.Context, source string, patch map[string]any) (*asset.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.SidecarPath(source)

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "store", "update", fmt.Sprintf("no sidecar for %s", source), nil)
		}
		return nil, fmt.Errorf("read sidecar: %w", err)
	}

	document := map[string]any{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("decode sidecar %s: %w", path, err)
	}

	if err := validateStatusChange(document, patch); err != nil {
		return nil, err
	}

	normalized, err := normalizePatch(patch)
	if err != nil {
		return nil, fmt.Errorf("normalize patch: %w", err)
	}

	document = deepMerge(document, normalized)
	document["updatedAt"] = time.Now().UnixMilli()

	merged, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sidecar: %w", err)
	}
	if err := renameio.WriteFile(path, merged, 0o644); err != nil {
		return nil, fmt.Errorf("write sidecar: %w", err)
	}

	var updated asset.Asset
	if err := json.Unmarshal(merged, &updated); err != nil {
		return nil, fmt.Errorf("decode merged sidecar: %w", err)
	}
	return &updated, nil
}

// List returns every asset tracked under the videos directory, ordered by
// source path. Sidecar files that do not decode as assets are skipped.
func (s *Store) List(ctx context.Context) ([]*asset.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var assets []*asset.Asset
	walk := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !IsSidecar(d.Name()) {
			return nil
		}
		a, readErr := s.readSidecar(path)
		if readErr != nil || a.OriginalFilePath == "" {
			return nil
		}
		assets = append(assets, a)
		return nil
	}
	if err := filepath.WalkDir(s.videosDir, walk); err != nil {
		return nil, fmt.Errorf("list sidecars: %w", err)
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].OriginalFilePath < assets[j].OriginalFilePath
	})
	return assets, nil
}

func (s *Store) readSidecar(path string) (*asset.Asset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "store", "read", fmt.Sprintf("no sidecar at %s", path), nil)
		}
		return nil, fmt.Errorf("read sidecar: %w", err)
	}
	var a asset.Asset
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode sidecar %s: %w", path, err)
	}
	return &a, nil
}

func validateStatusChange(document, patch map[string]any) error {
	value, present := patch["status"]
	if !present {
		return nil
	}
	next, ok := asset.ParseStatus(statusString(value))
	if !ok {
		return services.Wrap(services.ErrValidation, "store", "update", fmt.Sprintf("unknown status %v", value), nil)
	}
	current, ok := asset.ParseStatus(statusString(document["status"]))
	if !ok {
		// A sidecar with a corrupt status accepts any known status so an
		// operator can repair it.
		return nil
	}
	if !asset.CanTransition(current, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}
	return nil
}

func statusString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case asset.Status:
		return string(typed)
	default:
		return ""
	}
}

// MetadataPatch builds an update patch that merges fields into the metadata
// bag of one provider without touching sibling keys.
func MetadataPatch(provider string, fields map[string]any) map[string]any {
	return map[string]any{
		"providerMetadata": map[string]any{provider: fields},
	}
}
