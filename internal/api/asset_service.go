package api

import (
	"context"
	"errors"
	"strings"

	"reel/internal/asset"
	"reel/internal/services"
	"reel/internal/store"
)

// AssetService exposes read and lookup-or-create operations over the sidecar
// store for API consumers.
type AssetService struct {
	store *store.Store
}

// NewAssetService constructs the service.
func NewAssetService(st *store.Store) *AssetService {
	return &AssetService{store: st}
}

// List returns tracked assets, optionally filtered to the given statuses.
func (s *AssetService) List(ctx context.Context, statuses ...asset.Status) ([]asset.Asset, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]asset.Asset, 0, len(records))
	for _, record := range records {
		if len(statuses) > 0 && !statusMatches(record.Status, statuses) {
			continue
		}
		out = append(out, *record)
	}
	return out, nil
}

// Describe returns the record for one source, or nil when none exists.
func (s *AssetService) Describe(ctx context.Context, source string) (*asset.Asset, error) {
	record, err := s.store.Get(ctx, source)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// LookupOrCreate registers a remote-URL source, returning the existing record
// when the URL is already tracked. Fresh records start sourced: the caller
// decides whether to dispatch them for processing.
func (s *AssetService) LookupOrCreate(ctx context.Context, url, provider string) (*asset.Asset, bool, error) {
	url = strings.TrimSpace(url)
	if !asset.IsRemoteSource(url) {
		return nil, false, services.Wrap(services.ErrValidation, "api", "create-asset",
			"url must be an http(s) source", nil)
	}
	record := asset.New(asset.StatusSourced, url, provider, 0)
	stored, created, err := s.store.Create(ctx, record)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// Counts tallies tracked assets per status.
func (s *AssetService) Counts(ctx context.Context) (map[string]int, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(asset.AllStatuses()))
	for _, record := range records {
		counts[string(record.Status)]++
	}
	return counts, nil
}

func statusMatches(status asset.Status, wanted []asset.Status) bool {
	for _, candidate := range wanted {
		if status == candidate {
			return true
		}
	}
	return false
}
