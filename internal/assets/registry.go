// Package assets loads individual media assets.
//
// The Registry dispatches on the asset kind through a closed switch: images
// are decoded, audio and video are content-sniffed, models are checked for a
// glTF header, and everything else only has to be fetched. Every load runs
// under a mandatory timeout and failures are returned as data on the asset,
// never as errors.
package assets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/mrlokans/bookar/internal/entities"
)

// DefaultTimeout bounds a single asset load when no timeout is configured.
const DefaultTimeout = 30 * time.Second

type Options struct {
	// Timeout for a single asset load. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxConcurrency caps parallel loads in LoadAll. Zero means unbounded.
	MaxConcurrency int
}

type Registry struct {
	fetcher        Fetcher
	timeout        time.Duration
	maxConcurrency int

	attempts atomic.Int64
}

func NewRegistry(fetcher Fetcher, opts Options) *Registry {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxConcurrency < 0 {
		opts.MaxConcurrency = 0
	}
	return &Registry{
		fetcher:        fetcher,
		timeout:        opts.Timeout,
		maxConcurrency: opts.MaxConcurrency,
	}
}

// Attempts reports how many loads required I/O since the registry was created.
func (r *Registry) Attempts() int64 {
	return r.attempts.Load()
}

// Load attempts one asset and returns a copy of it in the LOADED or ERROR
// state. Link assets and assets without a source succeed without I/O.
func (r *Registry) Load(ctx context.Context, asset *entities.Asset) *entities.Asset {
	if asset.Kind == entities.AssetKindLink || asset.Src == "" {
		return asset.WithStatus(entities.StatusLoaded, nil)
	}

	r.attempts.Add(1)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("loader panic: %v", rec)
			}
		}()
		done <- r.fetchAndDecode(ctx, asset)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err == nil {
		return asset.WithStatus(entities.StatusLoaded, nil)
	}

	info := r.describe(asset, err)
	log.Printf("[ASSETS] Failed to load %s (%s): %s", asset.ID, asset.Src, info.Msg)
	return asset.WithStatus(entities.StatusError, info)
}

// LoadAll loads every asset concurrently and waits for all of them to settle.
// A failing asset never aborts its siblings. Results keep the input order.
func (r *Registry) LoadAll(ctx context.Context, assets []*entities.Asset) []*entities.Asset {
	results := make([]*entities.Asset, len(assets))
	if len(assets) == 0 {
		return results
	}

	p := pool.New()
	if r.maxConcurrency > 0 {
		p = p.WithMaxGoroutines(r.maxConcurrency)
	}
	for i, asset := range assets {
		i, asset := i, asset
		p.Go(func() {
			results[i] = r.Load(ctx, asset)
		})
	}
	p.Wait()

	return results
}

func (r *Registry) fetchAndDecode(ctx context.Context, asset *entities.Asset) error {
	data, err := r.fetcher.Fetch(ctx, asset.Src)
	if err != nil {
		return err
	}

	switch asset.Kind {
	case entities.AssetKindImage:
		return decodeImage(data)
	case entities.AssetKindVideo:
		return decodeMedia(data, "video")
	case entities.AssetKindAudio:
		return decodeMedia(data, "audio")
	case entities.AssetKindModel:
		return decodeModel(data)
	default:
		return decodeGeneric(data)
	}
}

func (r *Registry) describe(asset *entities.Asset, err error) *entities.ErrorInfo {
	info := &entities.ErrorInfo{
		Code:   entities.ErrorCodeAssetLoadFailed,
		Msg:    err.Error(),
		Type:   entities.ErrorTypeWarning,
		Source: asset.ID,
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		info.Code = entities.ErrorCodeTimeout
		info.Msg = fmt.Sprintf("timeout loading asset: %s", asset.Src)
	case errors.Is(err, context.Canceled):
		info.Msg = fmt.Sprintf("loading cancelled: %s", asset.Src)
	}
	return info
}
