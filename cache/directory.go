package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/goliatone/go-plaid/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const keyPrefix = "go-plaid::directory::v1"

// Reader is the slice of *core.Client the directory decorates.
type Reader interface {
	Search(ctx context.Context, req core.SearchRequest) (core.Result, error)
	GetInstitutionByID(ctx context.Context, institutionID string) (core.Result, error)
	SearchByProduct(ctx context.Context, product string) (core.Result, error)
	Categories(ctx context.Context, categoryID string) (core.Result, error)
}

// InstitutionDirectory caches institution and category reference data.
// Remote error envelopes and failures are never cached. Cached values are
// shared between callers and must be treated as read-only.
type InstitutionDirectory struct {
	reader Reader
	cache  repositorycache.CacheService
}

func NewInstitutionDirectory(reader Reader, cacheService repositorycache.CacheService) (*InstitutionDirectory, error) {
	if reader == nil {
		return nil, fmt.Errorf("cache: directory reader is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("cache: cache service is required")
	}
	return &InstitutionDirectory{reader: reader, cache: cacheService}, nil
}

// NewCacheService builds the in-memory go-repository-cache service with the
// library defaults.
func NewCacheService() (repositorycache.CacheService, error) {
	return repositorycache.NewCacheService(repositorycache.DefaultConfig())
}

// Key returns go-plaid::directory::v1::<kind>::<segment>... with each
// segment trimmed and escaped. Case is kept; ":" is escaped so a segment
// cannot forge the separator.
func Key(kind string, segments ...string) string {
	parts := []string{keyPrefix, escapeSegment(kind)}
	for _, segment := range segments {
		parts = append(parts, escapeSegment(segment))
	}
	return strings.Join(parts, "::")
}

func (d *InstitutionDirectory) GetInstitutionByID(ctx context.Context, institutionID string) (core.Result, error) {
	if err := d.ready(); err != nil {
		return core.Result{}, err
	}
	return d.fetch(ctx, Key(core.OpInstitutionsGetByID, institutionID), func(ctx context.Context) (core.Result, error) {
		return d.reader.GetInstitutionByID(ctx, institutionID)
	})
}

func (d *InstitutionDirectory) Search(ctx context.Context, req core.SearchRequest) (core.Result, error) {
	if err := d.ready(); err != nil {
		return core.Result{}, err
	}
	products := make([]string, 0, len(req.Products))
	for _, product := range req.Products {
		products = append(products, normalizeSegment(product))
	}
	slices.Sort(products)
	key := Key(core.OpInstitutionsSearch, req.Query, strings.Join(products, ","))
	return d.fetch(ctx, key, func(ctx context.Context) (core.Result, error) {
		return d.reader.Search(ctx, req)
	})
}

func (d *InstitutionDirectory) SearchByProduct(ctx context.Context, product string) (core.Result, error) {
	if err := d.ready(); err != nil {
		return core.Result{}, err
	}
	return d.fetch(ctx, Key(core.OpInstitutionsByProduct, product), func(ctx context.Context) (core.Result, error) {
		return d.reader.SearchByProduct(ctx, product)
	})
}

func (d *InstitutionDirectory) Categories(ctx context.Context, categoryID string) (core.Result, error) {
	if err := d.ready(); err != nil {
		return core.Result{}, err
	}
	return d.fetch(ctx, Key(core.OpCategoriesGet, categoryID), func(ctx context.Context) (core.Result, error) {
		return d.reader.Categories(ctx, categoryID)
	})
}

// InvalidateInstitution drops the cached GetInstitutionByID entry.
func (d *InstitutionDirectory) InvalidateInstitution(ctx context.Context, institutionID string) error {
	if err := d.ready(); err != nil {
		return err
	}
	return d.cache.Delete(ctx, Key(core.OpInstitutionsGetByID, institutionID))
}

// InvalidateCategories drops the cached entry for categoryID, or the full
// listing when categoryID is empty.
func (d *InstitutionDirectory) InvalidateCategories(ctx context.Context, categoryID string) error {
	if err := d.ready(); err != nil {
		return err
	}
	return d.cache.Delete(ctx, Key(core.OpCategoriesGet, categoryID))
}

func (d *InstitutionDirectory) ready() error {
	if d == nil || d.reader == nil || d.cache == nil {
		return fmt.Errorf("cache: institution directory is not configured")
	}
	return nil
}

// uncacheable carries a remote error result out of GetOrFetch so it is
// returned to the caller without being stored.
type uncacheable struct {
	result core.Result
}

func (u *uncacheable) Error() string {
	return "cache: remote error result for " + u.result.Operation
}

func (d *InstitutionDirectory) fetch(
	ctx context.Context,
	key string,
	load func(ctx context.Context) (core.Result, error),
) (core.Result, error) {
	result, err := repositorycache.GetOrFetch(ctx, d.cache, key, func(ctx context.Context) (core.Result, error) {
		fetched, fetchErr := load(ctx)
		if fetchErr != nil {
			return core.Result{}, fetchErr
		}
		if fetched.Remote != nil {
			return core.Result{}, &uncacheable{result: fetched}
		}
		return fetched, nil
	})
	if err != nil {
		var remote *uncacheable
		if errors.As(err, &remote) {
			return remote.result, nil
		}
		return core.Result{}, err
	}
	return result, nil
}

func normalizeSegment(value string) string {
	return strings.TrimSpace(value)
}

func escapeSegment(value string) string {
	return strings.ReplaceAll(url.PathEscape(normalizeSegment(value)), ":", "%3A")
}
