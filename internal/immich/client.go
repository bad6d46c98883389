package immich

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"immich-slideshow/internal/immich/api"
)

// unlimitedLookbackDays stands in for "no lookback limit" when days is
// configured to 0. Roughly 100 years.
const unlimitedLookbackDays = 36500

// Client provides a typed API for the slideshow's view of an immich server:
// random recent searches, "on this day" memories, per-asset detail, and asset
// bytes with seamless in-memory caching.
type Client struct {
	remote  remoteClient
	cache   byteCache
	baseURL string
}

// remoteClient is the raw upstream surface the Client consumes.
type remoteClient interface {
	ValidateToken(ctx context.Context) (bool, error)
	SearchRandom(ctx context.Context, req api.SearchRandomRequest) ([]api.SearchAsset, error)
	GetMemories(ctx context.Context, forDate time.Time) ([]api.Memory, error)
	GetAssetInfo(ctx context.Context, id api.AssetID) (*api.AssetInfo, error)
	DownloadAsset(ctx context.Context, id api.AssetID) ([]byte, error)
}

// byteCache stores downloaded asset bytes.
type byteCache interface {
	GetBytes(id AssetID) ([]byte, bool)
	StoreBytes(id AssetID, data []byte)
}

// clientOpt is used for configuring the [Client].
type clientOpt func(*Client)

// WithRemote adds a remote client built from the API configuration. Only one
// remote can be configured. If multiple are provided, the last is used.
func WithRemote(conf api.Config) clientOpt {
	return func(c *Client) {
		c.remote = api.NewClient(conf)
		c.baseURL = conf.BaseURL()
	}
}

// WithRemoteClient injects a pre-built remote client, keeping the base URL
// for deep links. Used by tests and by callers that tune the raw client.
func WithRemoteClient(remote remoteClient, baseURL string) clientOpt {
	return func(c *Client) {
		c.remote = remote
		c.baseURL = baseURL
	}
}

// WithInMemoryCache adds an in-memory cache for downloaded asset bytes, if
// configured. Only one in-memory cache can be configured. If multiple are
// provided, the last is used.
func WithInMemoryCache(conf InMemoryConfig) clientOpt {
	return func(c *Client) {
		if !conf.UseInMemoryCache {
			return
		}
		c.cache = newInMemoryCacheClient(conf)
	}
}

// NewClient initializes a new client with the provided options. See
// [WithRemote] and [WithInMemoryCache].
func NewClient(opts ...clientOpt) *Client {
	client := &Client{
		remote: noopClient{},
		cache:  noopCache{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Authenticate checks the configured API key. A false result means the server
// rejected the key; an error means the server could not be reached.
func (c *Client) Authenticate(ctx context.Context) (bool, error) {
	return c.remote.ValidateToken(ctx)
}

// PhotoURL returns the deep link for opening an asset in the immich web UI.
func (c *Client) PhotoURL(id AssetID) string {
	return c.baseURL + "/photos/" + string(id)
}

// SearchRandomRecent fetches up to count random images taken within the last
// days days, subject to the favorites filter. days <= 0 means no lookback
// limit.
func (c *Client) SearchRandomRecent(ctx context.Context, days, count int, filter FavoritesFilter) ([]AssetRecord, error) {
	if days <= 0 {
		days = unlimitedLookbackDays
	}
	assets, err := c.remote.SearchRandom(ctx, api.SearchRandomRequest{
		TakenAfter: time.Now().AddDate(0, 0, -days).Format(time.RFC3339),
		Type:       "IMAGE",
		Count:      count,
		IsFavorite: filter.isFavorite(),
	})
	if err != nil {
		return nil, err
	}
	records := make([]AssetRecord, 0, len(assets))
	for _, a := range assets {
		records = append(records, recordFromSearch(a, 0))
	}
	return records, nil
}

// MemoryAssets fetches all image assets from the "on this day" memories for
// the given date, flattened and annotated with their memory year. maxYears
// limits how far back memories may reach; 0 means unlimited.
func (c *Client) MemoryAssets(ctx context.Context, forDate time.Time, maxYears int) ([]AssetRecord, error) {
	memories, err := c.remote.GetMemories(ctx, forDate)
	if err != nil {
		return nil, err
	}
	return flattenMemories(memories, forDate.Year(), maxYears), nil
}

// flattenMemories collapses memory collections into a flat list of image
// records tagged with their memory year. Memories without a year, non-image
// assets, and memories older than maxYears are skipped.
func flattenMemories(memories []api.Memory, currentYear, maxYears int) []AssetRecord {
	var records []AssetRecord
	for _, memory := range memories {
		year := memory.Data.Year
		if year == 0 {
			continue
		}
		if maxYears > 0 && currentYear-year > maxYears {
			continue
		}
		for _, a := range memory.Assets {
			if a.Type != "IMAGE" {
				continue
			}
			records = append(records, recordFromSearch(a, year))
		}
	}
	return records
}

// AssetDetail fetches the full detail for an asset and returns the enriched
// record. A missing asset returns nil without error.
func (c *Client) AssetDetail(ctx context.Context, id AssetID) (*AssetRecord, error) {
	info, err := c.remote.GetAssetInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, nil
	}
	rec := recordFromInfo(info)
	return &rec, nil
}

// DownloadAsset fetches the original bytes for an asset. It first checks the
// in-memory cache, then the remote server, updating the cache on success.
func (c *Client) DownloadAsset(ctx context.Context, id AssetID) ([]byte, error) {
	log := slog.With("id", id)
	if data, ok := c.cache.GetBytes(id); ok {
		log.Debug("found asset bytes in cache", "size", humanize.Bytes(uint64(len(data))))
		return data, nil
	}
	data, err := c.remote.DownloadAsset(ctx, id)
	if err != nil {
		log.Debug("failed to download asset from remote", "error", err)
		return nil, err
	}
	log.Debug("downloaded asset from remote", "size", humanize.Bytes(uint64(len(data))))
	c.cache.StoreBytes(id, data)
	return data, nil
}

// recordFromSearch converts the trimmed search shape into a (not yet
// enriched) AssetRecord.
func recordFromSearch(a api.SearchAsset, memoryYear int) AssetRecord {
	return AssetRecord{
		ID:               a.ID,
		OriginalFileName: a.OriginalFileName,
		IsFavorite:       a.IsFavorite,
		LocalDateTime:    a.LocalDateTime,
		MemoryYear:       memoryYear,
	}
}

// recordFromInfo converts the full asset detail into an enriched AssetRecord.
// Dimensions come from the EXIF block; people without a recognized name are
// dropped.
func recordFromInfo(info *api.AssetInfo) AssetRecord {
	var people []string
	for _, p := range info.People {
		if p.Name != "" {
			people = append(people, p.Name)
		}
	}
	return AssetRecord{
		ID:               info.ID,
		Width:            info.ExifInfo.ExifImageWidth,
		Height:           info.ExifInfo.ExifImageHeight,
		ExifInfo:         info.ExifInfo,
		OriginalFileName: info.OriginalFileName,
		IsFavorite:       info.IsFavorite,
		LocalDateTime:    info.LocalDateTime,
		People:           people,
	}
}

// noopClient provides a noop implementation of the remote client.
type noopClient struct{}

func (noopClient) ValidateToken(context.Context) (bool, error) { return false, errors.New("noop") }
func (noopClient) SearchRandom(context.Context, api.SearchRandomRequest) ([]api.SearchAsset, error) {
	return nil, errors.New("noop")
}
func (noopClient) GetMemories(context.Context, time.Time) ([]api.Memory, error) {
	return nil, errors.New("noop")
}
func (noopClient) GetAssetInfo(context.Context, api.AssetID) (*api.AssetInfo, error) {
	return nil, errors.New("noop")
}
func (noopClient) DownloadAsset(context.Context, api.AssetID) ([]byte, error) {
	return nil, errors.New("noop")
}

// noopCache provides a noop implementation of the byte cache.
type noopCache struct{}

func (noopCache) GetBytes(AssetID) ([]byte, bool) { return nil, false }
func (noopCache) StoreBytes(AssetID, []byte)      {}
