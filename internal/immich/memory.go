package immich

import (
	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"
)

// inMemoryCache is a byteCache backed by an LRU keyed by asset ID.
type inMemoryCache struct {
	*lru.Cache[AssetID, []byte]
}

// GetBytes implements byteCache.
func (i inMemoryCache) GetBytes(id AssetID) ([]byte, bool) {
	return i.Get(id)
}

// StoreBytes implements byteCache.
func (i inMemoryCache) StoreBytes(id AssetID, data []byte) {
	i.Add(id, data)
}

// newInMemoryCacheClient initializes an [inMemoryCache] sized by the
// configured byte budget divided by an assumed average asset size.
func newInMemoryCacheClient(conf InMemoryConfig) inMemoryCache {
	avgAssetSize, _ := humanize.ParseBytes("3 MB")
	cacheSize := 1
	if configuredSize := uint64(conf.InMemoryCacheSize) / avgAssetSize; configuredSize > 0 {
		cacheSize = int(configuredSize)
	}
	l, _ := lru.New[AssetID, []byte](cacheSize)
	return inMemoryCache{l}
}
