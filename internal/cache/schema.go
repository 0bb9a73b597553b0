package cache

// SQL schemas for cache tables.
// All cache tables use "cache_key" as the primary key column. ttl_seconds is
// the lifetime chosen when the entry was written; 0 means the configured
// cache.ttl applies.

// OpenLibraryCacheSchema defines the schema for OpenLibrary ISBN lookups
const OpenLibraryCacheSchema = `
CREATE TABLE IF NOT EXISTS openlibrary_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	ttl_seconds INTEGER NOT NULL DEFAULT 0,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_openlibrary_cached_at ON openlibrary_cache(cached_at);
`

// GoogleBooksCacheSchema defines the schema for Google Books ISBN lookups
const GoogleBooksCacheSchema = `
CREATE TABLE IF NOT EXISTS googlebooks_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	ttl_seconds INTEGER NOT NULL DEFAULT 0,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_googlebooks_cached_at ON googlebooks_cache(cached_at);
`

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	OpenLibraryCacheSchema,
	GoogleBooksCacheSchema,
}

// SourceTables maps a lookup source name to its cache table.
var SourceTables = map[string]string{
	"openlibrary": "openlibrary_cache",
	"googlebooks": "googlebooks_cache",
}

// ValidCacheTableNames is the whitelist of allowed cache table names.
// Table names are interpolated into SQL, so nothing else may be used.
var ValidCacheTableNames = map[string]bool{
	"openlibrary_cache": true,
	"googlebooks_cache": true,
}
