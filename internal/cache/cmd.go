package cache

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache source to invalidate: openlibrary, googlebooks" required:""`
}

func (i *InvalidateCacheCmd) Run() error {
	tableName, ok := SourceTables[i.Source]
	if !ok {
		return fmt.Errorf("invalid cache source '%s'; valid sources are: %s", i.Source, strings.Join(sourceNames(), ", "))
	}

	slog.Info("Invalidating cache", "source", i.Source, "database", viper.GetString("cache.dbfile"))

	cacheInstance, err := GetGlobalCache()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	rowsDeleted, err := cacheInstance.InvalidateSource(tableName)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", rowsDeleted)
	return nil
}

func sourceNames() []string {
	names := make([]string, 0, len(SourceTables))
	for name := range SourceTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PruneCacheCmd deletes expired entries from every cache table
type PruneCacheCmd struct{}

func (p *PruneCacheCmd) Run() error {
	cacheInstance, err := GetGlobalCache()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	var total int64
	for _, name := range sourceNames() {
		n, err := cacheInstance.Prune(SourceTables[name])
		if err != nil {
			return fmt.Errorf("failed to prune %s cache: %w", name, err)
		}
		total += n
	}

	slog.Info("Cache pruned", "rows_deleted", total)
	return nil
}

// StatsCacheCmd logs how many entries each source has cached
type StatsCacheCmd struct{}

func (s *StatsCacheCmd) Run() error {
	cacheInstance, err := GetGlobalCache()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	for _, name := range sourceNames() {
		table := SourceTables[name]
		entries, err := cacheInstance.Count(table)
		if err != nil {
			return err
		}
		expired, err := cacheInstance.Expired(table)
		if err != nil {
			return err
		}
		slog.Info("Cache", "source", name, "entries", entries, "expired", expired)
	}
	return nil
}
