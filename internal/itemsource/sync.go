// Package itemsource keeps the store's vocabulary items in step with
// their sources: word-list files in local directories or git
// repositories. Syncing only touches the items table; review records
// follow item deletions through the storage layer's cascade.
package itemsource

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lingoreps/lingoreps/internal/storage"
)

// AddSource registers a new source path, classifying it as local or
// git. Re-adding a known path is a no-op.
func AddSource(db *storage.DB, path string) (*storage.Source, error) {
	existing, err := db.FindSourceByPath(path)
	if err != nil {
		return nil, fmt.Errorf("add source %s: %w", path, err)
	}
	if existing != nil {
		return existing, nil
	}

	sourceType := DetectType(path)
	id, err := db.InsertSource(path, sourceType)
	if err != nil {
		return nil, fmt.Errorf("add source %s: %w", path, err)
	}
	slog.Info("source added", "id", id, "type", sourceType, "path", path)
	return &storage.Source{ID: id, Path: path, Type: sourceType}, nil
}

// SyncAll reconciles every registered source into the store. Git
// sources are cloned or pulled under reposDir first. A source that
// fails to sync is logged and skipped; the remaining sources still run.
func SyncAll(db *storage.DB, reposDir string) error {
	sources, err := db.GetAllSources()
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if len(sources) == 0 {
		slog.Info("no sources configured")
		return nil
	}

	if err := os.MkdirAll(reposDir, os.ModePerm); err != nil {
		return fmt.Errorf("sync: create repos directory: %w", err)
	}

	for _, source := range sources {
		slog.Info("syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

		dir := source.Path
		if source.Type == "git" {
			localPath, err := localPathFor(reposDir, source.Path)
			if err != nil {
				slog.Error("cannot map git URL to a local path", "url", source.Path, "error", err)
				continue
			}
			if err := cloneOrPull(source.Path, localPath); err != nil {
				slog.Error("git sync failed", "url", source.Path, "error", err)
				continue
			}
			dir = localPath
		}

		if err := reconcileDir(db, source, dir); err != nil {
			slog.Error("source reconciliation failed", "path", source.Path, "error", err)
		}
	}
	return nil
}

// reconcileDir walks a directory of word lists, inserts items that are
// new for this source, and deletes items whose terms are gone.
func reconcileDir(db *storage.DB, source storage.Source, dir string) error {
	foundKeys := make(map[string]bool)
	var inserted, parseErrors int

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isWordList(d.Name()) {
			return nil
		}

		terms, err := ParseFile(path)
		if err != nil {
			slog.Warn("skipping unreadable word list", "path", path, "error", err)
			parseErrors++
			return nil
		}
		for _, term := range terms {
			key := Key(term)
			foundKeys[key] = true

			existing, err := db.FindItemByKey(key)
			if err != nil {
				return fmt.Errorf("checking item %s: %w", key, err)
			}
			if existing != nil {
				continue
			}
			item := storage.Item{
				Key:      key,
				Term:     term,
				SourceID: sql.NullInt64{Int64: source.ID, Valid: true},
			}
			if err := db.InsertItem(item); err != nil {
				return fmt.Errorf("inserting item %q: %w", term, err)
			}
			inserted++
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walking %s: %w", dir, walkErr)
	}

	dbItems, err := db.GetItemsBySourceID(source.ID)
	if err != nil {
		return fmt.Errorf("listing items for source %d: %w", source.ID, err)
	}
	var orphaned int
	for _, item := range dbItems {
		if foundKeys[item.Key] {
			continue
		}
		slog.Info("removing orphaned item", "term", item.Term, "key", item.Key)
		if err := db.DeleteItemByKey(item.Key); err != nil {
			slog.Warn("failed to delete orphaned item", "key", item.Key, "error", err)
			continue
		}
		orphaned++
	}

	if err := db.UpdateSourceLastSynced(source.ID); err != nil {
		slog.Warn("failed to stamp source as synced", "source_id", source.ID, "error", err)
	}

	slog.Info("source reconciled",
		"path", source.Path,
		"items_found", len(foundKeys),
		"inserted", inserted,
		"orphaned_deleted", orphaned,
		"parse_errors", parseErrors,
	)
	return nil
}

func isWordList(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".list")
}
