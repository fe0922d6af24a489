package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/indisnews/trendit-server/app/database"
	"github.com/indisnews/trendit-server/app/storage"
)

// ReconcileImagesTask removes stored image objects no longer referenced by
// any article row. Image and row lifecycles are not transactionally
// coupled, so a failed delete on either side can leave an orphan; this
// pass cleans up the storage side out-of-band.
type ReconcileImagesTask struct {
	Task
	newsRepo   database.NewsRepository
	imageStore storage.ImageStore
}

func NewReconcileImagesTask(newsRepo database.NewsRepository, imageStore storage.ImageStore) *ReconcileImagesTask {
	return &ReconcileImagesTask{
		Task:       NewTask(TaskTypeReconcileImages),
		newsRepo:   newsRepo,
		imageStore: imageStore,
	}
}

func (t *ReconcileImagesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	objects, err := t.imageStore.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stored objects: %w", err)
	}

	urls, err := t.newsRepo.ImageURLs()
	if err != nil {
		return fmt.Errorf("failed to list referenced image URLs: %w", err)
	}

	referenced := make(map[string]bool, len(urls))
	for _, u := range urls {
		name, err := t.imageStore.ObjectNameFromURL(u)
		if err != nil {
			// Rows can reference externally hosted images; those are
			// not ours to reconcile.
			slog.Debug("Skipping non-bucket image URL", "url", u)
			continue
		}
		referenced[name] = true
	}

	deletedCount := 0
	errorCount := 0

	for _, name := range objects {
		if referenced[name] {
			continue
		}

		slog.Info("Deleting orphaned image object", "object", name)
		if err := t.imageStore.Delete(ctx, name); err != nil {
			slog.Error("Failed to delete orphaned object", "object", name, "error", err)
			errorCount++
			continue
		}
		deletedCount++
	}

	slog.Info("Task completed",
		"type", "ReconcileImages",
		"duration", t.GetDuration(),
		"objects", len(objects),
		"referenced", len(referenced),
		"deleted", deletedCount,
		"errors", errorCount)

	return nil
}
