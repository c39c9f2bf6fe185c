package component

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watch reloads the definition at path whenever it changes and hands the
// result to onChange. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file, so saves that write a
// temporary file and rename it over path are seen like in-place writes.
// A reload that fails is logged and onChange is not called, so callers keep
// serving the previous component.
func Watch(ctx context.Context, path string, logger *zap.Logger, onChange func(SoftwareComponent)) error {
	target := filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	logger.Info("watching component definition", zap.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&reloadOps == 0 {
				continue
			}

			c, err := Load(target)
			if err != nil {
				logger.Error("component reload failed, keeping previous definition",
					zap.String("path", target), zap.Stringer("op", event.Op), zap.Error(err))
				continue
			}

			logger.Info("component reloaded",
				zap.String("path", target),
				zap.String("name", c.Name),
				zap.String("version", c.Version),
			)
			onChange(c)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("component watcher error", zap.Error(err))
		}
	}
}
