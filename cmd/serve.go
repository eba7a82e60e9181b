package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serverPort int

const rebuildDebounce = 500 * time.Millisecond

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site locally and rebuild on changes",
	Long: `The serve command builds the site, then serves the output directory
over HTTP while watching the content, layouts, and static directories.
Changes trigger a debounced rebuild.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runBuild(); err != nil {
			return fmt.Errorf("initial build: %w", err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create file watcher: %w", err)
		}
		defer watcher.Close()

		go watchLoop(watcher)

		for _, root := range []string{appConfig.ContentDir, appConfig.LayoutsDir, appConfig.StaticDir} {
			if _, err := os.Stat(root); os.IsNotExist(err) {
				logger.Debug("directory not found, not watching", zap.String("dir", root))
				continue
			}
			if err := watchRecursive(watcher, root); err != nil {
				return err
			}
		}

		addr := fmt.Sprintf(":%d", serverPort)
		logger.Info("serving site",
			zap.String("dir", appConfig.OutputDir),
			zap.String("url", "http://localhost"+addr))

		return http.ListenAndServe(addr, devHandler(appConfig.OutputDir))
	},
}

// watchLoop rebuilds after filesystem events, debounced so an editor
// save burst causes one rebuild. New directories are added to the
// watch as they appear; fsnotify does not watch recursively itself.
func watchLoop(watcher *fsnotify.Watcher) {
	var timer *time.Timer
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("change detected", zap.String("file", event.Name), zap.String("op", event.Op.String()))

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					logger.Warn("cannot watch new directory", zap.String("dir", event.Name), zap.Error(err))
				}
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(rebuildDebounce, func() {
				logger.Info("rebuilding site")
				if err := runBuild(); err != nil {
					logger.Error("rebuild failed", zap.Error(err))
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func watchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			logger.Warn("cannot walk path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				logger.Warn("cannot watch directory", zap.String("dir", path), zap.Error(err))
			}
		}
		return nil
	})
}

// devHandler serves the output directory with caching disabled and
// directory listings suppressed.
func devHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
			if _, err := os.Stat(filepath.Join(dir, r.URL.Path, "index.html")); os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		files.ServeHTTP(w, r)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
