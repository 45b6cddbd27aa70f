// Package watcher monitors the file store directory. The metadata store
// keeps no invariant that a referenced file still exists, so the watcher
// logs additions and removals to make orphaned records visible.
package watcher

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher observes one directory for audio file changes.
type Watcher struct {
	fsw     *fsnotify.Watcher
	root    string
	isAudio func(string) bool
	logger  *logrus.Logger
}

// New creates a watcher over root. isAudio filters events to files with
// a supported audio extension.
func New(root string, isAudio func(string) bool, logger *logrus.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsw:     fsw,
		root:    root,
		isAudio: isAudio,
		logger:  logger,
	}, nil
}

// Start begins watching. Events are consumed on a background goroutine.
func (w *Watcher) Start() error {
	if err := w.fsw.Add(w.root); err != nil {
		w.fsw.Close()
		return err
	}

	go w.watchFiles()

	w.logger.WithField("upload_dir", w.root).Info("File store watcher started")
	return nil
}

// watchFiles selects on watcher channels and dispatches events.
func (w *Watcher) watchFiles() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFileEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Error("File watcher error")
		}
	}
}

// handleFileEvent logs create/remove events for audio files.
func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	fileName := filepath.Base(event.Name)
	if strings.HasPrefix(fileName, ".") || strings.HasSuffix(fileName, ".tmp") {
		return
	}
	if !w.isAudio(event.Name) {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		w.logger.WithField("filename", fileName).Info("Audio file added to file store")

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// Song records referencing this file are now orphaned; requests
		// for it will return not-found until it reappears.
		w.logger.WithField("filename", fileName).Warn("Audio file removed from file store")
	}
}

// Stop closes the watcher (idempotent).
func (w *Watcher) Stop() {
	if w.fsw != nil {
		w.fsw.Close()
	}
}
