package server

import (
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"talentalign/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// certReloader serves a TLS certificate pair and hot-reloads it when
// the underlying files change on disk.
type certReloader struct {
	mu       sync.RWMutex
	certFile string
	keyFile  string
	cert     *tls.Certificate

	fsWatcher     *fsnotify.Watcher
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
	logger        *errors.Logger
}

func newCertReloader(certFile, keyFile string, logger *errors.Logger) (*certReloader, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS key pair: %w", err)
	}

	return &certReloader{
		certFile:      certFile,
		keyFile:       keyFile,
		cert:          &cert,
		debounceDelay: time.Second,
		stopChan:      make(chan struct{}),
		logger:        logger,
	}, nil
}

// GetCertificate is installed as tls.Config.GetCertificate
func (cr *certReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.cert, nil
}

// Watch begins watching the certificate files. Directories are watched
// too so atomic renames (the common cert-rotation pattern) are seen.
func (cr *certReloader) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	cr.fsWatcher = watcher

	dirs := map[string]bool{
		filepath.Dir(cr.certFile): true,
		filepath.Dir(cr.keyFile):  true,
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			cr.cleanupWatcher()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	go cr.watchLoop()

	cr.logger.Info("Certificate file watcher started",
		"cert_file", cr.certFile,
		"key_file", cr.keyFile,
		"debounce_delay", cr.debounceDelay)
	return nil
}

func (cr *certReloader) cleanupWatcher() {
	if cr.fsWatcher != nil {
		if err := cr.fsWatcher.Close(); err != nil {
			cr.logger.LogError(err, "Failed to close file watcher")
		}
	}
}

func (cr *certReloader) watchLoop() {
	for {
		select {
		case event, ok := <-cr.fsWatcher.Events:
			if !ok {
				return
			}
			if cr.relevantEvent(event) {
				cr.scheduleReload()
			}

		case err, ok := <-cr.fsWatcher.Errors:
			if !ok {
				return
			}
			cr.logger.LogError(err, "Certificate watcher error")

		case <-cr.stopChan:
			return
		}
	}
}

func (cr *certReloader) relevantEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if base != filepath.Base(cr.certFile) && base != filepath.Base(cr.keyFile) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// scheduleReload debounces bursts of events; cert rotation usually
// touches both files within a second
func (cr *certReloader) scheduleReload() {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.debounceTimer != nil {
		cr.debounceTimer.Stop()
	}
	cr.debounceTimer = time.AfterFunc(cr.debounceDelay, cr.reload)
}

func (cr *certReloader) reload() {
	cert, err := tls.LoadX509KeyPair(cr.certFile, cr.keyFile)
	if err != nil {
		cr.logger.LogError(err, "Failed to reload TLS key pair, keeping previous certificate")
		return
	}

	cr.mu.Lock()
	cr.cert = &cert
	cr.mu.Unlock()

	cr.logger.Info("TLS certificate reloaded", "cert_file", cr.certFile)
}

// Stop stops the watcher goroutine and closes the fs watcher
func (cr *certReloader) Stop() error {
	close(cr.stopChan)

	cr.mu.Lock()
	if cr.debounceTimer != nil {
		cr.debounceTimer.Stop()
	}
	cr.mu.Unlock()

	if cr.fsWatcher != nil {
		return cr.fsWatcher.Close()
	}
	return nil
}

// tlsMinVersion maps the configured string onto a tls constant
func tlsMinVersion(v string) uint16 {
	switch v {
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}
