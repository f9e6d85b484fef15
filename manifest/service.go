package manifest

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// ServiceName is the hub key of WatchService
const ServiceName = "manifest"

// Options configures WatchService
type Options struct {
	Path     string        // Manifest file; empty uses Default()
	Watch    bool          // Reload on file change
	Limit    int           // Concurrent registrations
	Debounce time.Duration // Watcher quiet period
	Logger   *log.Logger

	// OnReload is called after every registration pass with the manifest in effect
	OnReload func(m *Manifest, err error)
}

// WatchService registers a manifest with the audio player and keeps it current
type WatchService struct {
	opts      Options
	registrar Registrar

	// Atomic pointer to the manifest last registered
	current    atomic.Pointer[Manifest]
	generation atomic.Int64
	lastErr    atomic.Pointer[error]

	reloadMu sync.Mutex // Serializes registration passes
	watcher  *Watcher
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// NewService creates a new manifest service
func NewService() *WatchService {
	return &WatchService{}
}

// Name implements Service
func (s *WatchService) Name() string {
	return ServiceName
}

// Dependencies implements Service
func (s *WatchService) Dependencies() []string {
	return []string{"audio"}
}

// Init implements Service
// args[0]: Options or *Options (optional)
func (s *WatchService) Init(args ...any) error {
	if len(args) > 0 {
		switch v := args[0].(type) {
		case Options:
			s.opts = v
		case *Options:
			if v != nil {
				s.opts = *v
			}
		}
	}
	if s.opts.Logger == nil {
		s.opts.Logger = log.New(io.Discard, "", 0)
	}
	return nil
}

// Consume implements service.ResourceConsumer
// Takes the first published resource able to register sounds
func (s *WatchService) Consume(resource any) {
	if s.registrar != nil {
		return
	}
	if r, ok := resource.(Registrar); ok {
		s.registrar = r
	}
}

// SetRegistrar sets the target directly, for use outside a hub
func (s *WatchService) SetRegistrar(r Registrar) {
	s.registrar = r
}

// Start implements Service
// Performs the initial registration pass, then starts watching if enabled
// Registration failures are logged, not returned
func (s *WatchService) Start() error {
	if s.registrar == nil {
		return errors.New("manifest: no registrar available")
	}
	if s.opts.Logger == nil {
		s.opts.Logger = log.New(io.Discard, "", 0)
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.stopped.Store(false)

	// Initial manifest must parse
	m, err := s.load()
	if err != nil {
		s.cancel()
		return err
	}
	s.apply(m)

	if s.opts.Watch && s.opts.Path != "" {
		w, err := NewWatcher(s.opts.Path, s.opts.Debounce)
		if err != nil {
			s.opts.Logger.Printf("manifest: watch %s disabled: %v", s.opts.Path, err)
			return nil
		}
		s.watcher = w
		s.wg.Add(1)
		go s.watch()
	}
	return nil
}

// Stop implements Service
func (s *WatchService) Stop() error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	var err error
	if s.watcher != nil {
		err = s.watcher.Close()
	}
	s.wg.Wait()
	return err
}

// Reload re-reads the manifest and registers it again
// A manifest that fails to parse leaves the current one in effect
func (s *WatchService) Reload() error {
	m, err := s.load()
	if err != nil {
		s.opts.Logger.Printf("manifest: reload: %v", err)
		s.setErr(err)
		if s.opts.OnReload != nil {
			s.opts.OnReload(s.current.Load(), err)
		}
		return err
	}
	return s.apply(m)
}

// Current returns the manifest last registered
func (s *WatchService) Current() *Manifest {
	return s.current.Load()
}

// Generation counts registration passes
func (s *WatchService) Generation() int64 {
	return s.generation.Load()
}

// LastError returns the error of the last pass, nil on success
func (s *WatchService) LastError() error {
	if p := s.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

func (s *WatchService) load() (*Manifest, error) {
	if s.opts.Path == "" {
		return Default(), nil
	}
	return Load(s.opts.Path)
}

// apply registers m, drops names the previous manifest had and m does not,
// and publishes m as current
func (s *WatchService) apply(m *Manifest) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	err := Register(ctx, s.registrar, m, s.opts.Limit)
	if err != nil {
		s.opts.Logger.Printf("manifest: register: %v", err)
	}
	if removed := Prune(s.registrar, s.current.Load(), m); len(removed) > 0 {
		s.opts.Logger.Printf("manifest: removed %v", removed)
	}

	s.current.Store(m)
	s.generation.Add(1)
	s.setErr(err)

	if s.opts.OnReload != nil {
		s.opts.OnReload(m, err)
	}
	return err
}

func (s *WatchService) setErr(err error) {
	s.lastErr.Store(&err)
}

// watch is the reload goroutine
func (s *WatchService) watch() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case _, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.opts.Logger.Printf("manifest: %s changed, reloading", s.opts.Path)
			s.Reload()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.opts.Logger.Printf("manifest: watch: %v", err)
		}
	}
}
