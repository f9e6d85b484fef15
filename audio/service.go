package audio

import (
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/sfx/service"
)

// ServiceName is the hub key of AudioService
const ServiceName = "audio"

// AudioService wraps AudioPlayer as a Service
// Falls back to a silent output when no audio backend is available
type AudioService struct {
	mu     sync.Mutex
	cfg    *Config
	logger *log.Logger
	player *AudioPlayer

	disabled atomic.Bool // Silent fallback in use
	stopped  atomic.Bool
}

// NewService creates a new audio service
func NewService() *AudioService {
	return &AudioService{}
}

// Name implements Service
func (s *AudioService) Name() string {
	return ServiceName
}

// Dependencies implements Service
func (s *AudioService) Dependencies() []string {
	return nil
}

// Init implements Service
// Accepts *Config and *log.Logger in any order; missing config loads from env
func (s *AudioService) Init(args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, arg := range args {
		switch v := arg.(type) {
		case *Config:
			s.cfg = v
		case *log.Logger:
			s.logger = v
		}
	}
	if s.cfg == nil {
		s.cfg = LoadConfig()
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard, "", 0)
	}
	s.cfg = s.cfg.normalized()
	return nil
}

// Start implements Service
// Opens the configured output; on failure plays into a silent output (no error returned)
func (s *AudioService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		return nil
	}
	if s.cfg == nil {
		s.cfg = DefaultConfig()
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard, "", 0)
	}

	player, err := OpenAudioPlayer(s.cfg)
	if err != nil {
		s.logger.Printf("audio: output %q unavailable, running silent: %v", s.cfg.Backend, err)
		out := newSilentOutput(beep.SampleRate(s.cfg.SampleRate), s.cfg.BufferDuration)
		player = NewAudioPlayer(out, s.cfg)
		player.ownsOut = true
	}
	if IsSilent(player.Output()) {
		s.disabled.Store(true)
	}
	if pipe, ok := player.Output().(*PipeOutput); ok {
		s.logger.Printf("audio: streaming to %s", pipe.Backend().Name)
	}

	s.player = player
	s.stopped.Store(false)
	return nil
}

// Stop implements Service
func (s *AudioService) Stop() error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	player := s.player
	s.player = nil
	s.mu.Unlock()

	if player != nil {
		return player.Close()
	}
	return nil
}

// Contribute implements service.ResourceContributor
// Publishes the player once started
func (s *AudioService) Contribute(publish service.ResourcePublisher) {
	if player := s.Player(); player != nil {
		publish(player)
	}
}

// IsDisabled returns true if output is silent
func (s *AudioService) IsDisabled() bool {
	return s.disabled.Load()
}

// Player returns the running player, nil before Start or after Stop
func (s *AudioService) Player() *AudioPlayer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}
