package audio

import (
	"errors"
)

// BackendType identifies a CLI pipe backend
type BackendType int

const (
	BackendPulse BackendType = iota
	BackendPipeWire
	BackendALSA
	BackendSoX
	BackendFFplay
	BackendOSS
)

// BackendConfig describes a CLI audio backend
type BackendConfig struct {
	Type BackendType
	Name string
	Path string
	Args []string
}

// Output backend names accepted by Config.Backend
const (
	OutputAuto    = "auto"
	OutputSpeaker = "speaker"
	OutputPipe    = "pipe"
	OutputNone    = "none"
)

// Sentinel errors
var (
	ErrFetch          = errors.New("audio fetch failed")
	ErrDecode         = errors.New("audio decode failed")
	ErrClosed         = errors.New("audio player closed")
	ErrNoAudioBackend = errors.New("no compatible audio backend found")
	ErrPipeClosed     = errors.New("audio pipe closed")
	ErrUnknownBackend = errors.New("unknown audio backend")
)
