package audio

import (
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
)

// PipeOutput feeds raw PCM to a CLI player process or the OSS device
type PipeOutput struct {
	*WriterOutput

	backend *BackendConfig
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	ossFile *os.File // For direct OSS writes

	exited    atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// OpenPipe detects a backend and starts streaming to it
func OpenPipe(rate beep.SampleRate, tick time.Duration) (*PipeOutput, error) {
	backend, err := DetectBackend(int(rate))
	if err != nil {
		return nil, err
	}

	p := &PipeOutput{backend: backend}

	var writer io.Writer
	if backend.Type == BackendOSS {
		f, err := os.OpenFile(backend.Path, os.O_WRONLY, 0)
		if err != nil {
			return nil, err
		}
		p.ossFile = f
		writer = f
	} else {
		cmd := exec.Command(backend.Path, backend.Args...)
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, err
		}
		if err := cmd.Start(); err != nil {
			stdin.Close()
			return nil, err
		}
		p.cmd = cmd
		p.stdin = stdin
		writer = stdin

		p.wg.Add(1)
		go p.monitorProcess()
	}

	p.WriterOutput = NewWriterOutput(writer, rate, tick)
	p.WriterOutput.Start()
	return p, nil
}

// Backend returns the detected backend
func (p *PipeOutput) Backend() *BackendConfig {
	return p.backend
}

// Exited reports whether the player process has exited
func (p *PipeOutput) Exited() bool {
	return p.exited.Load()
}

// monitorProcess watches for subprocess exit
func (p *PipeOutput) monitorProcess() {
	defer p.wg.Done()
	_ = p.cmd.Wait()
	p.exited.Store(true)
}

// Close stops rendering and terminates the backend
func (p *PipeOutput) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.WriterOutput.Close()

		if p.stdin != nil {
			p.stdin.Close()
		}
		if p.ossFile != nil {
			p.ossFile.Close()
		}
		if p.cmd != nil && p.cmd.Process != nil {
			p.cmd.Process.Kill()
		}
		p.wg.Wait()
	})
	return err
}
