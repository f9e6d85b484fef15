package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/sfx/audio"
	"github.com/lixenwraith/sfx/core"
	"github.com/lixenwraith/sfx/manifest"
	"github.com/lixenwraith/sfx/service"
)

const (
	boardTick     = 100 * time.Millisecond
	flashDuration = 300 * time.Millisecond
	volumeStep    = 0.1
)

// boardKeys maps slots to keys; q and r are commands
var boardKeys = []rune("123456789abcdefghijklmnopstuvwxyz")

var (
	boardWatch bool
	boardLimit int
)

var boardCmd = &cobra.Command{
	Use:   "board [manifest]",
	Short: "Interactive soundboard",
	Long: `Register every sound from a YAML manifest (the built-in game catalogue
when omitted) and trigger them from the keyboard.

Keys: 1-9 and a-z play a sound, +/- change volume, r reloads the manifest,
q or Esc quits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBoard,
}

func init() {
	boardCmd.Flags().BoolVar(&boardWatch, "watch", false, "reload the manifest when the file changes")
	boardCmd.Flags().IntVar(&boardLimit, "limit", manifest.DefaultLimit, "concurrent fetches while registering")
	rootCmd.AddCommand(boardCmd)
}

// soundPlayer is the subset of the player the board drives
type soundPlayer interface {
	PlaySound(name string)
	SetVolume(v float64)
	Volume() float64
	Stats() audio.Stats
}

// reloadEvent carries a registration pass result into the UI loop
type reloadEvent struct {
	when  time.Time
	names []string
	err   error
}

func (e *reloadEvent) When() time.Time { return e.when }

type board struct {
	screen tcell.Screen
	player soundPlayer
	reload func() error

	names  []string
	silent bool
	status string
	failed bool

	lastKey  int // Slot index of the last played sound, -1 for none
	lastTime time.Time
}

func newBoard(screen tcell.Screen, player soundPlayer, names []string, reload func() error) *board {
	b := &board{
		screen:  screen,
		player:  player,
		reload:  reload,
		lastKey: -1,
	}
	b.setNames(names)
	return b
}

// setNames binds names to key slots, dropping those beyond the last key
func (b *board) setNames(names []string) {
	if len(names) > len(boardKeys) {
		names = names[:len(boardKeys)]
	}
	b.names = names
	b.lastKey = -1
}

// slot returns the name bound to r
func (b *board) slot(r rune) (int, bool) {
	i := strings.IndexRune(string(boardKeys), r)
	if i < 0 || i >= len(b.names) {
		return 0, false
	}
	return i, true
}

// handleEvent applies ev; returns false to quit
func (b *board) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}

		switch r := ev.Rune(); r {
		case 'q':
			return false
		case '+', '=':
			b.player.SetVolume(b.player.Volume() + volumeStep)
		case '-', '_':
			b.player.SetVolume(b.player.Volume() - volumeStep)
		case 'r':
			if b.reload == nil {
				break
			}
			b.status = "reloading..."
			b.failed = false
			// Result arrives as a reloadEvent
			core.Go(func() { _ = b.reload() })
		default:
			if i, ok := b.slot(r); ok {
				b.player.PlaySound(b.names[i])
				b.lastKey = i
				b.lastTime = time.Now()
			}
		}

	case *reloadEvent:
		b.setNames(ev.names)
		if ev.err != nil {
			b.status = ev.err.Error()
			b.failed = true
		} else {
			b.status = fmt.Sprintf("loaded %d sounds", len(ev.names))
			b.failed = false
		}

	case *tcell.EventResize:
		b.screen.Sync()
	}
	return true
}

func (b *board) drawText(x, y int, s string, style tcell.Style) {
	width, _ := b.screen.Size()
	for _, r := range s {
		if x >= width {
			return
		}
		b.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (b *board) draw() {
	b.screen.Clear()
	_, height := b.screen.Size()

	title := tcell.StyleDefault.Bold(true)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	b.drawText(1, 0, "sfx board", title)
	if b.silent {
		b.drawText(11, 0, "(no audio device, silent)", tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}

	now := time.Now()
	for i, name := range b.names {
		y := 2 + i
		if y >= height-2 {
			break
		}
		style := tcell.StyleDefault
		if i == b.lastKey && now.Sub(b.lastTime) < flashDuration {
			style = style.Foreground(tcell.ColorGreen).Reverse(true)
		}
		b.drawText(1, y, fmt.Sprintf("[%c] %s", boardKeys[i], name), style)
	}
	if len(b.names) == 0 {
		b.drawText(1, 2, "no sounds registered", dim)
	}

	stats := b.player.Stats()
	b.drawText(1, height-2, fmt.Sprintf("vol %3.0f%%  playing %d  played %d  missed %d",
		b.player.Volume()*100, stats.Active, stats.Played, stats.Missed), dim)

	statusStyle := dim
	if b.failed {
		statusStyle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	}
	b.drawText(1, height-1, b.status, statusStyle)

	b.screen.Show()
}

// run is the UI loop
func (b *board) run() {
	ticker := time.NewTicker(boardTick)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	core.Go(func() { pollEvents(b.screen, eventChan, done) })

	b.draw()
	for {
		select {
		case ev := <-eventChan:
			if !b.handleEvent(ev) {
				return
			}
			b.draw()
		case <-ticker.C:
			b.draw()
		}
	}
}

// pollEvents forwards screen events to events until the screen is finalized
// or done is closed
func pollEvents(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return // Screen finalized
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func runBoard(cmd *cobra.Command, args []string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer screen.Fini()
	core.SetCrashTerminal(screen)
	defer core.SetCrashTerminal(nil)

	opts := manifest.Options{
		Watch:  boardWatch,
		Limit:  boardLimit,
		Logger: log.Default(),
		OnReload: func(m *manifest.Manifest, err error) {
			ev := &reloadEvent{when: time.Now(), err: err}
			if m != nil {
				ev.names = m.Names()
			}
			screen.PostEvent(ev)
		},
	}
	if len(args) > 0 {
		opts.Path = args[0]
	}

	audioSvc := audio.NewService()
	manifestSvc := manifest.NewService()

	hub := service.NewHub()
	if err := hub.Register(audioSvc, cfg, log.Default()); err != nil {
		return err
	}
	if err := hub.Register(manifestSvc, opts); err != nil {
		return err
	}
	if err := hub.InitAll(); err != nil {
		return err
	}
	if err := hub.StartAll(); err != nil {
		return err
	}
	defer hub.StopAll()

	var names []string
	if m := manifestSvc.Current(); m != nil {
		names = m.Names()
	}

	b := newBoard(screen, audioSvc.Player(), names, manifestSvc.Reload)
	b.silent = audioSvc.IsDisabled()
	if err := manifestSvc.LastError(); err != nil {
		b.status = err.Error()
		b.failed = true
	} else {
		b.status = fmt.Sprintf("loaded %d sounds", len(names))
	}
	b.run()
	return nil
}
