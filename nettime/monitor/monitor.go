package monitor

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
)

const redrawInterval = 100 * time.Millisecond

// Snapshot is one frame of accumulator state for display.
type Snapshot struct {
	FrameNumber      uint32
	FrameLag         uint32
	Elapsed          time.Duration
	PerFrameDuration time.Duration
	MessageSendRate  uint8
	Sending          bool
}

// Monitor renders live accumulator state in the terminal. It pulls a
// Snapshot from the source callback on every redraw, so it never holds
// a reference into the host loop's state.
type Monitor struct {
	screen   tcell.Screen
	source   func() Snapshot
	quit     chan struct{}
	stopOnce sync.Once
}

func New(source func() Snapshot) (*Monitor, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	return &Monitor{
		screen: screen,
		source: source,
		quit:   make(chan struct{}),
	}, nil
}

// Run draws until the user quits ('q', Esc, Ctrl-C) or a signal
// arrives.
func (m *Monitor) Run() error {
	defer func() {
		slog.Info("Finishing terminal")
		m.screen.Fini()
	}()

	m.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	m.screen.Clear()

	go m.handleInput()

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			m.render(m.source())
			m.screen.Show()
		case <-signals:
			slog.Info("Received signal to stop")
			return nil
		case <-m.quit:
			return nil
		}
	}
}

// Stop ends the Run loop. Safe to call from any goroutine, any number
// of times.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.quit)
	})
}

func (m *Monitor) handleInput() {
	for {
		ev := m.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				m.Stop()
				return
			case tcell.KeyRune:
				if ev.Rune() == 'q' {
					m.Stop()
					return
				}
			}
		case *tcell.EventResize:
			m.screen.Sync()
		case nil:
			// screen finalized
			return
		}
	}
}

func (m *Monitor) render(s Snapshot) {
	m.screen.Clear()

	sending := "-"
	if s.Sending {
		sending = "SEND"
	}

	lines := []string{
		"network time",
		"",
		fmt.Sprintf("frame      %d", s.FrameNumber),
		fmt.Sprintf("lag        %d", s.FrameLag),
		fmt.Sprintf("banked     %s / %s", s.Elapsed.Round(time.Microsecond), s.PerFrameDuration),
		fmt.Sprintf("cadence    every %d frames  %s", s.MessageSendRate, sending),
		"",
		"press q to quit",
	}

	style := tcell.StyleDefault
	for y, line := range lines {
		for x, r := range line {
			m.screen.SetContent(x+1, y+1, r, nil, style)
		}
	}
}
