package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-z88bench/z88bench/timing"
)

const (
	headerHeight  = 6
	minTermWidth  = 60
	minTermHeight = 16
	refreshTime   = time.Second / 20
)

// Screen is a full-screen dashboard: run counters, the latest trace lines
// and the latest log records. Pressing q, Esc or Ctrl-C asks the run to
// stop. While it is open, the default slog logger writes into the
// dashboard.
type Screen struct {
	screen   tcell.Screen
	throttle *timing.Throttle
	traces   *Ring[string]
	logs     *Ring[LogEntry]
	previous *slog.Logger
	lastLine string
	quit     bool
}

// NewScreen takes over the terminal. A nil screen opens the real terminal.
func NewScreen(screen tcell.Screen, level slog.Leveler) (*Screen, error) {
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, fmt.Errorf("failed to initialize terminal: %w", err)
		}
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	s := &Screen{
		screen:   screen,
		throttle: timing.NewThrottle(refreshTime),
		traces:   NewRing[string](64),
		logs:     NewRing[LogEntry](100),
		previous: slog.Default(),
	}
	slog.SetDefault(slog.New(NewLogHandler(s.logs, level)))
	slog.Info("Terminal monitor initialized")
	return s, nil
}

func (s *Screen) Progress(st Stats) bool {
	for s.screen.HasPendingEvent() {
		switch ev := s.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				if !s.quit {
					slog.Info("Stop requested from terminal")
				}
				s.quit = true
			}
		case *tcell.EventResize:
			s.screen.Sync()
			s.throttle.Reset()
		}
	}

	if st.LastLine != "" && st.LastLine != s.lastLine {
		s.lastLine = st.LastLine
		s.traces.Add(st.LastLine)
	}

	if s.throttle.Ready() {
		s.render(st)
		s.screen.Show()
	}
	return !s.quit
}

// Close restores the terminal and the previous logger, then replays the
// captured warnings and errors so they are not lost with the screen.
func (s *Screen) Close(st Stats) error {
	s.render(st)
	s.screen.Show()
	s.screen.Fini()
	slog.SetDefault(s.previous)

	entries := s.logs.Recent(0)
	for i := len(entries) - 1; i >= 0; i-- {
		if e := entries[i]; e.Level >= slog.LevelWarn {
			slog.Log(context.Background(), e.Level, e.Message)
		}
	}
	return nil
}

func (s *Screen) render(st Stats) {
	termWidth, termHeight := s.screen.Size()
	s.screen.Clear()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		s.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	title := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	text := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	s.drawText(0, 0, termWidth, fmt.Sprintf("z88bench  machine %s  (q to stop)", st.Machine), title)
	s.drawText(0, 1, termWidth, fmt.Sprintf("Time         %d us", st.Micros()), text)
	s.drawText(0, 2, termWidth, fmt.Sprintf("Steps        %d / %d (%.1f%%)", st.Steps, st.Budget, st.Percent()), text)
	s.drawText(0, 3, termWidth, fmt.Sprintf("Instructions %d", st.Instructions), text)
	s.drawText(0, 4, termWidth, fmt.Sprintf("Frames       %d", st.Frames), text)

	available := termHeight - headerHeight - 2
	traceRows := available / 2
	logRows := available - traceRows

	y := headerHeight
	s.drawText(0, y, termWidth, "Trace", title)
	y++
	traces := s.traces.Recent(traceRows)
	for i := len(traces) - 1; i >= 0; i-- {
		s.drawText(0, y, termWidth, traces[i], dim)
		y++
	}

	y = headerHeight + traceRows + 1
	s.drawText(0, y, termWidth, "Log", title)
	y++
	for _, e := range s.logs.Recent(logRows) {
		s.drawText(0, y, termWidth, e.Format(), logStyle(e.Level))
		y++
	}
}

func (s *Screen) drawText(x, y, width int, text string, style tcell.Style) {
	if len(text) > width {
		if width > 3 {
			text = text[:width-3] + "..."
		} else {
			text = text[:max(width, 0)]
		}
	}
	for i, ch := range text {
		s.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func logStyle(level slog.Level) tcell.Style {
	switch {
	case level >= slog.LevelError:
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	case level >= slog.LevelWarn:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case level >= slog.LevelInfo:
		return tcell.StyleDefault.Foreground(tcell.ColorBlue)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorGray)
}
