// seatwatch polls an Open Day server and draws the seat grid of one
// event in the terminal. The grid is redrawn only when the seat list
// actually changed since the previous poll.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/iliyamo/openday-seat-reservation/internal/apiclient"
	"github.com/iliyamo/openday-seat-reservation/internal/grid"
	"github.com/iliyamo/openday-seat-reservation/internal/logging"
	"github.com/iliyamo/openday-seat-reservation/internal/model"
)

// defaultLogo is shown when the settings carry no logo_url.
const defaultLogo = "logo.png"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		addr     string
		eventID  uint64
		interval time.Duration
		once     bool
		logLevel string
	)
	flagSet := pflag.NewFlagSet("seatwatch", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", "http://localhost:3000", "base URL of the reservation server")
	flagSet.Uint64Var(&eventID, "event", 1, "Open Day to watch")
	flagSet.DurationVar(&interval, "interval", 5*time.Second, "poll interval")
	flagSet.BoolVar(&once, "once", false, "draw the grid once and exit")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level for poll errors")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if interval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}
	logging.Init(logging.Config{Level: logLevel, Format: "console"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &watcher{client: apiclient.New(addr), eventID: eventID}
	if err := w.poll(ctx); err != nil {
		return err
	}
	if once {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.poll(ctx); err != nil && ctx.Err() == nil {
				logging.Warn().Err(err).Msg("poll failed")
			}
		}
	}
}

type watcher struct {
	client  *apiclient.Client
	eventID uint64
	tracker grid.Tracker
}

// poll fetches settings and seats and redraws on change.
func (w *watcher) poll(ctx context.Context) error {
	st, err := w.client.Settings(ctx)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	seats, err := w.client.Seats(ctx, w.eventID)
	if err != nil {
		return fmt.Errorf("seats: %w", err)
	}
	changed, err := w.tracker.Observe(seats)
	if err != nil || !changed {
		return err
	}

	title := fmt.Sprintf("Event %d", w.eventID)
	if ev, ok := model.FindEvent(w.eventID); ok {
		title = ev.Label
	}
	logo := defaultLogo
	if st.LogoURL != nil && *st.LogoURL != "" {
		logo = *st.LogoURL
	}
	accent := ""
	if st.ColorPrimary != nil {
		accent = *st.ColorPrimary
	}

	fmt.Print("\033[H\033[2J")
	fmt.Printf("%s  [%s]  %s\n", title, logo, time.Now().Format("15:04:05"))
	return grid.Render(os.Stdout, title, accent, grid.Build(st.NumRows, st.NumCols, seats))
}
