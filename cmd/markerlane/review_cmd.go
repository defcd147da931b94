package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/markerlane/markerlane/internal/dispatcher"
	"github.com/markerlane/markerlane/internal/layout"
	"github.com/markerlane/markerlane/internal/logging"
	"github.com/markerlane/markerlane/internal/session"
	"github.com/markerlane/markerlane/pkg/core"
	"github.com/spf13/cobra"
)

func (a *app) reviewCmd() *cobra.Command {
	var sceneID string
	var noColor bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review a scene's markers interactively",
		Long: `Read review commands from stdin, one per line, and print the selected
marker after each. Navigation commands are the action names (next, previous,
next-unprocessed, up, down, left, right, next-at-playhead, ...). Edits are
confirm, reject, delete, split and "create TAG_ID [DURATION] [NAME]".
"seek SECONDS" moves the playhead, "show" prints the timeline, "reload"
rereads the scene from the store, "help" lists commands and "quit" exits. Edits are written to the store in the background.

Usage:
  markerlane review --scene 42
  markerlane review --scene 42 < script.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			markers, err := store.LoadMarkers(sceneID)
			if err != nil {
				return err
			}
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			engine, err := layout.NewEngine(a.Logger)
			if err != nil {
				return err
			}
			s := session.New(sceneID, markers, settings, engine, a.Logger)
			log := a.SlogManager.With(s.LogAttrs)

			d, err := dispatcher.New(logging.NewDispatcherLogger(log))
			if err != nil {
				return err
			}
			session.RegisterHandlers(d, s, store)
			// Close drains queued writes before the store is closed.
			defer d.Close()

			log.Info("Review started", "markers", len(markers))
			reload := func() ([]core.Marker, error) {
				return store.LoadMarkers(sceneID)
			}
			return runReview(cmd.InOrStdin(), cmd.OutOrStdout(), d, s, reload, log)
		},
	}

	cmd.Flags().StringVar(&sceneID, "scene", "", "scene id")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	_ = cmd.MarkFlagRequired("scene")
	return cmd
}

// runReview is the read-dispatch-print loop. Command errors are printed and
// the loop continues; only read errors end it early.
func runReview(in io.Reader, out io.Writer, d *dispatcher.Dispatcher, s *session.Session, reload func() ([]core.Marker, error), log *slog.Logger) error {
	renderSummary(out, s.Layout())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintf(out, "commands: help show status reload quit %s\n", strings.Join(d.Commands(), " "))
			continue
		case "reload":
			markers, err := reload()
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			s.Replace(markers)
			log.Info("Scene reloaded", "markers", len(markers))
			renderSummary(out, s.Layout())
			continue
		case "show":
			renderLayout(out, s.Layout(), s.Cursor())
			continue
		case "status":
			renderSummary(out, s.Layout())
			continue
		}

		if strings.HasPrefix(fields[0], "persist:") {
			fmt.Fprintf(out, "error: unknown command: %s\n", fields[0])
			continue
		}

		_, err := d.Dispatch(dispatcher.Event{Command: fields[0], Args: fields[1:]})
		if err != nil {
			log.Warn("Command failed", "command", fields[0], "error", err)
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "%s @%s\n", describeMarker(s.Layout(), s.Cursor()), formatSeconds(s.Playhead()))
	}
	return scanner.Err()
}
