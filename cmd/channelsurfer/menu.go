package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"channelsurfer/internal/archive"
	"channelsurfer/internal/config"
	"channelsurfer/internal/download"
	"channelsurfer/internal/history"
	"channelsurfer/internal/library"
	"channelsurfer/internal/logging"
	"channelsurfer/internal/playback"
)

const menuRule = "====================================="

func newMenuCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu: browse the guide, search, download, and serve",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger := ctx.loggerValue()

			lock, err := acquireLibraryLock(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = lock.Unlock() }()

			client, err := ctx.archiveClient()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				logging.WarnWithContext(logger, "download history unavailable", "history_open_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "downloads still work; history will not be recorded"),
				)
				store = nil
			} else {
				defer store.Close()
			}

			session := &menuSession{
				cfg:          cfg,
				logger:       logger,
				client:       client,
				downloader:   ctx.downloader(client),
				orchestrator: download.NewOrchestrator(cfg.Downloads.MaxConcurrent, logger),
				store:        store,
				hub:          playback.NewHub(0),
				prompt:       newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
				out:          cmd.OutOrStdout(),
				colorize:     shouldColorize(cmd.OutOrStdout()),
				now:          time.Now,
			}
			defer session.shutdown()
			return session.run(cmd.Context())
		},
	}
}

// menuSession is one interactive menu run. Downloads started from the menu
// continue in the background while the menu keeps accepting input.
type menuSession struct {
	cfg          *config.Config
	logger       *slog.Logger
	client       *archive.Client
	downloader   *download.Downloader
	orchestrator *download.Orchestrator
	store        *history.Store
	hub          *playback.Hub
	server       *guideServer
	prompt       *prompter
	out          io.Writer
	colorize     bool
	now          func() time.Time
}

func (m *menuSession) run(ctx context.Context) error {
	for {
		m.drainOutcomes(ctx)
		m.printMenu()

		choice, err := m.prompt.ask(ctx, "Enter your choice: ")
		if errors.Is(err, io.EOF) {
			// Scripted input ran out: let queued downloads finish before leaving.
			fmt.Fprintln(m.out)
			if m.orchestrator.ActiveCount() > 0 {
				fmt.Fprintln(m.out, "Waiting for active downloads to finish...")
				if err := m.orchestrator.Wait(ctx); err != nil {
					return err
				}
				m.drainOutcomes(ctx)
			}
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			m.toggleServer(ctx)
		case "2":
			err = m.listGuide(ctx)
		case "3":
			err = m.searchAndDownload(ctx)
		case "4":
			err = m.clearLibrary(ctx)
		case "5":
			var leave bool
			leave, err = m.confirmExit(ctx)
			if err == nil && leave {
				return nil
			}
		case "6":
			err = m.showStatus(ctx)
		default:
			fmt.Fprintln(m.out, "Invalid choice. Please try again.")
		}
		if errors.Is(err, io.EOF) {
			continue
		}
		if err != nil {
			return err
		}
	}
}

func (m *menuSession) printMenu() {
	fmt.Fprintln(m.out)
	active := m.orchestrator.ActiveCount()
	if active > 0 {
		fmt.Fprintf(m.out, "Active downloads: %d\n\n", active)
	}
	fmt.Fprintln(m.out, "Channel Surfer")
	fmt.Fprintln(m.out, menuRule)
	if m.server != nil {
		fmt.Fprintf(m.out, "1. Stop TV guide server (%s)\n", m.server.url())
	} else {
		fmt.Fprintln(m.out, "1. Start TV guide server")
	}
	fmt.Fprintln(m.out, "2. List local videos")
	fmt.Fprintln(m.out, "3. Search Internet Archive videos")
	fmt.Fprintln(m.out, "4. Clear all local videos")
	fmt.Fprintln(m.out, "5. Exit")
	if active > 0 {
		fmt.Fprintln(m.out, "6. Show download status")
	}
	fmt.Fprintln(m.out)
}

func (m *menuSession) toggleServer(ctx context.Context) {
	if m.server != nil {
		if err := m.server.stop(); err != nil {
			fmt.Fprintln(m.out, renderStatusLine(statusError, fmt.Sprintf("Server stopped with error: %v", err), m.colorize))
		} else {
			fmt.Fprintln(m.out, renderStatusLine(statusInfo, "TV guide server stopped", m.colorize))
		}
		m.server = nil
		return
	}
	server, err := startGuideServer(ctx, m.cfg, m.hub, m.logger)
	if err != nil {
		fmt.Fprintln(m.out, renderStatusLine(statusError, fmt.Sprintf("Could not start server: %v", err), m.colorize))
		return
	}
	m.server = server
	fmt.Fprintln(m.out, renderStatusLine(statusOK, "Server running on "+server.url(), m.colorize))
}

func (m *menuSession) listGuide(ctx context.Context) error {
	channels, missing, err := libraryGuide(m.cfg.Paths.LibraryDir, library.MenuProgrammes)
	if err != nil {
		fmt.Fprintln(m.out, renderStatusLine(statusError, fmt.Sprintf("Error reading library: %v", err), m.colorize))
		return nil
	}
	renderGuideGrid(m.out, channels, missing, m.now(), m.colorize)
	_, err = m.prompt.ask(ctx, "Press Enter to return to the main menu...")
	return err
}

func (m *menuSession) searchAndDownload(ctx context.Context) error {
	query, err := m.prompt.ask(ctx, "Enter search query: ")
	if err != nil {
		return err
	}
	if query == "" {
		return nil
	}

	fmt.Fprintf(m.out, "\nSearching for: %s\n", query)
	resp, err := m.client.Search(ctx, archive.Query{
		Text:      query,
		MediaType: m.cfg.Archive.MediaType,
		Rows:      m.cfg.Archive.SearchRows,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprintln(m.out, renderStatusLine(statusError, fmt.Sprintf("Search failed: %v", err), m.colorize))
		return nil
	}
	renderSearchResults(m.out, query, resp, m.colorize)
	if len(resp.Documents) == 0 {
		return nil
	}

	selection, err := m.prompt.ask(ctx, "\nEnter the number of the video to download (or press Enter to cancel): ")
	if err != nil {
		return err
	}
	if selection == "" {
		fmt.Fprintln(m.out, "Download cancelled.")
		return nil
	}
	index, convErr := strconv.Atoi(selection)
	if convErr != nil || index < 1 || index > len(resp.Documents) {
		fmt.Fprintln(m.out, "Invalid selection.")
		return nil
	}
	doc := resp.Documents[index-1]
	m.startDownload(doc.Identifier, documentTitle(doc))
	return nil
}

func (m *menuSession) startDownload(identifier, title string) {
	task := m.downloader.Task(identifier, download.Options{OutputDir: m.cfg.Paths.LibraryDir})
	err := m.orchestrator.Start(identifier, task)
	switch {
	case errors.Is(err, download.ErrAlreadyActive):
		fmt.Fprintln(m.out, renderStatusLine(statusWarn, identifier+" is already downloading", m.colorize))
	case err != nil:
		fmt.Fprintln(m.out, renderStatusLine(statusError, fmt.Sprintf("Could not start download: %v", err), m.colorize))
	default:
		m.hub.Publish(playback.Event{Type: playback.EventDownload, Message: identifier + ": started"})
		fmt.Fprintf(m.out, "Starting download for: %s\n", title)
		fmt.Fprintln(m.out, "The download continues in the background; choose 6 to see its status.")
	}
}

func (m *menuSession) clearLibrary(ctx context.Context) error {
	if active := m.orchestrator.ActiveCount(); active > 0 {
		fmt.Fprintln(m.out, renderStatusLine(statusWarn,
			fmt.Sprintf("%d download(s) still running; wait for them before clearing the library.", active), m.colorize))
		return nil
	}
	fmt.Fprintf(m.out, "WARNING: This will delete all video files in %s.\n", m.cfg.Paths.LibraryDir)
	ok, err := m.prompt.confirm(ctx, "Are you sure you want to proceed?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(m.out, "Operation cancelled.")
		return nil
	}
	if err := clearLibrary(ctx, m.out, m.cfg.Paths.LibraryDir, m.logger); err != nil {
		fmt.Fprintln(m.out, renderStatusLine(statusError, err.Error(), m.colorize))
	}
	return nil
}

func (m *menuSession) confirmExit(ctx context.Context) (bool, error) {
	active := m.orchestrator.ActiveCount()
	if active == 0 {
		fmt.Fprintln(m.out, "Goodbye!")
		return true, nil
	}
	ok, err := m.prompt.confirm(ctx, fmt.Sprintf("There are %d active downloads. Exit anyway?", active))
	if err != nil {
		return false, err
	}
	if ok {
		fmt.Fprintln(m.out, "Exiting. Active downloads will be cancelled.")
	}
	return ok, nil
}

func (m *menuSession) showStatus(ctx context.Context) error {
	statuses := m.orchestrator.Status()
	if len(statuses) == 0 {
		fmt.Fprintln(m.out, "No active downloads.")
	} else {
		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, strings.Join(renderSectionHeader("Current active downloads", m.colorize), "\n"))
		fmt.Fprintln(m.out, renderTable(
			[]string{"Identifier", "State", "Progress", "Started"},
			statusRows(statuses, m.now()),
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
		))
	}
	_, err := m.prompt.ask(ctx, "\nPress Enter to continue...")
	return err
}

func statusRows(statuses []download.TaskStatus, now time.Time) [][]string {
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		rows = append(rows, []string{
			status.Identifier,
			string(status.State),
			formatProgress(status.BytesDone, status.BytesTotal),
			humanize.RelTime(status.StartedAt, now, "ago", "from now"),
		})
	}
	return rows
}

func formatProgress(done, total int64) string {
	if done <= 0 && total <= 0 {
		return "-"
	}
	if total <= 0 {
		return humanize.Bytes(uint64(max(done, 0)))
	}
	percent := float64(done) / float64(total) * 100
	return fmt.Sprintf("%s / %s (%.0f%%)", humanize.Bytes(uint64(max(done, 0))), humanize.Bytes(uint64(total)), percent)
}

// drainOutcomes reports finished downloads, records them in the history
// ledger, and forwards them to playback event subscribers.
func (m *menuSession) drainOutcomes(ctx context.Context) {
	for _, outcome := range m.orchestrator.Poll() {
		recordOutcome(context.WithoutCancel(ctx), m.store, outcome, m.logger)
		event := playback.Event{Type: playback.EventDownload, Message: outcome.String()}
		if outcome.Result.ArtifactPath != "" {
			event.Filename = filepath.Base(outcome.Result.ArtifactPath)
		}
		m.hub.Publish(event)
		kind, message := describeOutcome(outcome)
		fmt.Fprintln(m.out, renderStatusLine(kind, message, m.colorize))
	}
}

// shutdown cancels remaining downloads, records their outcomes, and stops the
// guide server.
func (m *menuSession) shutdown() {
	m.orchestrator.Close()
	m.drainOutcomes(context.Background())
	if m.server != nil {
		if err := m.server.stop(); err != nil {
			logging.WarnWithContext(m.logger, "guide server stopped with error", "guide_server_stop_failed",
				logging.Error(err),
			)
		}
		m.server = nil
	}
}
