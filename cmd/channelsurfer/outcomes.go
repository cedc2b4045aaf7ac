package main

import (
	"context"
	"fmt"
	"log/slog"

	"channelsurfer/internal/download"
	"channelsurfer/internal/history"
	"channelsurfer/internal/logging"
	"channelsurfer/internal/services"
)

func historyEntry(outcome download.Outcome) history.Entry {
	entry := history.Entry{
		Identifier:    outcome.Identifier,
		Title:         outcome.Result.Record.Title,
		Message:       outcome.Reason,
		Bytes:         outcome.Result.Bytes,
		ArtifactPath:  outcome.Result.ArtifactPath,
		CorrelationID: outcome.CorrelationID,
		StartedAt:     outcome.StartedAt,
		FinishedAt:    outcome.FinishedAt,
	}
	switch outcome.Kind {
	case download.OutcomeSuccess:
		entry.Outcome = history.OutcomeSuccess
	case download.OutcomeAborted:
		entry.Outcome = history.OutcomeAborted
	default:
		entry.Outcome = history.OutcomeFailure
	}
	if outcome.Err != nil {
		entry.ErrorKind = services.Kind(outcome.Err)
	}
	return entry
}

// recordOutcome stores outcome in the history ledger. A failing ledger is
// logged and otherwise ignored; the download itself already finished.
func recordOutcome(ctx context.Context, store *history.Store, outcome download.Outcome, logger *slog.Logger) {
	if store == nil {
		return
	}
	if _, err := store.Add(ctx, historyEntry(outcome)); err != nil {
		logging.WarnWithContext(logger, "failed to record download history", "history_record_failed",
			logging.String(logging.FieldIdentifier, outcome.Identifier),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
		)
	}
}

func describeOutcome(outcome download.Outcome) (statusKind, string) {
	switch outcome.Kind {
	case download.OutcomeSuccess:
		return statusOK, fmt.Sprintf("Download completed: %s", outcome.Identifier)
	case download.OutcomeAborted:
		return statusWarn, fmt.Sprintf("Download aborted for %s: %s", outcome.Identifier, outcome.Reason)
	default:
		return statusError, fmt.Sprintf("Download failed for %s: %s", outcome.Identifier, outcome.Reason)
	}
}
