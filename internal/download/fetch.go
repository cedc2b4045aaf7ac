package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"channelsurfer/internal/archive"
	"channelsurfer/internal/guide"
	"channelsurfer/internal/library"
	"channelsurfer/internal/logging"
	"channelsurfer/internal/services"
)

const (
	stageDownload         = "download"
	defaultStreamTimeout  = 4 * time.Hour
	progressReportMinimum = 256 << 10
)

// Archive is the subset of the archive client a download needs.
type Archive interface {
	Metadata(ctx context.Context, identifier string) (*archive.ItemResponse, error)
	Open(ctx context.Context, identifier, fileName string) (*archive.Artifact, error)
}

// ProgressFunc receives the bytes written so far and the expected total,
// which is zero when unknown.
type ProgressFunc func(done, total int64)

// Options tune a single download.
type Options struct {
	// OutputDir receives the artifact and its sidecar.
	OutputDir string
	// PreferredFile names the item file to fetch instead of the automatic
	// choice.
	PreferredFile string
	Progress      ProgressFunc
}

// Result describes a completed download.
type Result struct {
	Identifier   string
	FileName     string
	Bytes        int64
	ArtifactPath string
	SidecarPath  string
	Record       guide.Record
}

// Downloader fetches one archive item into the library.
type Downloader struct {
	archive       Archive
	synthesizer   guide.Synthesizer
	streamTimeout time.Duration
	logger        *slog.Logger
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithSynthesizer overrides how guide records are built.
func WithSynthesizer(s guide.Synthesizer) DownloaderOption {
	return func(d *Downloader) {
		d.synthesizer = s
	}
}

// WithStreamTimeout bounds the artifact transfer as a whole.
func WithStreamTimeout(timeout time.Duration) DownloaderOption {
	return func(d *Downloader) {
		if timeout > 0 {
			d.streamTimeout = timeout
		}
	}
}

// WithDownloaderLogger attaches a logger.
func WithDownloaderLogger(logger *slog.Logger) DownloaderOption {
	return func(d *Downloader) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDownloader creates a Downloader backed by the given archive.
func NewDownloader(source Archive, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		archive:       source,
		streamTimeout: defaultStreamTimeout,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.NewComponentLogger(d.logger, "downloader")
	return d
}

// Task adapts Fetch for the Orchestrator. Progress reported by the
// orchestrator is forwarded to opts.Progress as well.
func (d *Downloader) Task(identifier string, opts Options) Task {
	return func(ctx context.Context, progress ProgressFunc) (Result, error) {
		forward := opts.Progress
		opts.Progress = func(done, total int64) {
			if progress != nil {
				progress(done, total)
			}
			if forward != nil {
				forward(done, total)
			}
		}
		return d.Fetch(ctx, identifier, opts)
	}
}

// Fetch downloads the selected video file of identifier into
// opts.OutputDir and writes its guide sidecar once the transfer completes.
// A failed transfer leaves the partial artifact in place.
func (d *Downloader) Fetch(ctx context.Context, identifier string, opts Options) (Result, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, stageDownload, "fetch", "identifier must not be empty", nil)
	}
	outputDir := strings.TrimSpace(opts.OutputDir)
	if outputDir == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, stageDownload, "fetch", "output directory must not be empty", nil)
	}
	ctx = services.WithIdentifier(ctx, identifier)
	ctx = services.WithStage(ctx, stageDownload)
	logger := logging.WithContext(ctx, d.logger)

	item, err := d.archive.Metadata(ctx, identifier)
	if err != nil {
		return Result{}, err
	}
	file, err := SelectVideo(item.Files, opts.PreferredFile)
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrFilesystem, stageDownload, "create output dir", outputDir, err)
	}
	ext := strings.TrimPrefix(path.Ext(file.Name), ".")
	artifactPath := filepath.Join(outputDir, library.ArtifactName(item.Metadata.Title, identifier, ext))
	result := Result{
		Identifier:   identifier,
		FileName:     file.Name,
		ArtifactPath: artifactPath,
		SidecarPath:  library.SidecarPath(artifactPath),
	}

	logger.Info("download started",
		logging.String(logging.FieldEventType, "download_start"),
		logging.String("file", file.Name),
		logging.String("artifact", artifactPath),
	)

	written, err := d.stream(ctx, identifier, file, artifactPath, opts.Progress)
	result.Bytes = written
	if err != nil {
		return result, err
	}

	result.Record = d.synthesizer.Synthesize(item.Metadata, file)
	if err := library.WriteSidecar(result.SidecarPath, result.Record); err != nil {
		return result, err
	}

	logger.Info("download complete",
		logging.String(logging.FieldEventType, "download_complete"),
		logging.Int64("bytes", written),
		logging.String("category", string(result.Record.Category)),
		logging.Int("channel", int(result.Record.ChannelNumber)),
	)
	return result, nil
}

func (d *Downloader) stream(ctx context.Context, identifier string, file archive.FileEntry, target string, progress ProgressFunc) (int64, error) {
	streamCtx, cancel := context.WithTimeout(ctx, d.streamTimeout)
	defer cancel()

	artifact, err := d.archive.Open(streamCtx, identifier, file.Name)
	if err != nil {
		return 0, err
	}
	defer artifact.Body.Close()

	total := artifact.Size
	if total == 0 && file.SizeBytes != nil {
		total = int64(*file.SizeBytes)
	}

	out, err := os.Create(target)
	if err != nil {
		return 0, services.Wrap(services.ErrFilesystem, stageDownload, "create artifact", target, err)
	}
	writer := &progressWriter{out: out, total: total, report: progress}
	_, copyErr := io.Copy(writer, artifact.Body)
	closeErr := out.Close()
	downloadedBytes.Add(float64(writer.done))
	writer.flush()

	switch {
	case writer.writeErr != nil:
		return writer.done, services.Wrap(services.ErrFilesystem, stageDownload, "write artifact", target, writer.writeErr)
	case copyErr != nil:
		if errors.Is(streamCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			copyErr = fmt.Errorf("stream exceeded %s: %w", d.streamTimeout, copyErr)
		}
		return writer.done, services.Wrap(services.ErrTransport, stageDownload, "read artifact", file.Name, copyErr)
	case closeErr != nil:
		return writer.done, services.Wrap(services.ErrFilesystem, stageDownload, "close artifact", target, closeErr)
	}
	if artifact.Size > 0 && writer.done != artifact.Size {
		return writer.done, services.Wrap(services.ErrTransport, stageDownload, "read artifact",
			fmt.Sprintf("short body: got %d of %d bytes", writer.done, artifact.Size), io.ErrUnexpectedEOF)
	}
	return writer.done, nil
}

// progressWriter counts bytes and throttles progress callbacks.
type progressWriter struct {
	out      io.Writer
	total    int64
	done     int64
	reported int64
	report   ProgressFunc
	writeErr error
}

func (w *progressWriter) Write(p []byte) (int, error) {
	n, err := w.out.Write(p)
	w.done += int64(n)
	if err != nil {
		w.writeErr = err
		return n, err
	}
	if w.done-w.reported >= progressReportMinimum {
		w.flush()
	}
	return n, nil
}

func (w *progressWriter) flush() {
	if w.report == nil || (w.reported == w.done && w.done != 0) {
		return
	}
	w.reported = w.done
	w.report(w.done, w.total)
}
