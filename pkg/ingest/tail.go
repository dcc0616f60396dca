package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vanderheijden86/jamgantt/pkg/logging"
	"github.com/vanderheijden86/jamgantt/pkg/watcher"
)

// RunFileTail follows path and emits one token per complete line appended to
// it, starting from the beginning of the file. The file may not exist yet.
// A truncated file is re-read from the start; a removed file ends the feed.
// Like the line reader, failures are logged and stop only this producer.
func RunFileTail(ctx context.Context, s *Sender, path string, dec *LineDecoder, logger *slog.Logger, opts ...watcher.WatcherOption) error {
	defer s.Close()
	logger = logging.OrNop(logger).With("producer", s.Source(), "path", path)

	errCh := make(chan error, 1)
	opts = append(opts, watcher.WithOnError(func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}))
	w, err := watcher.NewWatcher(path, opts...)
	if err != nil {
		logger.Warn("feed file watch failed", "error", err.Error())
		return nil
	}
	if err := w.Start(); err != nil {
		logger.Warn("feed file watch failed", "error", err.Error())
		return nil
	}
	defer w.Stop()

	t := &tail{path: path, sender: s, dec: dec, logger: logger}
	logger.Info("file tail started", "polling", w.IsPolling())
	if !t.drain() {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("file tail stopped", "lines", t.lines)
			return nil
		case <-w.Changed():
			if !t.drain() {
				return nil
			}
		case err := <-errCh:
			if errors.Is(err, watcher.ErrFileRemoved) {
				logger.Info("feed ended", "reason", "file removed", "lines", t.lines)
				return nil
			}
			logger.Warn("feed file watch error", "error", err.Error())
		}
	}
}

type tail struct {
	path    string
	sender  *Sender
	dec     *LineDecoder
	logger  *slog.Logger
	offset  int64
	partial []byte
	lines   int
}

// drain reads everything appended since the last call and emits the complete
// lines. It returns false once the sender is closed.
func (t *tail) drain() bool {
	data, err := t.readNew()
	if err != nil {
		if !os.IsNotExist(err) {
			t.logger.Warn("feed read failed", "error", err.Error())
		}
		return true
	}
	t.partial = append(t.partial, data...)

	for {
		i := bytes.IndexByte(t.partial, '\n')
		if i < 0 {
			break
		}
		line := string(bytes.TrimRight(t.partial[:i], "\r"))
		t.partial = t.partial[i+1:]
		t.lines++
		if !emitLine(t.sender, t.dec, line, t.logger) {
			return false
		}
	}
	if len(t.partial) > maxLineSize {
		t.logger.Warn("dropping oversized feed line", "bytes", len(t.partial))
		t.partial = nil
	}
	return true
}

func (t *tail) readNew() ([]byte, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat feed file: %w", err)
	}
	if info.Size() < t.offset {
		t.logger.Info("feed file truncated, restarting", "size", info.Size(), "offset", t.offset)
		t.offset = 0
		t.partial = nil
	}
	if info.Size() == t.offset {
		return nil, nil
	}
	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek feed file: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(f, info.Size()-t.offset))
	t.offset += int64(len(data))
	if err != nil {
		return data, fmt.Errorf("read feed file: %w", err)
	}
	return data, nil
}
