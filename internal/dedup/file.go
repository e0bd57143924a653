package dedup

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/incident-watch/backend/pkg/logger"
)

// FileLedger is an append-only flat ledger of processed keys, loaded fully
// into memory at startup. Unlike the time-windowed backends it is permanent
// until trimmed.
type FileLedger struct {
	path string

	mu    sync.Mutex
	keys  map[string]struct{}
	order []string
}

func NewFileLedger(path string) (*FileLedger, error) {
	l := &FileLedger{
		path: path,
		keys: make(map[string]struct{}),
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key := strings.TrimSpace(scanner.Text())
		if key == "" {
			continue
		}
		if _, ok := l.keys[key]; !ok {
			l.keys[key] = struct{}{}
			l.order = append(l.order, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	logger.Info("Processed-key ledger loaded",
		zap.String("path", path),
		zap.Int("keys", len(l.keys)),
	)

	return l, nil
}

func (l *FileLedger) Seen(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.keys[key]
	return ok
}

func (l *FileLedger) MarkSeen(_ context.Context, key string) error {
	if key == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.keys[key]; ok {
		return nil
	}

	l.keys[key] = struct{}{}
	l.order = append(l.order, key)

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger for append: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintln(file, key); err != nil {
		return fmt.Errorf("failed to append to ledger: %w", err)
	}

	return nil
}

// Trim keeps only the most recent maxEntries keys, rewriting the file.
func (l *FileLedger) Trim(maxEntries int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.order) <= maxEntries {
		return nil
	}

	l.order = l.order[len(l.order)-maxEntries:]
	l.keys = make(map[string]struct{}, len(l.order))
	for _, key := range l.order {
		l.keys[key] = struct{}{}
	}

	file, err := os.Create(l.path)
	if err != nil {
		return fmt.Errorf("failed to rewrite ledger: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, key := range l.order {
		fmt.Fprintln(w, key)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush ledger: %w", err)
	}

	logger.Info("Processed-key ledger trimmed", zap.Int("kept", len(l.order)))

	return nil
}
