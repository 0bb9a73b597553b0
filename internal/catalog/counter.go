package catalog

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/lepinkainen/shelfmark/internal/fileutil"
)

// Counter is the persisted UID sequence. The file holds the last UID handed
// out as a decimal number; a missing or empty file means none has been.
type Counter struct {
	path string
	mu   sync.Mutex
}

// NewCounter returns a counter backed by path.
func NewCounter(path string) *Counter {
	return &Counter{path: path}
}

// Path returns the counter file location.
func (c *Counter) Path() string {
	return c.path
}

// Current returns the last UID handed out, 0 if none.
func (c *Counter) Current() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

// Next reserves and returns the next UID. The new value is written to a
// temporary file and renamed over the old one, so an interrupted write
// leaves the previous value intact.
func (c *Counter) Next() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.read()
	if err != nil {
		return 0, err
	}
	next := current + 1
	if next == 0 {
		return 0, fmt.Errorf("UID counter in %s overflowed", c.path)
	}

	data := []byte(strconv.FormatUint(next, 10) + "\n")
	if err := fileutil.WriteFileAtomic(c.path, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to persist UID counter: %w", err)
	}
	return next, nil
}

func (c *Counter) read() (uint64, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read UID counter: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("UID counter %s holds %q, not a number: %w", c.path, text, err)
	}
	return value, nil
}
