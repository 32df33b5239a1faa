package history

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/fairholdem/internal/table"
)

// Writer stores one TOML file per settled hand under a directory.
type Writer struct {
	dir    string
	now    func() time.Time
	logger *log.Logger
}

// NewWriter creates dir if needed.
func NewWriter(dir string, logger *log.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Writer{dir: dir, now: time.Now, logger: logger.WithPrefix("history")}, nil
}

// WriteHand records the hand s has just settled. Stored records are never
// overwritten.
func (w *Writer) WriteHand(s table.State) error {
	rec, err := FromState(s, "", w.now())
	if err != nil {
		return err
	}
	data, err := EncodeToBytes(rec)
	if err != nil {
		return err
	}
	path := filepath.Join(w.dir, FileName(rec))
	if err := storeRecord(path, data); err != nil {
		return err
	}
	w.logger.Debug("hand recorded", "table", rec.Table, "hand", rec.HandNumber, "path", path)
	return nil
}

// FileName is the name a record is stored under.
func FileName(rec *Record) string {
	return fmt.Sprintf("%s-%06d-%s.toml", rec.Table, rec.HandNumber, rec.HandID)
}

// Load reads a record from disk.
func Load(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
