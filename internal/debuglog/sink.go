package debuglog

import (
	"fmt"
	"log"
	"os"
	"time"
)

// timestampLayout renders yyyy-MM-dd HH:mm:ss.fff
const timestampLayout = "2006-01-02 15:04:05.000"

// Sink is an append-only log file. Each line is prefixed with a
// millisecond-precision local timestamp.
type Sink struct {
	file   *os.File
	logger *log.Logger
	now    func() time.Time
}

// OpenSink opens (or creates) the log file at path in append mode
func OpenSink(path string, now func() time.Time) (*Sink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &Sink{
		file:   file,
		logger: log.New(file, "", 0),
		now:    now,
	}, nil
}

// Println writes one timestamped line
func (s *Sink) Println(message string) {
	s.logger.Printf("[%s] %s", s.now().Format(timestampLayout), message)
}

// Close closes the underlying file
func (s *Sink) Close() error {
	return s.file.Close()
}
