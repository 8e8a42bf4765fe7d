// Package debuglog holds the server's switchable debug log: a persisted
// on/off flag and the append-mode file that receives entries while the flag
// is on.
package debuglog

import (
	"fmt"
	"sync"
	"time"
)

// Options configures a State
type Options struct {
	// LogPath is the debug log file
	LogPath string
	// StatePath is the flag file
	StatePath string
	// Now overrides the clock used for timestamps
	Now func() time.Time
}

// State is the process-wide logging switch. Mutations persist the flag
// before the in-memory value changes.
type State struct {
	mu      sync.Mutex
	store   *FlagStore
	logPath string
	now     func() time.Time
	enabled bool
	sink    *Sink
}

// Load reads the persisted flag and opens the sink when logging is enabled.
// An unreadable flag file leaves logging disabled; the read error is returned
// alongside a usable State.
func Load(opts Options) (*State, error) {
	st := &State{
		store:   NewFlagStore(opts.StatePath),
		logPath: opts.LogPath,
		now:     opts.Now,
	}

	enabled, loadErr := st.store.Load()
	if loadErr != nil {
		return st, loadErr
	}
	if !enabled {
		return st, nil
	}

	sink, err := OpenSink(st.logPath, st.now)
	if err != nil {
		return st, err
	}
	st.enabled = true
	st.sink = sink
	return st, nil
}

// Enabled reports whether log entries are currently written
func (s *State) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Enable opens the sink if it is not open yet, then persists "enabled".
// On failure neither the flag file nor the in-memory state changes.
// Calling it while already enabled only rewrites the flag.
func (s *State) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	opened := false
	if s.sink == nil {
		sink, err := OpenSink(s.logPath, s.now)
		if err != nil {
			return err
		}
		s.sink = sink
		opened = true
	}

	if err := s.store.Save(true); err != nil {
		if opened {
			_ = s.closeSinkLocked()
		}
		return err
	}
	s.enabled = true
	return nil
}

// Disable persists "disabled" and closes the sink if it is open
func (s *State) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(false); err != nil {
		return err
	}
	s.enabled = false
	return s.closeSinkLocked()
}

// Logf writes a formatted entry when logging is enabled
func (s *State) Logf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.sink == nil {
		return
	}
	s.sink.Println(fmt.Sprintf(format, args...))
}

// Close releases the sink without touching the persisted flag
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeSinkLocked()
}

func (s *State) closeSinkLocked() error {
	if s.sink == nil {
		return nil
	}
	err := s.sink.Close()
	s.sink = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}
