package host

// default.go wires the handlers in this package into the standard Host a CLI command
// hands to a Processor. MALLOC and FREE are deliberately left unregistered here: the
// real allocator is a bump allocator over the pep register implemented as an assembly
// runtime library (see package monitor), not a host call, so both codes fall through
// Handle's default case and report MODULE_UNAVAILABLE if a program invokes them
// directly without linking that library.

import (
	"io"
	"time"
)

// DefaultConfig configures NewDefault.
type DefaultConfig struct {
	Stdout io.Writer
	Stdin  io.Reader

	// DiskPath is the backing file for DISK_READ/DISK_WRITE. Left empty, the disk
	// handlers are not registered: those interrupts set MODULE_UNAVAILABLE and Handle
	// returns ErrNoHandler.
	DiskPath string

	// FSRoot sandboxes HOST_FS_INTR. Left empty, the filesystem handler is not
	// registered: that interrupt sets MODULE_UNAVAILABLE and Handle returns ErrNoHandler.
	FSRoot string

	// RandomSeed seeds RANDOM for reproducible runs.
	RandomSeed int64
}

// NewDefault builds a Host with stdio, random and clock handlers always registered,
// and disk/filesystem handlers registered only when the corresponding config field is
// set. It returns the Stdio so callers can Flush it on shutdown.
func NewDefault(cfg DefaultConfig) (*Host, *Stdio, error) {
	h := New()

	stdio := NewStdio(cfg.Stdout, cfg.Stdin)
	stdio.Register(h)

	NewRandom(cfg.RandomSeed).Register(h)
	NewClock(time.Now()).Register(h)

	if cfg.DiskPath != "" {
		disk, err := NewDisk(cfg.DiskPath)
		if err != nil {
			return nil, nil, err
		}

		disk.Register(h)
	}

	if cfg.FSRoot != "" {
		NewFilesystem(cfg.FSRoot).Register(h)
	}

	return h, stdio, nil
}
