// Package progress reports stage completion on the terminal.
package progress

import (
	"github.com/cheggaaa/pb/v3"
)

// Tracker counts finished tasks of one stage.
type Tracker interface {
	Increment()
	Finish()
}

// Factory starts a tracker for a stage of total tasks.
type Factory func(prefix string, total int) Tracker

// Bar starts a terminal progress bar that clears itself when done.
func Bar(prefix string, total int) Tracker {
	bar := pb.Full.Start(total)
	bar.Set("prefix", prefix+" ")
	bar.Set(pb.CleanOnFinish, true)
	return barTracker{bar}
}

type barTracker struct {
	bar *pb.ProgressBar
}

func (b barTracker) Increment() { b.bar.Increment() }
func (b barTracker) Finish()    { b.bar.Finish() }

// Noop discards progress. It is used in test mode.
func Noop(string, int) Tracker { return noop{} }

type noop struct{}

func (noop) Increment() {}
func (noop) Finish()    {}

// ForEnv returns Noop for the test environment and Bar otherwise.
func ForEnv(env string) Factory {
	if env == "test" {
		return Noop
	}
	return Bar
}
