package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"transmute/internal/logging"
)

// progressDisplay shows the percentage of the running job. Terminals get a
// redrawn bar; pipes and files get one line per 25%.
type progressDisplay interface {
	update(pct int)
	finish(succeeded bool)
}

func newProgressDisplay(w io.Writer, label string) progressDisplay {
	if shouldColorize(w) {
		return &barDisplay{bar: progressbar.NewOptions(100,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(label),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)}
	}
	return &lineDisplay{w: w, label: label, sampler: logging.NewProgressSampler(25)}
}

type barDisplay struct {
	bar *progressbar.ProgressBar
}

func (d *barDisplay) update(pct int) {
	_ = d.bar.Set(pct)
}

func (d *barDisplay) finish(succeeded bool) {
	if succeeded {
		_ = d.bar.Finish()
		return
	}
	_ = d.bar.Clear()
}

type lineDisplay struct {
	w       io.Writer
	label   string
	sampler *logging.ProgressSampler
}

func (d *lineDisplay) update(pct int) {
	if pct >= 100 || !d.sampler.ShouldLog(pct) {
		return
	}
	fmt.Fprintf(d.w, "%s: %d%%\n", d.label, pct)
}

func (d *lineDisplay) finish(bool) {}
