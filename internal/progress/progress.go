// Package progress draws a stderr progress bar while a batch of bundles
// is scanned, and clears it before formatted output starts.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Bar counts scanned bundles. Tick is safe to call from pooled workers.
type Bar struct {
	bar   *progressbar.ProgressBar
	label string
}

// New creates a bar sized for a batch of total bundles.
func New(label string, total int) *Bar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(24),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetElapsedTime(false),
	)
	return &Bar{bar: bar, label: label}
}

// Tick records one scanned bundle.
func (b *Bar) Tick() {
	b.bar.Add(1)
}

// Done clears the bar so the formatter writes to a clean line.
func (b *Bar) Done() {
	b.bar.Finish()
	b.bar.Clear()
}

// Fail clears the bar and reports the batch error on stderr.
func (b *Bar) Fail(err error) {
	b.bar.Finish()
	b.bar.Clear()
	fmt.Fprintf(os.Stderr, "  %s failed: %v\n", b.label, err)
}
