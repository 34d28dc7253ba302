package ui

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Spinner reports progress of an operation whose length is unknown up
// front, such as a run over a source tree that is walked lazily. A disabled
// or nil Spinner ignores every call.
type Spinner struct {
	bar     *progressbar.ProgressBar
	enabled bool
}

// NewSpinner creates a spinner rendering to w
func NewSpinner(w io.Writer, description string, enabled bool) *Spinner {
	if !enabled {
		return &Spinner{}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(10),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &Spinner{bar: bar, enabled: true}
}

// IsEnabled reports whether the spinner renders anything
func (s *Spinner) IsEnabled() bool {
	return s != nil && s.enabled
}

// Step advances the spinner by one unit and updates its description
func (s *Spinner) Step(description string) {
	if !s.IsEnabled() {
		return
	}
	s.bar.Describe(description)
	_ = s.bar.Add(1)
}

// Finish completes the spinner and clears its line
func (s *Spinner) Finish() error {
	if !s.IsEnabled() {
		return nil
	}
	return s.bar.Finish()
}
