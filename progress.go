package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/9seconds/geovisits/enrichlib"
)

// progressObserver renders a progress of the run as a terminal progress
// bar. A bar is created on the first event because only then a total
// number of addresses is known.
type progressObserver struct {
	writer   io.Writer
	bar      *progressbar.ProgressBar
	failures int
}

func (p *progressObserver) Progress(event enrichlib.Progress) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions(event.Total,
			progressbar.OptionSetWriter(p.writer),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish())
	}

	description := "Processing IP " + event.IP

	if p.failures > 0 {
		description += fmt.Sprintf(" (%d failed)", p.failures)
	}

	p.bar.Describe(description)
	p.bar.Set(event.Completed) // nolint: errcheck
}

func (p *progressObserver) LookupError(_ string, _ error) {
	p.failures++
}

func (p *progressObserver) Finish() {
	if p.bar != nil {
		p.bar.Finish() // nolint: errcheck
	}
}
