// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs conversions between scripts, notebooks and R
// Markdown files, one file or a batch at a time, and records them in the
// ledger.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/sos-convert/internal/ledger"
	"github.com/pdiddy/sos-convert/internal/logger"
	"github.com/pdiddy/sos-convert/internal/markup"
	"github.com/pdiddy/sos-convert/internal/notebook"
	"github.com/pdiddy/sos-convert/internal/script"
	"github.com/pdiddy/sos-convert/pkg/types"
)

// Ledger is the part of the conversion ledger the converter uses.
type Ledger interface {
	Unchanged(ctx context.Context, source, dest, hash string) (bool, error)
	Record(ctx context.Context, rec ledger.Record) error
}

// Job describes one file conversion.
type Job struct {
	Source string
	Dest   string

	// To overrides the target format taken from Dest ("sos", "ipynb").
	To string

	// Variant selects workflow-only or export-all. Empty uses the
	// direction default: export-all for scripts, the configured variant
	// for notebooks.
	Variant types.Variant

	// Python3ToSoS turns python3 notebooks into SoS notebooks on
	// notebook-to-notebook conversion.
	Python3ToSoS bool

	// Force converts even when the ledger has the source as unchanged.
	Force bool
}

// Output is the result of converting text.
type Output struct {
	Data     []byte
	Document types.Document

	// Changed is false when the input needed no conversion and Data is the
	// input itself.
	Changed bool

	// Cells is the number of cells written to Data.
	Cells int
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of jobs processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any job failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Converter runs conversions with one configuration.
type Converter struct {
	cfg    types.ConvertConfig
	log    *logger.Logger
	ledger Ledger
	now    func() time.Time
}

// New returns a converter. led may be nil to run without a ledger.
func New(cfg types.ConvertConfig, log *logger.Logger, led Ledger) *Converter {
	if log == nil {
		log = logger.Discard()
	}
	return &Converter{cfg: cfg, log: log, ledger: led, now: time.Now}
}

func (c *Converter) variant(d Direction, job Job) types.Variant {
	if job.Variant != "" {
		return job.Variant
	}
	if d == ScriptToNotebook {
		return types.ExportAll
	}
	return c.cfg.Variant()
}

// ConvertText converts data read from source. Recoverable conditions go
// to the logger; a *script.FormatError aborts the conversion.
func (c *Converter) ConvertText(d Direction, source string, data []byte, job Job) (*Output, error) {
	reporter := c.log.Reporter(source)
	variant := c.variant(d, job)
	marshalOpts := notebook.MarshalOptions{CellIDs: c.cfg.Notebook.CellIDs}

	switch d {
	case ScriptToNotebook:
		res, err := script.Parse(string(data), script.Options{
			Source:     source,
			FormatTag:  c.cfg.Script.FormatTag,
			HostKernel: c.cfg.Script.HostKernel,
			Reporter:   reporter,
		})
		if err != nil {
			return nil, err
		}
		doc := notebook.Build(res.Cells, variant, notebook.BuildOptions{HostKernel: c.cfg.Script.HostKernel})
		return c.marshal(doc, marshalOpts)

	case NotebookToScript:
		doc, err := notebook.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		emitOpts := script.EmitOptions{
			Source:        source,
			Shebang:       c.cfg.Script.Shebang,
			FormatVersion: c.cfg.Script.FormatVersion,
			HostKernel:    c.cfg.Script.HostKernel,
			Reporter:      reporter,
		}
		text := script.Emit(doc, variant, emitOpts)
		return &Output{
			Data:     []byte(text),
			Document: doc,
			Changed:  true,
			Cells:    script.EmittedCells(doc, variant, emitOpts),
		}, nil

	case MarkupToNotebook:
		doc := markup.Split(string(data), markup.Options{
			Language:          c.cfg.Markup.Language,
			Kernel:            c.cfg.Markup.Kernel,
			HostKernel:        c.cfg.Script.HostKernel,
			KeepHeadingMarker: c.cfg.Markup.KeepHeadingMarker,
		})
		return c.marshal(doc, marshalOpts)

	case NotebookToNotebook:
		doc, err := notebook.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		res := notebook.Rekernel(doc, notebook.RekernelOptions{
			HostKernel:   c.cfg.Script.HostKernel,
			Python3ToSoS: job.Python3ToSoS,
		})
		if !res.Changed {
			return &Output{Data: data, Document: doc, Cells: len(doc.Cells)}, nil
		}
		return c.marshal(res.Document, marshalOpts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, d)
}

func (c *Converter) marshal(doc types.Document, opts notebook.MarshalOptions) (*Output, error) {
	data, err := notebook.Marshal(doc, opts)
	if err != nil {
		return nil, err
	}
	return &Output{Data: data, Document: doc, Changed: true, Cells: len(doc.Cells)}, nil
}

// ConvertFile converts job.Source into job.Dest, printing a status line to
// w. Sources the ledger knows as unchanged are skipped unless job.Force.
func (c *Converter) ConvertFile(ctx context.Context, job Job, w io.Writer) types.ConversionStatus {
	d, err := DetectDirection(job.Source, job.Dest, job.To)
	if err != nil {
		return c.fail(w, job, err)
	}
	if job.Dest == "" {
		job.Dest = DefaultDest(job.Source, d)
	}

	data, err := os.ReadFile(job.Source)
	if err != nil {
		return c.fail(w, job, err)
	}
	hash := ledger.Hash(data, c.settings(d, job)...)

	if c.ledger != nil && !job.Force && fileExists(job.Dest) {
		unchanged, err := c.ledger.Unchanged(ctx, job.Source, job.Dest, hash)
		if err != nil {
			return c.fail(w, job, err)
		}
		if unchanged {
			c.log.Skipped(job.Source, "unchanged since last conversion")
			fmt.Fprintf(w, "skipped: %s (unchanged)\n", job.Source)
			return types.ConversionSkipped
		}
	}

	out, err := c.ConvertText(d, job.Source, data, job)
	if err != nil {
		return c.fail(w, job, err)
	}

	if !out.Changed && samePath(job.Source, job.Dest) {
		c.log.Skipped(job.Source, "already a SoS notebook")
		fmt.Fprintf(w, "skipped: %s (already a SoS notebook)\n", job.Source)
		return types.ConversionSkipped
	}

	if dir := filepath.Dir(job.Dest); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return c.fail(w, job, err)
		}
	}
	if err := os.WriteFile(job.Dest, out.Data, 0o644); err != nil {
		return c.fail(w, job, err)
	}

	if c.ledger != nil {
		err := c.ledger.Record(ctx, ledger.Record{
			Source:      job.Source,
			Dest:        job.Dest,
			Direction:   string(d),
			Hash:        hash,
			ConvertedAt: c.now(),
			Cells:       out.Document.Cells,
		})
		if err != nil {
			c.log.Warn("ledger update failed", "source", job.Source, "error", err)
		}
	}

	c.log.Converted(job.Source, job.Dest, string(d), out.Cells)
	fmt.Fprintf(w, "converted: %s -> %s (%d cells)\n", job.Source, job.Dest, out.Cells)
	return types.ConversionDone
}

// settings lists every option that shapes the output of d, so the ledger
// hash changes when any of them does.
func (c *Converter) settings(d Direction, job Job) []string {
	out := []string{
		"direction=" + string(d),
		"host_kernel=" + c.cfg.Script.HostKernel,
		fmt.Sprintf("cell_ids=%t", c.cfg.Notebook.CellIDs),
	}
	switch d {
	case ScriptToNotebook:
		out = append(out,
			"variant="+string(c.variant(d, job)),
			"format_tag="+c.cfg.Script.FormatTag)
	case NotebookToScript:
		out = append(out,
			"variant="+string(c.variant(d, job)),
			"shebang="+c.cfg.Script.Shebang,
			"format_version="+c.cfg.Script.FormatVersion)
	case MarkupToNotebook:
		out = append(out,
			"language="+c.cfg.Markup.Language,
			"kernel="+c.cfg.Markup.Kernel,
			fmt.Sprintf("keep_heading_marker=%t", c.cfg.Markup.KeepHeadingMarker))
	case NotebookToNotebook:
		out = append(out, fmt.Sprintf("python3_to_sos=%t", job.Python3ToSoS))
	}
	return out
}

func (c *Converter) fail(w io.Writer, job Job, err error) types.ConversionStatus {
	c.log.ConversionError(job.Source, job.Dest, err)
	fmt.Fprintf(w, "failed:  %s (%v)\n", job.Source, err)
	return types.ConversionFailed
}

// ConvertBatch runs jobs in order, printing per-file status to w and
// returning a summary. It stops early when ctx is cancelled.
func (c *Converter) ConvertBatch(ctx context.Context, jobs []Job, w io.Writer) BatchResult {
	var result BatchResult
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(w, "cancelled: %v\n", err)
			break
		}
		switch c.ConvertFile(ctx, job, w) {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionSkipped:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// IsFormatMismatch reports whether err is a #fileformat= mismatch.
func IsFormatMismatch(err error) bool {
	return errors.Is(err, script.ErrFormatMismatch)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func samePath(a, b string) bool {
	ca, errA := filepath.Abs(a)
	cb, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return ca == cb
}
