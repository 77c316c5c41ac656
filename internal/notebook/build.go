// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notebook assembles notebook Documents and reads and writes them
// in the nbformat 4 JSON layout.
package notebook

import (
	"strings"

	"github.com/pdiddy/sos-convert/internal/syntax"
	"github.com/pdiddy/sos-convert/pkg/types"
)

const (
	// ExporterID is the nbconvert exporter recorded in language_info.
	ExporterID = "sos_notebook.converter.SoS_Exporter"

	hostKernelID = "sos"
)

// SoSKernelSpec is the kernelspec of every document the converter writes.
var SoSKernelSpec = types.KernelSpec{
	DisplayName: "SoS",
	Language:    "sos",
	Name:        "sos",
}

// Template returns document metadata for a notebook whose languages are
// the host language followed by extra, with defaultKernel selected.
func Template(hostKernel, defaultKernel string, extra ...types.KernelInfo) types.DocumentMetadata {
	kernels := []types.KernelInfo{{Name: hostKernel, Kernel: hostKernelID}}
	kernels = append(kernels, extra...)
	return types.DocumentMetadata{
		KernelSpec:    SoSKernelSpec,
		Kernels:       kernels,
		DefaultKernel: defaultKernel,
	}
}

// BuildOptions configures Build.
type BuildOptions struct {
	// HostKernel is the workflow language name (default "SoS").
	HostKernel string

	// Header recognizes section headers for WorkflowOnly.
	Header syntax.Matcher
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.HostKernel == "" {
		o.HostKernel = "SoS"
	}
	if o.Header == nil {
		o.Header = syntax.SectionHeader
	}
	return o
}

// Build assembles cells into a Document. WorkflowOnly drops every cell that
// is not host-language section content; ExportAll keeps all cells.
func Build(cells []types.Cell, variant types.Variant, opts BuildOptions) types.Document {
	opts = opts.withDefaults()

	kept := make([]types.Cell, 0, len(cells))
	for _, c := range cells {
		if variant == types.WorkflowOnly && !IsWorkflowCell(c, opts.Header, opts.HostKernel) {
			continue
		}
		kept = append(kept, c)
	}

	return types.Document{
		Cells:    kept,
		Metadata: Template(opts.HostKernel, opts.HostKernel),
	}
}

// IsWorkflowCell reports whether c is host-language section content: a
// code cell of the host kernel whose first line, after any include
// directives and blank lines, is a section header.
func IsWorkflowCell(c types.Cell, header syntax.Matcher, hostKernel string) bool {
	if c.Type != types.CellCode || !IsHostKernel(c.Kernel(), hostKernel) {
		return false
	}
	for _, line := range c.Source {
		if syntax.IsBlank(line) || syntax.IsIncludeDirective(line) {
			continue
		}
		return header.MatchString(line)
	}
	return false
}

// IsHostKernel reports whether a cell's kernel names the host language.
// An empty kernel means the notebook default, which is the host.
func IsHostKernel(kernel, hostKernel string) bool {
	return kernel == "" || strings.EqualFold(kernel, hostKernel) || kernel == hostKernelID
}
