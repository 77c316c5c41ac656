// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the notebook data model shared by the script parser,
// the notebook builder, the script emitter and the markup splitter, plus the
// configuration and condition types used at the pipeline boundary.
package types

import "encoding/json"

// CellType is the nbformat cell_type of a Cell.
type CellType string

const (
	CellCode     CellType = "code"
	CellMarkdown CellType = "markdown"
)

// Known reports whether t is one of the cell types the converter understands.
func (t CellType) Known() bool {
	return t == CellCode || t == CellMarkdown
}

// Variant selects which cells survive a build or an emit.
type Variant string

const (
	// WorkflowOnly keeps only cells that hold host-language section content.
	WorkflowOnly Variant = "workflow"
	// ExportAll keeps every cell with its type, count and metadata.
	ExportAll Variant = "all"
)

// Cell is one unit of notebook content.
type Cell struct {
	// ID is the nbformat 4.5 cell id. Empty for cells parsed from text.
	ID string

	// Type is the cell type. Cells read from a notebook may carry types
	// other than code and markdown.
	Type CellType

	// Source holds the cell content, one entry per line, without newlines.
	Source []string

	// ExecutionCount is the execution counter of a code cell, nil when unset.
	ExecutionCount *int

	// Metadata holds the cell annotations in insertion order.
	Metadata Metadata

	// Outputs carries code cell outputs read from a notebook verbatim.
	Outputs []json.RawMessage

	// Attachments carries the attachments object of a markdown or raw
	// cell read from a notebook verbatim.
	Attachments json.RawMessage
}

// Text returns the cell source joined with newlines.
func (c Cell) Text() string {
	return joinLines(c.Source)
}

// Kernel returns the value of the "kernel" metadata entry, or "" if absent.
func (c Cell) Kernel() string {
	v, ok := c.Metadata.Get("kernel")
	if !ok {
		return ""
	}
	return v.String()
}

// Count returns the execution count and whether it is set.
func (c Cell) Count() (int, bool) {
	if c.ExecutionCount == nil {
		return 0, false
	}
	return *c.ExecutionCount, true
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}

// KernelSpec is the notebook-level kernelspec block.
type KernelSpec struct {
	DisplayName string `json:"display_name" yaml:"display_name"`
	Language    string `json:"language" yaml:"language"`
	Name        string `json:"name" yaml:"name"`
}

// KernelInfo names one language available in a multi-language notebook.
// It serializes as the tuple [Name, Kernel, "", ""].
type KernelInfo struct {
	// Name is the language name shown in the notebook (e.g. "SoS", "R").
	Name string `json:"name" yaml:"name"`

	// Kernel is the Jupyter kernel id (e.g. "sos", "ir").
	Kernel string `json:"kernel" yaml:"kernel"`
}

// DocumentMetadata holds the document-level metadata of a notebook.
type DocumentMetadata struct {
	KernelSpec    KernelSpec
	Kernels       []KernelInfo
	DefaultKernel string
}

// Document is an ordered sequence of cells plus document metadata.
type Document struct {
	Cells    []Cell
	Metadata DocumentMetadata
}

func joinLines(lines []string) string {
	n := 0
	for _, l := range lines {
		n += len(l) + 1
	}
	b := make([]byte, 0, n)
	for i, l := range lines {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, l...)
	}
	return string(b)
}
