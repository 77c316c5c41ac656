// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notebook

import "github.com/pdiddy/sos-convert/pkg/types"

// RekernelOptions configures Rekernel.
type RekernelOptions struct {
	// HostKernel is the host language name (default "SoS").
	HostKernel string

	// Python3ToSoS turns a python3 notebook into a host-language notebook
	// instead of one whose cells run in Python.
	Python3ToSoS bool
}

// RekernelResult is the outcome of Rekernel.
type RekernelResult struct {
	Document types.Document

	// Changed is false when the input already used the sos kernel and was
	// returned as is.
	Changed bool

	// Language and Kernel name the language every code cell was assigned.
	Language string
	Kernel   string
}

// Rekernel converts a single-kernel notebook into a multi-language one.
// Every code cell is tagged with the original language, which becomes the
// default kernel.
func Rekernel(doc types.Document, opts RekernelOptions) RekernelResult {
	host := opts.HostKernel
	if host == "" {
		host = "SoS"
	}

	spec := doc.Metadata.KernelSpec
	if spec.Name == hostKernelID {
		return RekernelResult{Document: doc, Language: host, Kernel: hostKernelID}
	}

	lang, kernel := spec.Language, spec.Name
	if kernel == "python3" && opts.Python3ToSoS {
		lang, kernel = host, hostKernelID
	}

	cells := make([]types.Cell, len(doc.Cells))
	for i, c := range doc.Cells {
		if c.Type == types.CellCode {
			c.Metadata = c.Metadata.Clone()
			c.Metadata.Set("kernel", types.StringValue(lang))
		}
		cells[i] = c
	}

	var extra []types.KernelInfo
	if kernel != hostKernelID {
		extra = append(extra, types.KernelInfo{Name: lang, Kernel: kernel})
	}

	return RekernelResult{
		Document: types.Document{
			Cells:    cells,
			Metadata: Template(host, lang, extra...),
		},
		Changed:  true,
		Language: lang,
		Kernel:   kernel,
	}
}
