// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is a conversion with its cells.
type ExportEntry struct {
	Conversion `yaml:",inline"`
	CellList   []ExportCell `json:"cell_list" yaml:"cell_list"`
}

// ExportCell is the exported form of a recorded cell.
type ExportCell struct {
	Type           string `json:"type" yaml:"type"`
	ExecutionCount *int   `json:"execution_count,omitempty" yaml:"execution_count,omitempty"`
	Kernel         string `json:"kernel,omitempty" yaml:"kernel,omitempty"`
	Content        string `json:"content" yaml:"content"`
}

const exportLimit = 100000

// ExportYAML writes every recorded conversion to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes every recorded conversion to w as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	convs, err := s.Conversions(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(convs))
	for i, c := range convs {
		cells, err := s.Search(ctx, QueryOptions{Source: c.Source, MaxResults: exportLimit})
		if err != nil {
			return nil, fmt.Errorf("querying cells of %s: %w", c.Source, err)
		}
		entries[i] = ExportEntry{Conversion: c, CellList: make([]ExportCell, len(cells))}
		for j, r := range cells {
			entries[i].CellList[j] = ExportCell{
				Type:           r.CellType,
				ExecutionCount: r.ExecutionCount,
				Kernel:         r.Kernel,
				Content:        r.Content,
			}
		}
	}
	return entries, nil
}
