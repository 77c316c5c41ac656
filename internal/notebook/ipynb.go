// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/sos-convert/pkg/types"
)

const (
	nbformatMajor     = 4
	nbformatMinor     = 2
	nbformatMinorIDs  = 5
	languageInfoName  = "sos"
	languageInfoMime  = "text/x-sos"
	languageInfoExt   = ".sos"
	languageInfoLexer = "python"
)

// MarshalOptions configures Marshal.
type MarshalOptions struct {
	// CellIDs writes an nbformat 4.5 id on every cell, generating one for
	// cells that have none.
	CellIDs bool
}

// Marshal renders doc as nbformat 4 JSON: one-space indent, sorted keys,
// non-ASCII and HTML characters unescaped, trailing newline.
func Marshal(doc types.Document, opts MarshalOptions) ([]byte, error) {
	withIDs := opts.CellIDs
	for _, c := range doc.Cells {
		if c.ID != "" {
			withIDs = true
			break
		}
	}

	cells := make([]map[string]any, 0, len(doc.Cells))
	for _, c := range doc.Cells {
		cells = append(cells, marshalCell(c, withIDs))
	}

	minor := nbformatMinor
	if withIDs {
		minor = nbformatMinorIDs
	}

	root := map[string]any{
		"cells":          cells,
		"metadata":       marshalMetadata(doc.Metadata),
		"nbformat":       nbformatMajor,
		"nbformat_minor": minor,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encoding notebook: %w", err)
	}
	return buf.Bytes(), nil
}

func marshalCell(c types.Cell, withIDs bool) map[string]any {
	meta := make(map[string]any, c.Metadata.Len())
	for _, e := range c.Metadata.Entries() {
		meta[e.Key] = e.Value.Interface()
	}

	out := map[string]any{
		"cell_type": string(c.Type),
		"metadata":  meta,
		"source":    sourceLines(c.Source),
	}
	if withIDs {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		out["id"] = id
	}
	if len(c.Attachments) > 0 && c.Type != types.CellCode {
		out["attachments"] = c.Attachments
	}
	if c.Type == types.CellCode {
		if c.ExecutionCount != nil {
			out["execution_count"] = *c.ExecutionCount
		} else {
			out["execution_count"] = nil
		}
		outputs := c.Outputs
		if outputs == nil {
			outputs = []json.RawMessage{}
		}
		out["outputs"] = outputs
	}
	return out
}

// sourceLines renders lines as the nbformat list form: every line keeps
// its newline except the last.
func sourceLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i, l := range lines {
		if i < len(lines)-1 {
			l += "\n"
		}
		out = append(out, l)
	}
	return out
}

func marshalMetadata(m types.DocumentMetadata) map[string]any {
	kernels := make([][]string, 0, len(m.Kernels))
	for _, k := range m.Kernels {
		kernels = append(kernels, []string{k.Name, k.Kernel, "", ""})
	}
	return map[string]any{
		"kernelspec": m.KernelSpec,
		"language_info": map[string]string{
			"file_extension":     languageInfoExt,
			"mimetype":           languageInfoMime,
			"name":               languageInfoName,
			"nbconvert_exporter": ExporterID,
			"pygments_lexer":     languageInfoLexer,
		},
		"sos": map[string]any{
			"default_kernel": m.DefaultKernel,
			"kernels":        kernels,
		},
	}
}

type rawNotebook struct {
	Cells    []rawCell `json:"cells"`
	Metadata struct {
		KernelSpec types.KernelSpec `json:"kernelspec"`
		SoS        struct {
			Kernels       [][]string `json:"kernels"`
			DefaultKernel string     `json:"default_kernel"`
		} `json:"sos"`
	} `json:"metadata"`
	NBFormat int `json:"nbformat"`
}

type rawCell struct {
	ID             string            `json:"id"`
	CellType       string            `json:"cell_type"`
	ExecutionCount *int              `json:"execution_count"`
	Metadata       json.RawMessage   `json:"metadata"`
	Outputs        []json.RawMessage `json:"outputs"`
	Attachments    json.RawMessage   `json:"attachments"`
	Source         json.RawMessage   `json:"source"`
}

// Unmarshal reads an nbformat 4 notebook. Cell metadata keeps its key
// order; JSON booleans become Bool values, strings String values and any
// other value a Raw value that Marshal writes back unchanged. Outputs and
// attachments are kept verbatim.
func Unmarshal(data []byte) (types.Document, error) {
	var raw rawNotebook
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.Document{}, fmt.Errorf("decoding notebook: %w", err)
	}
	if raw.NBFormat != 0 && raw.NBFormat != nbformatMajor {
		return types.Document{}, fmt.Errorf("unsupported nbformat %d", raw.NBFormat)
	}

	doc := types.Document{
		Cells: make([]types.Cell, 0, len(raw.Cells)),
		Metadata: types.DocumentMetadata{
			KernelSpec:    raw.Metadata.KernelSpec,
			DefaultKernel: raw.Metadata.SoS.DefaultKernel,
		},
	}
	for _, k := range raw.Metadata.SoS.Kernels {
		if len(k) < 2 {
			continue
		}
		doc.Metadata.Kernels = append(doc.Metadata.Kernels, types.KernelInfo{Name: k[0], Kernel: k[1]})
	}

	for i, rc := range raw.Cells {
		src, err := decodeSource(rc.Source)
		if err != nil {
			return types.Document{}, fmt.Errorf("cell %d: %w", i+1, err)
		}
		meta, err := decodeMetadata(rc.Metadata)
		if err != nil {
			return types.Document{}, fmt.Errorf("cell %d: %w", i+1, err)
		}
		doc.Cells = append(doc.Cells, types.Cell{
			ID:             rc.ID,
			Type:           types.CellType(rc.CellType),
			Source:         src,
			ExecutionCount: rc.ExecutionCount,
			Metadata:       meta,
			Outputs:        rc.Outputs,
			Attachments:    attachmentsOf(rc.Attachments),
		})
	}
	return doc, nil
}

func attachmentsOf(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

// decodeSource accepts the string and list forms of a cell source.
func decodeSource(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("decoding source: %w", err)
		}
	} else {
		var parts []string
		if err := json.Unmarshal(raw, &parts); err != nil {
			return nil, fmt.Errorf("decoding source: %w", err)
		}
		text = strings.Join(parts, "")
	}
	if text == "" {
		return nil, nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n"), nil
}

// decodeMetadata reads a JSON object token by token so that key order
// survives.
func decodeMetadata(raw json.RawMessage) (types.Metadata, error) {
	var meta types.Metadata
	if len(raw) == 0 || string(raw) == "null" {
		return meta, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return meta, fmt.Errorf("decoding metadata: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return meta, fmt.Errorf("decoding metadata: expected object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return meta, fmt.Errorf("decoding metadata: %w", err)
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return meta, fmt.Errorf("decoding metadata %q: %w", key, err)
		}
		meta.Set(key, scalarOf(value))
	}
	return meta, nil
}

func scalarOf(raw json.RawMessage) types.Scalar {
	switch s := strings.TrimSpace(string(raw)); {
	case s == "true":
		return types.BoolValue(true)
	case s == "false":
		return types.BoolValue(false)
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(raw, &str); err == nil {
			return types.StringValue(str)
		}
		return types.StringValue(s)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return types.RawValue(s)
		}
		return types.RawValue(buf.String())
	}
}
