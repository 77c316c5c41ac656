// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metacodec converts between the flat key=value token form used on
// %cell marker lines and the ordered Metadata map of a cell.
package metacodec

import (
	"fmt"
	"strings"

	"github.com/pdiddy/sos-convert/pkg/types"
)

const (
	tokenTrue  = "True"
	tokenFalse = "False"
)

// Encode renders m as space-separated key=value tokens in insertion order.
// Bool values render as True or False. Tokens are not quoted, so a value
// holding whitespace, or a key holding whitespace or "=", does not decode
// back to the same entry; Check reports such entries.
func Encode(m types.Metadata) string {
	var b strings.Builder
	for i, e := range m.Entries() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.Key)
		b.WriteByte('=')
		b.WriteString(e.Value.String())
	}
	return b.String()
}

// Check returns a MalformedMetadataToken condition for every entry of m
// that Encode cannot write so that Decode reads it back unchanged.
func Check(m types.Metadata) []types.Condition {
	var conds []types.Condition
	for _, e := range m.Entries() {
		v := e.Value.String()
		if e.Key != "" && !strings.ContainsAny(e.Key, "= \t\r\n") && !strings.ContainsAny(v, " \t\r\n") {
			continue
		}
		conds = append(conds, types.Condition{
			Kind:   types.MalformedMetadataToken,
			Detail: fmt.Sprintf("metadata %s=%s does not survive as a token", e.Key, v),
		})
	}
	return conds
}

// Decode parses whitespace-separated key=value tokens. Each token is split
// on its first "=". A token without "=" keeps its key with an empty value
// and yields a MalformedMetadataToken condition; the returned conditions
// carry no position, callers add it. Only True and False decode to Bool.
func Decode(raw string) (types.Metadata, []types.Condition) {
	var (
		m     types.Metadata
		conds []types.Condition
	)
	for _, tok := range strings.Fields(raw) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			conds = append(conds, types.Condition{
				Kind:   types.MalformedMetadataToken,
				Detail: fmt.Sprintf("metadata token %q has no value", tok),
			})
		}
		m.Set(key, decodeValue(value))
	}
	return m, conds
}

func decodeValue(v string) types.Scalar {
	switch v {
	case tokenTrue:
		return types.BoolValue(true)
	case tokenFalse:
		return types.BoolValue(false)
	}
	return types.StringValue(v)
}
