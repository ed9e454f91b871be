package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Format is the output encoding of trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick by output path
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// ResolveFormat turns FormatAuto into a concrete format based on path.
func ResolveFormat(f Format, path string) Format {
	if f != FormatAuto {
		return f
	}
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

// AppendEvent appends the encoding of ev to buf.
func AppendEvent(buf []byte, ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return appendNDJSON(buf, ev)
	}
	return appendText(buf, ev)
}

type jsonEvent struct {
	Time      string            `json:"time"`
	Seq       uint64            `json:"seq"`
	Kind      string            `json:"kind"`
	Scope     string            `json:"scope"`
	SpanID    uint64            `json:"span_id"`
	ParentID  uint64            `json:"parent_id,omitempty"`
	Depth     int               `json:"depth,omitempty"`
	File      string            `json:"file,omitempty"`
	Name      string            `json:"name"`
	Detail    string            `json:"detail,omitempty"`
	ElapsedUS int64             `json:"elapsed_us,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

func appendNDJSON(buf []byte, ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:      ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		SpanID:    ev.SpanID,
		ParentID:  ev.ParentID,
		Depth:     ev.Depth,
		File:      ev.File,
		Name:      ev.Name,
		Detail:    ev.Detail,
		ElapsedUS: ev.Elapsed.Microseconds(),
		Extra:     ev.Extra,
	})
	if err != nil {
		return buf
	}
	buf = append(buf, data...)
	return append(buf, '\n')
}

var kindArrows = [...]string{
	KindSpanBegin: "→ ",
	KindSpanEnd:   "← ",
	KindPoint:     "• ",
}

// appendText renders one line, indented by depth:
//
//	15:04:05.000 → compile [main.lisp]
//	15:04:05.000   → lex [main.lisp]
//	15:04:05.001   ← lex (4 tokens) 0.21ms [main.lisp]
func appendText(buf []byte, ev *Event) []byte {
	buf = ev.Time.AppendFormat(buf, "15:04:05.000")
	buf = append(buf, ' ')
	for range ev.Depth {
		buf = append(buf, "  "...)
	}
	if int(ev.Kind) < len(kindArrows) {
		buf = append(buf, kindArrows[ev.Kind]...)
	}
	buf = append(buf, ev.Name...)
	if ev.Detail != "" {
		buf = append(buf, " ("...)
		buf = append(buf, ev.Detail...)
		buf = append(buf, ')')
	}
	if ev.Kind == KindSpanEnd {
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, float64(ev.Elapsed.Microseconds())/1000, 'f', 2, 64)
		buf = append(buf, "ms"...)
	}
	if ev.File != "" {
		buf = append(buf, " ["...)
		buf = append(buf, ev.File...)
		buf = append(buf, ']')
	}
	if len(ev.Extra) > 0 {
		buf = append(buf, " {"...)
		for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = append(buf, k...)
			buf = append(buf, '=')
			buf = append(buf, ev.Extra[k]...)
		}
		buf = append(buf, '}')
	}
	return append(buf, '\n')
}
