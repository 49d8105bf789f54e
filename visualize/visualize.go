// Package visualize renders pipeline snapshots as Graphviz DOT or Mermaid
// flowcharts. Elements become nodes and every pad-level link becomes an
// edge between pad ports.
package visualize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbukum/padflow/dag"
)

// Format selects the output syntax.
type Format string

const (
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
)

// FormatFor picks a format from a file extension. Unknown extensions get DOT.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mmd", ".mermaid":
		return FormatMermaid
	default:
		return FormatDOT
	}
}

// Write renders snap in the given format.
func Write(w io.Writer, snap dag.Snapshot, format Format) error {
	switch format {
	case FormatDOT:
		return WriteDOT(w, snap)
	case FormatMermaid:
		return WriteMermaid(w, snap)
	default:
		return fmt.Errorf("visualize: unsupported format %q", format)
	}
}

// File writes the pipeline's current snapshot to path, choosing the format
// from the extension.
func File(p *dag.Pipeline, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("visualize: %w", err)
	}
	if err := Write(f, p.Snapshot(), FormatFor(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteDOT renders snap as a DOT digraph. Elements are record nodes with
// sink pads on the left and source pads on the right; each wave shares a rank.
func WriteDOT(w io.Writer, snap dag.Snapshot) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("digraph %s {\n", quote(snap.Name)))
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=record, fontname=\"Helvetica\"];\n")

	for _, e := range snap.Elements {
		sb.WriteString(fmt.Sprintf("  %s [label=\"%s\"%s];\n", quote(e.Name), recordLabel(e), nodeStyle(e)))
	}
	for _, wave := range snap.Waves {
		if len(wave) < 2 {
			continue
		}
		names := make([]string, len(wave))
		for i, n := range wave {
			names[i] = quote(n)
		}
		sb.WriteString(fmt.Sprintf("  { rank=same; %s; }\n", strings.Join(names, "; ")))
	}
	for _, l := range snap.Links {
		srcElem, srcPad, _ := dag.SplitPadName(l.Source)
		sinkElem, sinkPad, _ := dag.SplitPadName(l.Sink)
		sb.WriteString(fmt.Sprintf("  %s:%s -> %s:%s;\n", quote(srcElem), portID(srcPad), quote(sinkElem), portID(sinkPad)))
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteMermaid renders snap as a Mermaid flowchart with pad names on edges.
func WriteMermaid(w io.Writer, snap dag.Snapshot) error {
	var sb strings.Builder

	sb.WriteString("flowchart LR\n")
	for _, e := range snap.Elements {
		open, closing := "[", "]"
		switch e.Role {
		case dag.RoleSource.String():
			open, closing = "([", "])"
		case dag.RoleSink.String():
			open, closing = "[(", ")]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", mermaidID(e.Name), open, escapeMermaid(e.Name), closing))
	}
	for _, l := range snap.Links {
		srcElem, srcPad, _ := dag.SplitPadName(l.Source)
		sinkElem, sinkPad, _ := dag.SplitPadName(l.Sink)
		sb.WriteString(fmt.Sprintf("    %s -->|\"%s\"| %s\n",
			mermaidID(srcElem), escapeMermaid(srcPad+" → "+sinkPad), mermaidID(sinkElem)))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// recordLabel lays out "{{<p_in> in}|name|{<p_out> out}}". Port names are
// identifiers so edges can reference them unquoted.
func recordLabel(e dag.ElementInfo) string {
	parts := make([]string, 0, 3)
	if len(e.SinkPads) > 0 {
		parts = append(parts, "{"+ports(e.SinkPads)+"}")
	}
	parts = append(parts, escapeRecord(e.Name))
	if len(e.SourcePads) > 0 {
		parts = append(parts, "{"+ports(e.SourcePads)+"}")
	}
	return "{" + strings.Join(parts, "|") + "}"
}

func ports(pads []string) string {
	out := make([]string, len(pads))
	for i, p := range pads {
		out[i] = fmt.Sprintf("<%s> %s", portID(p), escapeRecord(p))
	}
	return strings.Join(out, "|")
}

func nodeStyle(e dag.ElementInfo) string {
	switch e.Role {
	case dag.RoleSource.String():
		return ", style=filled, fillcolor=\"#d6eaf8\""
	case dag.RoleSink.String():
		if e.AtEOS {
			return ", style=filled, fillcolor=\"#d5f5e3\""
		}
		return ", style=filled, fillcolor=\"#fdebd0\""
	default:
		return ""
	}
}

func quote(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

var recordEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"\"", "\\\"",
	"{", "\\{",
	"}", "\\}",
	"|", "\\|",
	"<", "\\<",
	">", "\\>",
)

func escapeRecord(s string) string { return recordEscaper.Replace(s) }

func escapeMermaid(s string) string { return strings.ReplaceAll(s, "\"", "#quot;") }

func mermaidID(name string) string { return ident("n_", name) }

func portID(pad string) string { return ident("p_", pad) }

// ident maps name to an identifier made of letters, digits and underscores.
// Every other rune, underscore included, becomes "_<hex>_", so distinct
// names never share an identifier.
func ident(prefix, name string) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		} else {
			sb.WriteString(fmt.Sprintf("_%x_", r))
		}
	}
	return sb.String()
}
