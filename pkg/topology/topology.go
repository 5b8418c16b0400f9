// Package topology draws the connection graph of an assembly.
//
// Components are nodes and connections are edges labelled with the two snap
// points they join. [ToDOT] produces Graphviz DOT text; [RenderSVG] and
// [RenderPNG] lay it out with the embedded Graphviz build from go-graphviz,
// so no system Graphviz install is needed.
package topology

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/lightrig/rigsnap/pkg/fixture"
)

// Options configures DOT output.
type Options struct {
	// Detailed adds the template slug and position to node labels.
	Detailed bool
}

// fill colours per component family.
var fills = map[fixture.TypeTag]string{
	fixture.TypeTrack:       "#dbe9f6",
	fixture.TypeProfile:     "#dbe9f6",
	fixture.TypeConnector:   "#eeeeee",
	fixture.TypeEndCap:      "#eeeeee",
	fixture.TypeSpotlight:   "#fff3c4",
	fixture.TypePendant:     "#fff3c4",
	fixture.TypePowerSupply: "#f6d5d5",
}

// ToDOT converts components and connections to an undirected Graphviz graph.
// The renderers lay it out with neato.
// Components are emitted in the given order, so equal input gives equal
// output.
func ToDOT(components []*fixture.Component, connections []fixture.Connection, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("  edge [fontsize=9];\n")
	buf.WriteString("\n")

	for _, c := range components {
		fmt.Fprintf(&buf, "  %q [%s];\n", c.ID, strings.Join(nodeAttrs(c, opts), ", "))
	}

	buf.WriteString("\n")
	for _, conn := range connections {
		label := conn.SourceSnapPointID + " / " + conn.TargetSnapPointID
		fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", conn.SourceComponentID, conn.TargetComponentID, label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(c *fixture.Component, opts Options) []string {
	label := c.ID
	if c.Name != "" && c.Name != c.ID {
		label = c.Name + "\n" + c.ID
	}
	if opts.Detailed {
		label += fmt.Sprintf("\n%s %s\n%d/%d snaps used", c.Template, c.Position, len(c.Occupied), len(c.Snaps))
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if fill, ok := fills[c.Type]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if c.Owner().IsPendant() {
		attrs = append(attrs, "shape=ellipse")
	}
	if c.Owner().IsEndCap() {
		attrs = append(attrs, "shape=circle", "style=\"filled\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with its
// container instead of using Graphviz's point-based size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
