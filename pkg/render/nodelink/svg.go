package nodelink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// RenderSVG renders DOT source to SVG in process using Graphviz compiled to
// WebAssembly. The SVG root is rewritten to a plain viewBox so it scales in
// browsers.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

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

// ErrNoRasterizer is returned by RenderPNG when rsvg-convert is not installed.
var ErrNoRasterizer = errors.New("PNG export requires rsvg-convert (brew install librsvg, apt install librsvg2-bin)")

// RenderPNG rasterises DOT source through SVG with rsvg-convert. A scale of
// 2 gives a 2x image for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, ErrNoRasterizer
	}
	if scale <= 0 {
		scale = 1
	}

	cmd := exec.CommandContext(ctx, "rsvg-convert", "-f", "png", "-z", strconv.FormatFloat(scale, 'f', 2, 64))
	cmd.Stdin = bytes.NewReader(svg)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("rsvg-convert: %w: %s", err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("rsvg-convert: %w", err)
	}
	return out, nil
}
