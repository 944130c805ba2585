// Package nodelink renders a project's dependency network as a node-link
// diagram.
//
// # Overview
//
// Tasks appear as boxes and dependencies as arrows, laid out left to right
// so the diagram reads like a timeline. When a computed schedule is given,
// critical tasks and the binding edges between them are highlighted and
// tasks that can start on the same day share a rank. A blocked project is
// drawn from the graph alone with its cycles highlighted instead.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, result, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For a blocked project:
//
//	dot := nodelink.ToDOT(g, nil, nodelink.Options{Cycles: report.Cycles})
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PNG conversion requires librsvg (rsvg-convert).
package nodelink
