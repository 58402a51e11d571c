package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/acheong08/neuromap/internal/hierarchy"
	"github.com/acheong08/neuromap/pkg/models"
)

var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

var categoryColors = map[models.Category]*color.Color{
	models.CategoryFoundation:  color.New(color.FgHiWhite),
	models.CategoryEngineering: color.New(color.FgHiBlue),
	models.CategoryAgents:      color.New(color.FgHiMagenta),
	models.CategoryAdvanced:    color.New(color.FgHiRed),
}

var complexityMarks = map[models.Complexity]string{
	models.ComplexityBeginner:     "●○○",
	models.ComplexityIntermediate: "●●○",
	models.ComplexityAdvanced:     "●●●",
}

const descriptionCells = 60

// printTree draws the roadmap as an indented outline
func printTree(w io.Writer, root *hierarchy.Node, descriptions bool) {
	var walk func(n *hierarchy.Node, prefix string, last bool)
	walk = func(n *hierarchy.Node, prefix string, last bool) {
		branch := ""
		childPrefix := ""
		if n.Parent() != nil {
			branch = "├── "
			childPrefix = prefix + "│   "
			if last {
				branch = "└── "
				childPrefix = prefix + "    "
			}
		}

		label := n.Label
		if c, ok := categoryColors[n.Category]; ok {
			label = c.Sprint(n.Label)
		}
		fmt.Fprintf(w, "%s%s%s %s %s\n", Subtle.Sprint(prefix), Subtle.Sprint(branch), label,
			Subtle.Sprint(complexityMarks[n.Complexity]), Subtle.Sprintf("[%s]", n.ID))
		if descriptions && n.Description != "" {
			fmt.Fprintf(w, "%s%s\n", Subtle.Sprint(childPrefix+"  "),
				runewidth.Truncate(n.Description, descriptionCells, "…"))
		}

		for i, child := range n.Children {
			walk(child, childPrefix, i == len(n.Children)-1)
		}
	}
	walk(root, "", true)
}

// printDetails writes the enrichment of one node
func printDetails(w io.Writer, node models.RoadmapNode, details *models.NodeDetailsResponse) {
	fmt.Fprintf(w, "%s  %s\n", Brand.Sprint(node.Label), Subtle.Sprintf("%s · %s", node.Category, node.Complexity))
	if node.Description != "" {
		fmt.Fprintln(w, Subtle.Sprint(node.Description))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, details.Summary)

	if len(details.LearningObjectives) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, Brand.Sprint("Learning objectives"))
		for _, obj := range details.LearningObjectives {
			fmt.Fprintf(w, "  • %s\n", obj)
		}
	}

	if len(details.Resources) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, Brand.Sprint("Resources"))
		for _, res := range details.Resources {
			line := fmt.Sprintf("  %-8s %s", strings.ToUpper(string(res.Type)), res.Title)
			if res.URL != "" {
				line += " " + Subtle.Sprint(res.URL)
			}
			fmt.Fprintln(w, line)
		}
	}

	if details.ProjectIdea != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, Brand.Sprint("Project idea"))
		fmt.Fprintf(w, "  %s\n", details.ProjectIdea)
	}
}
