package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acheong08/neuromap/internal/canvas"
	"github.com/acheong08/neuromap/internal/hierarchy"
	"github.com/acheong08/neuromap/internal/layout"
	"github.com/acheong08/neuromap/internal/parser"
)

func generateCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Request a new roadmap and save it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			errOut := cmd.ErrOrStderr()
			fmt.Fprintf(errOut, "%s %s\n", Brand.Sprint("neuromap"), Subtle.Sprintf("generating via %s", cfg.GenerationEndpoint))

			roadmap, err := opts.client(cfg).RequestRoadmap(cmd.Context())
			if err != nil {
				return err
			}

			// Fail early rather than saving a roadmap that cannot be drawn
			_, stats, err := hierarchy.BuildWithStats(roadmap.Nodes, hierarchy.RootID)
			if err != nil {
				return err
			}
			if len(stats.Repaired) > 0 {
				Warn.Fprintf(errOut, "Attached to root: %s\n", strings.Join(stats.Repaired, ", "))
			}

			data, err := json.MarshalIndent(roadmap, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal roadmap: %w", err)
			}
			data = append(data, '\n')

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write roadmap: %w", err)
			}
			Good.Fprintf(errOut, "Saved %d topics to %s\n", len(roadmap.Nodes), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the roadmap to this file instead of stdout")
	return cmd
}

func treeCmd(opts *options) *cobra.Command {
	var (
		input        string
		descriptions bool
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print a saved roadmap as an outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := loadTree(cmd, input)
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), root, descriptions)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Roadmap file (default ./roadmap.json)")
	cmd.Flags().BoolVarP(&descriptions, "descriptions", "d", false, "Show node descriptions")
	return cmd
}

func renderCmd(opts *options) *cobra.Command {
	var (
		input, output, selected string
		width, height           float64
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a saved roadmap to SVG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			root, err := loadTree(cmd, input)
			if err != nil {
				return err
			}

			positioned := layout.Layout(root, cfg.Layout)
			if selected != "" && positioned.Find(selected) == nil {
				return fmt.Errorf("unknown node %q", selected)
			}
			width, height = fitSize(layout.Bounds(positioned), cfg.Layout, width, height)

			scene := canvas.Render(canvas.State{
				Root:       positioned,
				SelectedID: selected,
				Width:      width,
				Height:     height,
				Style:      cfg.Style,
			})
			t := fitTransform(layout.Bounds(positioned), height)

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := scene.WriteSVG(w, t); err != nil {
				return err
			}
			if output != "" {
				Good.Fprintf(cmd.ErrOrStderr(), "Rendered %d topics to %s\n", len(scene.Nodes), output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Roadmap file (default ./roadmap.json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write SVG to this file instead of stdout")
	cmd.Flags().StringVar(&selected, "selected", "", "Highlight the node with this ID")
	cmd.Flags().Float64Var(&width, "width", 0, "Image width (default fits the tree)")
	cmd.Flags().Float64Var(&height, "height", 0, "Image height (default fits the tree)")
	return cmd
}

func detailsCmd(opts *options) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "details <node-id>",
		Short: "Fetch the learning details of one roadmap node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			root, err := loadTree(cmd, input)
			if err != nil {
				return err
			}

			node := root.Find(args[0])
			if node == nil {
				return fmt.Errorf("unknown node %q", args[0])
			}

			details, err := opts.client(cfg).RequestNodeDetails(cmd.Context(), node.Label, node.Description)
			if err != nil {
				return err
			}
			printDetails(cmd.OutOrStdout(), node.RoadmapNode, details)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Roadmap file (default ./roadmap.json)")
	return cmd
}

func loadTree(cmd *cobra.Command, input string) (*hierarchy.Node, error) {
	path, err := parser.ResolveRoadmapFile(input)
	if err != nil {
		return nil, err
	}
	root, stats, err := parser.LoadTree(path)
	if err != nil {
		return nil, err
	}
	if len(stats.Repaired) > 0 {
		Warn.Fprintf(cmd.ErrOrStderr(), "Attached to root: %s\n", strings.Join(stats.Repaired, ", "))
	}
	return root, nil
}

// fitSize fills in each dimension left at zero so the tree fits
func fitSize(bounds layout.Rect, cfg layout.Config, width, height float64) (float64, float64) {
	if width <= 0 {
		width = bounds.Width + 2*canvas.InitialOffsetX
	}
	if height <= 0 {
		height = bounds.Height + 2*cfg.NodeHeight
	}
	return width, height
}

// fitTransform places the whole tree inside the image at scale 1
func fitTransform(bounds layout.Rect, height float64) canvas.Transform {
	return canvas.Transform{
		X: canvas.InitialOffsetX - bounds.X,
		Y: height/2 - (bounds.Y + bounds.Height/2),
		K: 1,
	}
}
