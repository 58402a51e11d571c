package canvas

import (
	"strings"

	"github.com/acheong08/neuromap/pkg/models"
)

// Colors is a fill and stroke pair
type Colors struct {
	Fill   string `json:"fill" toml:"fill"`
	Stroke string `json:"stroke" toml:"stroke"`
}

// Style holds every color and text limit used when drawing the roadmap
type Style struct {
	Categories map[models.Category]Colors `toml:"categories"`
	Fallback   Colors                     `toml:"fallback"`
	Selected   Colors                     `toml:"selected"`

	StrokeWidth         float64 `toml:"stroke_width"`
	SelectedStrokeWidth float64 `toml:"selected_stroke_width"`

	Badges        map[models.Complexity]string `toml:"badges"`
	BadgeFallback string                       `toml:"badge_fallback"`

	LinkColor   string  `toml:"link_color"`
	LinkWidth   float64 `toml:"link_width"`
	LinkOpacity float64 `toml:"link_opacity"`

	LabelColor       string `toml:"label_color"`
	DescriptionColor string `toml:"description_color"`

	// Text limits in terminal cells, roughly one per character at the node's font size
	LabelCells       int `toml:"label_cells"`
	DescriptionCells int `toml:"description_cells"`
	DescriptionLines int `toml:"description_lines"`
}

// DefaultStyle returns the dark roadmap palette
func DefaultStyle() Style {
	return Style{
		Categories: map[models.Category]Colors{
			models.CategoryFoundation:  {Fill: "#1e293b", Stroke: "#64748b"},
			models.CategoryEngineering: {Fill: "#1e1b4b", Stroke: "#6366f1"},
			models.CategoryAgents:      {Fill: "#312e81", Stroke: "#a855f7"},
			models.CategoryAdvanced:    {Fill: "#4c1d95", Stroke: "#d946ef"},
		},
		Fallback:            Colors{Fill: "#1e293b", Stroke: "#475569"},
		Selected:            Colors{Fill: "rgba(56, 189, 248, 0.2)", Stroke: "#38bdf8"},
		StrokeWidth:         1,
		SelectedStrokeWidth: 3,
		Badges: map[models.Complexity]string{
			models.ComplexityBeginner:     "#4ade80",
			models.ComplexityIntermediate: "#fbbf24",
			models.ComplexityAdvanced:     "#f87171",
		},
		BadgeFallback:    "#94a3b8",
		LinkColor:        "#334155",
		LinkWidth:        2,
		LinkOpacity:      0.6,
		LabelColor:       "#f8fafc",
		DescriptionColor: "#94a3b8",
		LabelCells:       22,
		DescriptionCells: 34,
		DescriptionLines: 2,
	}
}

// NodeColors returns the colors, stroke width and glow flag for a node
func (s Style) NodeColors(category models.Category, selected bool) (Colors, float64, bool) {
	if selected {
		return s.Selected, s.SelectedStrokeWidth, true
	}
	if c, ok := s.Categories[category]; ok {
		return c, s.StrokeWidth, false
	}
	return s.Fallback, s.StrokeWidth, false
}

// Badge returns the complexity badge color
func (s Style) Badge(c models.Complexity) string {
	if color, ok := s.Badges[c]; ok {
		return color
	}
	return s.BadgeFallback
}

// Merge fills zero fields of s from base. Map entries are merged per key.
func (s Style) Merge(base Style) Style {
	out := base
	if s.Fallback.Fill != "" {
		out.Fallback.Fill = s.Fallback.Fill
	}
	if s.Fallback.Stroke != "" {
		out.Fallback.Stroke = s.Fallback.Stroke
	}
	if s.Selected.Fill != "" {
		out.Selected.Fill = s.Selected.Fill
	}
	if s.Selected.Stroke != "" {
		out.Selected.Stroke = s.Selected.Stroke
	}
	if s.StrokeWidth > 0 {
		out.StrokeWidth = s.StrokeWidth
	}
	if s.SelectedStrokeWidth > 0 {
		out.SelectedStrokeWidth = s.SelectedStrokeWidth
	}
	if s.BadgeFallback != "" {
		out.BadgeFallback = s.BadgeFallback
	}
	if s.LinkColor != "" {
		out.LinkColor = s.LinkColor
	}
	if s.LinkWidth > 0 {
		out.LinkWidth = s.LinkWidth
	}
	if s.LinkOpacity > 0 {
		out.LinkOpacity = s.LinkOpacity
	}
	if s.LabelColor != "" {
		out.LabelColor = s.LabelColor
	}
	if s.DescriptionColor != "" {
		out.DescriptionColor = s.DescriptionColor
	}
	if s.LabelCells > 0 {
		out.LabelCells = s.LabelCells
	}
	if s.DescriptionCells > 0 {
		out.DescriptionCells = s.DescriptionCells
	}
	if s.DescriptionLines > 0 {
		out.DescriptionLines = s.DescriptionLines
	}

	out.Categories = make(map[models.Category]Colors, len(base.Categories))
	for k, v := range base.Categories {
		out.Categories[k] = v
	}
	for k, v := range s.Categories {
		out.Categories[k] = v
	}
	out.Badges = make(map[models.Complexity]string, len(base.Badges))
	for k, v := range base.Badges {
		out.Badges[k] = v
	}
	for k, v := range s.Badges {
		out.Badges[k] = v
	}
	return out
}

// LegendEntry is one row of the category legend
type LegendEntry struct {
	Category models.Category `json:"category"`
	Label    string          `json:"label"`
	Colors
}

// Legend lists the four categories in display order
func Legend(s Style) []LegendEntry {
	entries := make([]LegendEntry, 0, len(models.Categories))
	for _, cat := range models.Categories {
		colors, _, _ := s.NodeColors(cat, false)
		entries = append(entries, LegendEntry{
			Category: cat,
			Label:    strings.ToUpper(string(cat[:1])) + string(cat[1:]),
			Colors:   colors,
		})
	}
	return entries
}
