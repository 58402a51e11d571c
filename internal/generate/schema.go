package generate

import (
	"google.golang.org/genai"
)

// RoadmapSchema describes the JSON shape expected back for a roadmap request
func RoadmapSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"nodes": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":          {Type: genai.TypeString},
						"parentId":    {Type: genai.TypeString, Nullable: genai.Ptr(true)},
						"label":       {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
						"category": {
							Type: genai.TypeString,
							Enum: []string{"foundation", "engineering", "agents", "advanced"},
						},
						"complexity": {
							Type: genai.TypeString,
							Enum: []string{"beginner", "intermediate", "advanced"},
						},
					},
					Required: []string{"id", "label", "description", "category", "complexity"},
				},
			},
		},
		Required: []string{"nodes"},
	}
}

// DetailsSchema describes the JSON shape expected back for a node details request
func DetailsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString},
			"learningObjectives": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"resources": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title": {Type: genai.TypeString},
						"type": {
							Type: genai.TypeString,
							Enum: []string{"video", "course", "article"},
						},
						"url": {Type: genai.TypeString},
					},
					Required: []string{"title", "type", "url"},
				},
			},
			"projectIdea": {Type: genai.TypeString},
		},
		Required: []string{"summary", "learningObjectives", "resources", "projectIdea"},
	}
}
