package models

// Category groups roadmap nodes by learning track
type Category string

const (
	CategoryFoundation  Category = "foundation"
	CategoryEngineering Category = "engineering"
	CategoryAgents      Category = "agents"
	CategoryAdvanced    Category = "advanced"
)

// Categories lists every category in legend order
var Categories = []Category{CategoryFoundation, CategoryEngineering, CategoryAgents, CategoryAdvanced}

// Complexity rates how hard a roadmap topic is
type Complexity string

const (
	ComplexityBeginner     Complexity = "beginner"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

// ResourceType is the kind of a study resource
type ResourceType string

const (
	ResourceVideo   ResourceType = "video"
	ResourceCourse  ResourceType = "course"
	ResourceArticle ResourceType = "article"
)

// RoadmapNode is a single topic exactly as the generation service returns it.
// ParentID is empty for the root and may point at ids that do not exist.
type RoadmapNode struct {
	ID          string     `json:"id" validate:"required"`
	ParentID    string     `json:"parentId,omitempty"`
	Label       string     `json:"label" validate:"required"`
	Description string     `json:"description"`
	Category    Category   `json:"category" validate:"required,oneof=foundation engineering agents advanced"`
	Complexity  Complexity `json:"complexity" validate:"required,oneof=beginner intermediate advanced"`
}

// RoadmapData is the flat node list of a generated roadmap
type RoadmapData struct {
	Nodes []RoadmapNode `json:"nodes" validate:"required,min=1,dive"`
}

// Resource is a study resource attached to a node's details
type Resource struct {
	Title string       `json:"title" validate:"required"`
	Type  ResourceType `json:"type" validate:"required,oneof=video course article"`
	URL   string       `json:"url,omitempty"`
}

// Clickable reports whether the resource links somewhere
func (r Resource) Clickable() bool {
	return r.URL != ""
}

// NodeDetailsResponse is the on-demand enrichment for a selected node
type NodeDetailsResponse struct {
	Summary            string     `json:"summary" validate:"required"`
	LearningObjectives []string   `json:"learningObjectives"`
	Resources          []Resource `json:"resources" validate:"dive"`
	ProjectIdea        string     `json:"projectIdea"`
}

// Lookup indexes the nodes by ID. Later duplicates win.
func (d *RoadmapData) Lookup() map[string]*RoadmapNode {
	index := make(map[string]*RoadmapNode, len(d.Nodes))
	for i := range d.Nodes {
		index[d.Nodes[i].ID] = &d.Nodes[i]
	}
	return index
}
