package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/acheong08/neuromap/internal/generate"
	"github.com/acheong08/neuromap/internal/hierarchy"
	"github.com/acheong08/neuromap/internal/layout"
	"github.com/acheong08/neuromap/internal/metrics"
	"github.com/acheong08/neuromap/pkg/models"
)

// Generator produces the flat roadmap node list
type Generator interface {
	RequestRoadmap(ctx context.Context) (*models.RoadmapData, error)
}

// Renderer receives the positioned tree
type Renderer interface {
	SetData(root *layout.Node)
}

// ProgressSender interface for sending progress updates
type ProgressSender interface {
	SendMessage(msg Message)
	SendLog(message, level string)
	SendProgress(percent int, stage, message string)
	SendError(code, message string, err error)
}

// Pipeline turns one roadmap request into a drawn tree
type Pipeline struct {
	generator Generator
	renderer  Renderer
	layout    layout.Config
	sender    ProgressSender
	logger    *zap.Logger
	metrics   *metrics.Collector
}

// NewPipeline creates a new pipeline instance
func NewPipeline(
	generator Generator,
	renderer Renderer,
	layoutCfg layout.Config,
	sender ProgressSender,
	logger *zap.Logger,
	collector *metrics.Collector,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		generator: generator,
		renderer:  renderer,
		layout:    layoutCfg,
		sender:    sender,
		logger:    logger,
		metrics:   collector,
	}
}

// log sends a log message both to the WebSocket client and to the server log
func (p *Pipeline) log(message, level string) {
	p.sender.SendLog(message, level)

	switch level {
	case "warning":
		p.logger.Warn(message)
	case "error":
		p.logger.Error(message)
	default:
		p.logger.Info(message)
	}
}

// Run executes the full generation pipeline and returns the node count.
// Nothing is handed to the renderer unless every stage succeeds.
func (p *Pipeline) Run(ctx context.Context) (nodes int, err error) {
	start := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.Generation(ErrorCode(err), time.Since(start))
		}
	}()

	// Step 1: Ask the model for the flat node list
	p.sender.SendProgress(0, "generate", "Generating neural map...")
	data, err := p.generator.RequestRoadmap(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to request roadmap: %w", err)
	}
	p.sender.SendProgress(30, "hierarchy", fmt.Sprintf("Received %d topics", len(data.Nodes)))

	// Step 2: Build the tree
	root, stats, err := hierarchy.BuildWithStats(data.Nodes, hierarchy.RootID)
	if err != nil {
		return 0, fmt.Errorf("failed to build hierarchy: %w", err)
	}
	if len(stats.Repaired) > 0 {
		p.log(fmt.Sprintf("Attached %d topics with unknown parents to the root: %s",
			len(stats.Repaired), strings.Join(stats.Repaired, ", ")), "warning")
	}
	p.sender.SendProgress(60, "layout", "Laying out roadmap...")

	// Step 3: Position every node
	positioned := layout.Layout(root, p.layout)
	p.sender.SendProgress(80, "render", "Drawing roadmap...")

	// Step 4: Hand over to the canvas
	p.renderer.SetData(positioned)

	p.sender.SendProgress(100, "complete", "Roadmap ready")
	p.log(fmt.Sprintf("Roadmap drawn: %d topics, depth %d", stats.Nodes, maxDepth(root)), "success")
	return stats.Nodes, nil
}

// ErrorCode classifies a pipeline error for the client
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, hierarchy.ErrMalformedHierarchy):
		return CodeMalformedHierarchy
	case errors.Is(err, context.Canceled):
		return CodeCancelled
	default:
		return CodeGenerationFailed
	}
}

func maxDepth(root *hierarchy.Node) int {
	depth := 0
	root.Walk(func(n *hierarchy.Node) bool {
		if n.Depth() > depth {
			depth = n.Depth()
		}
		return true
	})
	return depth
}

var _ Generator = (*generate.Client)(nil)
