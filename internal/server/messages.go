package server

import (
	"encoding/json"
	"fmt"

	"github.com/acheong08/neuromap/internal/canvas"
	"github.com/acheong08/neuromap/internal/detail"
	"github.com/acheong08/neuromap/pkg/models"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	// Client -> Server
	TypeGenerate    MessageType = "generate"     // Request a new roadmap
	TypeResize      MessageType = "resize"       // Viewport size changed
	TypePointerDown MessageType = "pointer_down" // Pointer pressed on the canvas
	TypePointerMove MessageType = "pointer_move" // Pointer moved
	TypePointerUp   MessageType = "pointer_up"   // Pointer released
	TypeWheel       MessageType = "wheel"        // Wheel zoom
	TypeSelect      MessageType = "select"       // Select a node by ID
	TypeClosePanel  MessageType = "close_panel"  // Dismiss the detail panel
	TypePing        MessageType = "ping"         // Keep-alive

	// Server -> Client
	TypeProgress     MessageType = "progress"      // Progress updates
	TypeLog          MessageType = "log"           // Log messages for the status line
	TypeLegend       MessageType = "legend"        // Category legend, sent once on connect
	TypeScene        MessageType = "scene"         // Full redraw
	TypeTransform    MessageType = "transform"     // Pan/zoom only
	TypeNodeSelected MessageType = "node_selected" // A node was clicked or selected
	TypeDetails      MessageType = "details"       // Detail panel state
	TypeComplete     MessageType = "complete"      // Generation complete
	TypeError        MessageType = "error"         // Error message
	TypePong         MessageType = "pong"
)

// Error codes carried by ErrorPayload
const (
	CodeGenerationFailed   = "generation_failed"
	CodeMalformedHierarchy = "malformed_hierarchy"
	CodeBusy               = "busy"
	CodeBadRequest         = "bad_request"
	CodeCancelled          = "cancelled"
)

// Message is the base WebSocket message structure
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ResizePayload sent by the client when its viewport changes
type ResizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PointerPayload carries screen coordinates
type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WheelPayload carries the pointer position and wheel delta
type WheelPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"delta_y"`
}

// SelectPayload selects a node by ID; empty clears the selection
type SelectPayload struct {
	NodeID string `json:"node_id"`
}

// ProgressPayload for progress bar updates
type ProgressPayload struct {
	Percent int    `json:"percent"` // 0-100
	Stage   string `json:"stage"`   // "generate", "hierarchy", "layout", "render", "complete"
	Message string `json:"message"` // Human-readable status
}

// LogPayload for the status line
type LogPayload struct {
	Message string `json:"message"`         // Log message
	Level   string `json:"level,omitempty"` // "info", "success", "warning", "error"
}

// LegendPayload lists the category colors
type LegendPayload struct {
	Entries []canvas.LegendEntry `json:"entries"`
}

// ScenePayload is a complete drawing of the roadmap
type ScenePayload struct {
	SVG       string  `json:"svg"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	NodeCount int     `json:"node_count"`
	Selected  string  `json:"selected,omitempty"`
}

// NodeSelectedPayload carries the data of the selected node
type NodeSelectedPayload struct {
	Node models.RoadmapNode `json:"node"`
}

// DetailsPayload mirrors the detail panel
type DetailsPayload struct {
	State   detail.State                `json:"state"`
	Node    *models.RoadmapNode         `json:"node,omitempty"`
	Details *models.NodeDetailsResponse `json:"details,omitempty"`
	Error   string                      `json:"error,omitempty"`
	Seq     uint64                      `json:"seq"`
}

// CompletePayload sent when generation is done
type CompletePayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Nodes   int    `json:"nodes"`
}

// ErrorPayload for error messages
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Helper functions to create messages

func newMessage(t MessageType, payload any) Message {
	payloadBytes, _ := json.Marshal(payload)
	return Message{Type: t, Payload: payloadBytes}
}

func NewProgressMessage(percent int, stage, message string) Message {
	return newMessage(TypeProgress, ProgressPayload{
		Percent: percent,
		Stage:   stage,
		Message: message,
	})
}

func NewLogMessage(message, level string) Message {
	return newMessage(TypeLog, LogPayload{
		Message: message,
		Level:   level,
	})
}

func NewLegendMessage(entries []canvas.LegendEntry) Message {
	return newMessage(TypeLegend, LegendPayload{Entries: entries})
}

func NewSceneMessage(svg string, scene canvas.Scene, selected string) Message {
	return newMessage(TypeScene, ScenePayload{
		SVG:       svg,
		Width:     scene.Width,
		Height:    scene.Height,
		NodeCount: len(scene.Nodes),
		Selected:  selected,
	})
}

func NewTransformMessage(t canvas.Transform) Message {
	return newMessage(TypeTransform, t)
}

func NewNodeSelectedMessage(node models.RoadmapNode) Message {
	return newMessage(TypeNodeSelected, NodeSelectedPayload{Node: node})
}

func NewDetailsMessage(v detail.View) Message {
	payload := DetailsPayload{
		State:   v.State,
		Node:    v.Node,
		Details: v.Details,
		Seq:     v.Seq,
	}
	if v.Err != nil {
		payload.Error = v.Err.Error()
	}
	return newMessage(TypeDetails, payload)
}

func NewCompleteMessage(success bool, message string, nodes int) Message {
	return newMessage(TypeComplete, CompletePayload{
		Success: success,
		Message: message,
		Nodes:   nodes,
	})
}

func NewErrorMessage(code, message string, err error) Message {
	errMsg := message
	if err != nil {
		errMsg = fmt.Sprintf("%s: %v", message, err)
	}
	return newMessage(TypeError, ErrorPayload{Message: errMsg, Code: code})
}

func parsePayload[T any](msg Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return nil, fmt.Errorf("missing %s payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse %s payload: %w", msg.Type, err)
	}
	return &payload, nil
}

// ParseResizePayload extracts the resize payload from a message
func ParseResizePayload(msg Message) (*ResizePayload, error) {
	payload, err := parsePayload[ResizePayload](msg)
	if err != nil {
		return nil, err
	}
	if payload.Width < 0 || payload.Height < 0 {
		return nil, fmt.Errorf("negative viewport size %gx%g", payload.Width, payload.Height)
	}
	return payload, nil
}

// ParsePointerPayload extracts a pointer position from a message
func ParsePointerPayload(msg Message) (*PointerPayload, error) {
	return parsePayload[PointerPayload](msg)
}

// ParseWheelPayload extracts the wheel payload from a message
func ParseWheelPayload(msg Message) (*WheelPayload, error) {
	return parsePayload[WheelPayload](msg)
}

// ParseSelectPayload extracts the select payload from a message
func ParseSelectPayload(msg Message) (*SelectPayload, error) {
	return parsePayload[SelectPayload](msg)
}
