package server

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/acheong08/neuromap/internal/canvas"
	"github.com/acheong08/neuromap/internal/detail"
	"github.com/acheong08/neuromap/internal/layout"
	"github.com/acheong08/neuromap/pkg/models"
)

const (
	sendBufferSize = 256
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client represents a connected WebSocket client. The read loop is its event
// loop; generation and detail fetches run on their own goroutines.
type Client struct {
	id       string
	conn     *websocket.Conn
	services *Services
	send     chan Message
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	canvas *canvas.Canvas
	panel  *detail.Panel

	// Track if generation is running (one at a time)
	generating atomic.Bool
	wg         sync.WaitGroup
}

func newClient(ctx context.Context, conn *websocket.Conn, services *Services) *Client {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(ctx)
	c := &Client{
		id:       id,
		conn:     conn,
		services: services,
		send:     make(chan Message, sendBufferSize),
		logger:   services.Logger.With(zap.String("client_id", id)),
		ctx:      ctx,
		cancel:   cancel,
	}

	c.canvas = canvas.New(services.Style, canvas.Handlers{
		OnScene:     c.onScene,
		OnTransform: c.onTransform,
		OnClick:     c.selectNode,
	})
	c.panel = detail.NewPanel(ctx, services.Details, c.onDetails, c.logger)
	return c
}

func (c *Client) SendMessage(msg Message) {
	select {
	case c.send <- msg:
	default:
		// Channel full, drop message
		c.logger.Warn("Message channel full, dropping message", zap.String("type", string(msg.Type)))
	}
}

func (c *Client) SendLog(message, level string) {
	c.SendMessage(NewLogMessage(message, level))
}

func (c *Client) SendProgress(percent int, stage, message string) {
	c.SendMessage(NewProgressMessage(percent, stage, message))
}

func (c *Client) SendError(code, message string, err error) {
	c.SendMessage(NewErrorMessage(code, message, err))
}

func (c *Client) run() {
	c.services.Metrics.ConnectionOpened()
	c.logger.Info("Client connected")

	c.SendMessage(NewLegendMessage(canvas.Legend(c.services.Style)))

	go c.writePump()
	c.readPump()

	c.cancel()
	c.wg.Wait()
	c.panel.Wait()
	c.services.Metrics.ConnectionClosed()
	c.logger.Info("Client disconnected")
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Warn("Error writing message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}

func (c *Client) readPump() {
	defer c.conn.Close()

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket error", zap.Error(err))
			}
			return
		}

		if err := c.handle(msg); err != nil {
			c.SendError(CodeBadRequest, fmt.Sprintf("Invalid %s message", msg.Type), err)
		}
	}
}

func (c *Client) handle(msg Message) error {
	switch msg.Type {
	case TypeGenerate:
		c.handleGenerate()

	case TypeResize:
		payload, err := ParseResizePayload(msg)
		if err != nil {
			return err
		}
		c.canvas.Resize(payload.Width, payload.Height)

	case TypePointerDown, TypePointerMove, TypePointerUp:
		payload, err := ParsePointerPayload(msg)
		if err != nil {
			return err
		}
		p := layout.Point{X: payload.X, Y: payload.Y}
		switch msg.Type {
		case TypePointerDown:
			c.canvas.PointerDown(p)
		case TypePointerMove:
			c.canvas.PointerMove(p)
		default:
			c.canvas.PointerUp(p)
		}

	case TypeWheel:
		payload, err := ParseWheelPayload(msg)
		if err != nil {
			return err
		}
		c.canvas.Wheel(layout.Point{X: payload.X, Y: payload.Y}, payload.DeltaY)

	case TypeSelect:
		payload, err := ParseSelectPayload(msg)
		if err != nil {
			return err
		}
		if payload.NodeID == "" {
			c.closePanel()
			return nil
		}
		shape, ok := c.canvas.Scene().Shape(payload.NodeID)
		if !ok {
			return fmt.Errorf("unknown node %q", payload.NodeID)
		}
		c.selectNode(shape.Node)

	case TypeClosePanel:
		c.closePanel()

	case TypePing:
		c.SendMessage(Message{Type: TypePong})

	default:
		return fmt.Errorf("unknown message type")
	}
	return nil
}

func (c *Client) handleGenerate() {
	// Check if already generating
	if !c.generating.CompareAndSwap(false, true) {
		c.SendError(CodeBusy, "Generation already in progress", nil)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.generating.Store(false)

		pipeline := NewPipeline(c.services.Generator, c.canvas, c.services.Layout, c, c.logger, c.services.Metrics)
		nodes, err := pipeline.Run(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil {
				c.logger.Info("Generation cancelled")
				return
			}
			c.logger.Error("Generation failed", zap.Error(err))
			// Nothing of the previous roadmap stays under the failure state
			c.canvas.SetData(nil)
			c.panel.Close()
			c.SendError(ErrorCode(err), "Failed to generate roadmap", err)
			return
		}

		// Details belong to the previous roadmap even when IDs repeat
		c.panel.Close()
		c.SendMessage(NewCompleteMessage(true, "Roadmap ready", nodes))
	}()
}

// selectNode highlights a node and opens its details
func (c *Client) selectNode(node models.RoadmapNode) {
	c.canvas.Select(node.ID)
	c.SendMessage(NewNodeSelectedMessage(node))
	c.panel.Open(node)
}

func (c *Client) closePanel() {
	c.panel.Close()
	c.canvas.Select("")
}

func (c *Client) onScene(scene canvas.Scene, t canvas.Transform) {
	var buf bytes.Buffer
	if err := scene.WriteSVG(&buf, t); err != nil {
		c.logger.Error("Failed to render scene", zap.Error(err))
		c.SendError(CodeGenerationFailed, "Failed to render roadmap", err)
		return
	}
	selected := ""
	for _, shape := range scene.Nodes {
		if shape.Selected {
			selected = shape.Node.ID
			break
		}
	}
	c.SendMessage(NewSceneMessage(buf.String(), scene, selected))
}

func (c *Client) onTransform(t canvas.Transform) {
	c.SendMessage(NewTransformMessage(t))
}

func (c *Client) onDetails(v detail.View) {
	switch v.State {
	case detail.Loaded, detail.Failed:
		c.services.Metrics.DetailRequest(v.State.String())
	}
	c.SendMessage(NewDetailsMessage(v))
}
