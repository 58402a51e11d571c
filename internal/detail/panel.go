package detail

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/acheong08/neuromap/pkg/models"
)

// State is the lifecycle of the detail view
type State int

const (
	Closed State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets the state travel as its name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{Closed, Loading, Loaded, Failed} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown panel state %q", text)
}

// Fetcher requests the enrichment for one node
type Fetcher interface {
	RequestNodeDetails(ctx context.Context, label, description string) (*models.NodeDetailsResponse, error)
}

// View is a snapshot of the panel
type View struct {
	Node    *models.RoadmapNode
	State   State
	Details *models.NodeDetailsResponse
	Err     error
	Seq     uint64
}

// Panel shows the details of the selected node. Only the result of the most
// recent Open is ever applied; earlier fetches finish and are discarded.
type Panel struct {
	mu   sync.Mutex
	seq  uint64
	view View

	ctx      context.Context
	fetcher  Fetcher
	onChange func(View)
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewPanel creates a closed panel. Fetches run under ctx.
func NewPanel(ctx context.Context, fetcher Fetcher, onChange func(View), logger *zap.Logger) *Panel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Panel{
		ctx:      ctx,
		fetcher:  fetcher,
		onChange: onChange,
		logger:   logger,
	}
}

// Open shows node in the loading state and fetches its details
func (p *Panel) Open(node models.RoadmapNode) {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.view = View{Node: &node, State: Loading, Seq: seq}
	v := p.view
	p.wg.Add(1)
	p.mu.Unlock()

	p.notify(v)
	go p.fetch(seq, node)
}

// Close hides the panel and invalidates any fetch in flight
func (p *Panel) Close() {
	p.mu.Lock()
	p.seq++
	p.view = View{State: Closed, Seq: p.seq}
	v := p.view
	p.mu.Unlock()

	p.notify(v)
}

// View returns the current snapshot
func (p *Panel) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// Wait blocks until every started fetch has returned
func (p *Panel) Wait() {
	p.wg.Wait()
}

func (p *Panel) fetch(seq uint64, node models.RoadmapNode) {
	defer p.wg.Done()

	details, err := p.fetcher.RequestNodeDetails(p.ctx, node.Label, node.Description)

	p.mu.Lock()
	if seq != p.seq {
		p.mu.Unlock()
		p.logger.Debug("Dropping stale node details",
			zap.String("node_id", node.ID),
			zap.Uint64("seq", seq))
		return
	}
	if err != nil {
		p.view = View{Node: &node, State: Failed, Err: err, Seq: seq}
	} else {
		p.view = View{Node: &node, State: Loaded, Details: details, Seq: seq}
	}
	v := p.view
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("Node details request failed",
			zap.String("node_id", node.ID),
			zap.Error(err))
	}
	p.notify(v)
}

func (p *Panel) notify(v View) {
	if p.onChange != nil {
		p.onChange(v)
	}
}
