package pipeline

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/streamdsp/dsp/stage"
)

// StageSummary describes one stage's position, type, and configuration
// for ListState. Fields that don't apply to a given stage kind are left
// at their zero value and omitted from JSON.
type StageSummary struct {
	Index int    `json:"index"`
	Type  string `json:"type"`
	stage.Info
}

// stateDoc is the serialized form of a single stage within a SaveState
// document.
type stateDoc struct {
	Index int             `json:"index"`
	Type  string          `json:"type"`
	State json.RawMessage `json:"state"`
}

// savedState is the root JSON structure produced by SaveState and
// consumed by LoadState.
type savedState struct {
	Timestamp int64      `json:"timestamp"`
	Stages    []stateDoc `json:"stages"`
}

// Pipeline runs an ordered list of stages over interleaved multi-channel
// sample buffers. Process is asynchronous: it hands the buffer to a single
// background worker goroutine and returns a Future immediately. AddStage,
// SaveState, LoadState, and ClearState run synchronously on the caller's
// goroutine but take the same mutex the worker holds while running a
// stage list, so none of them can interleave with an in-flight Process
// call partway through the stage list.
type Pipeline struct {
	registry *stage.Registry

	mu     sync.Mutex
	stages []stage.Stage

	jobs     chan func()
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New returns an empty Pipeline with a background worker goroutine ready
// to accept Process calls.
func New() *Pipeline {
	p := &Pipeline{
		registry: stage.NewRegistry(),
		jobs:     make(chan func()),
		stopCh:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Pipeline) run() {
	for {
		select {
		case job := <-p.jobs:
			job()
		case <-p.stopCh:
			return
		}
	}
}

// Close stops the background worker. Any Process call made after Close
// returns a Future that resolves with ErrPipelineClosed. Close does not
// wait for in-flight Process calls to finish; use their Futures for that.
func (p *Pipeline) Close() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// AddStage builds a stage from cfg and appends it to the pipeline.
func (p *Pipeline) AddStage(cfg stage.Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, err := p.registry.Build(cfg)
	if err != nil {
		return fmt.Errorf("pipeline: add stage: %w", err)
	}

	p.stages = append(p.stages, st)
	return nil
}

// Process runs every stage over buf, in order, on the background worker
// goroutine, mutating buf in place, and returns a Future that resolves
// with that same buffer once every stage has run. numChannels must be
// consistent across calls for stages that maintain per-channel state.
func (p *Pipeline) Process(buf []float32, numChannels int) *Future {
	fut := newFuture()

	job := func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		for i, st := range p.stages {
			if err := st.Process(buf, numChannels); err != nil {
				fut.complete(nil, fmt.Errorf("pipeline: stage %d (%s): %w", i, st.Type(), err))
				return
			}
		}

		fut.complete(buf, nil)
	}

	select {
	case p.jobs <- job:
	case <-p.stopCh:
		fut.complete(nil, ErrPipelineClosed)
	}

	return fut
}

// SaveState serializes every stage's internal state into a single JSON
// document, tagged with a monotonic creation timestamp.
func (p *Pipeline) SaveState() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc := savedState{Timestamp: time.Now().UnixNano()}
	for i, st := range p.stages {
		state, err := st.Serialize()
		if err != nil {
			return nil, fmt.Errorf("pipeline: save state: stage %d (%s): %w", i, st.Type(), err)
		}
		doc.Stages = append(doc.Stages, stateDoc{Index: i, Type: st.Type(), State: state})
	}

	return json.Marshal(doc)
}

// LoadState restores every stage's internal state from a document
// previously produced by SaveState. The document must name exactly the
// pipeline's current stages, in the same order and with matching types.
// If any stage's Deserialize fails, every stage is left exactly as it
// was before the call: partial restoration is never observable, even
// when the failure happens partway through the document.
func (p *Pipeline) LoadState(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var doc savedState
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if len(doc.Stages) != len(p.stages) {
		return fmt.Errorf("%w: state has %d stages, pipeline has %d", ErrStageCountMismatch, len(doc.Stages), len(p.stages))
	}

	for _, sd := range doc.Stages {
		if sd.Index < 0 || sd.Index >= len(p.stages) {
			return fmt.Errorf("%w: state index %d out of range", ErrInvalidConfig, sd.Index)
		}

		st := p.stages[sd.Index]
		if st.Type() != sd.Type {
			return fmt.Errorf("%w: stage %d is %s, state is %s", ErrStageTypeMismatch, sd.Index, st.Type(), sd.Type)
		}
	}

	// Snapshot every stage's current state before touching any of them,
	// so a mid-document Deserialize failure can be rolled back.
	before := make([]json.RawMessage, len(p.stages))
	for i, st := range p.stages {
		state, err := st.Serialize()
		if err != nil {
			return fmt.Errorf("pipeline: load state: snapshot stage %d (%s): %w", i, st.Type(), err)
		}
		before[i] = state
	}

	for _, sd := range doc.Stages {
		if err := p.stages[sd.Index].Deserialize(sd.State); err != nil {
			p.rollback(before)
			return fmt.Errorf("pipeline: load state: stage %d (%s): %w", sd.Index, sd.Type, err)
		}
	}

	return nil
}

// rollback restores every stage from a snapshot taken by LoadState.
// Restoring a stage's own just-serialized state is expected to always
// succeed; it is the same Deserialize path LoadState itself relies on.
func (p *Pipeline) rollback(before []json.RawMessage) {
	for i, st := range p.stages {
		_ = st.Deserialize(before[i])
	}
}

// ClearState resets every stage to its initial, empty condition. Each
// stage keeps the channel count fixed by its first Process call.
func (p *Pipeline) ClearState() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, st := range p.stages {
		st.Reset()
	}
}

// ListState returns the index, type, and Describe summary (mode, window
// size, epsilon, channel count, first-channel occupancy) of every stage
// currently in the pipeline, in processing order.
func (p *Pipeline) ListState() []StageSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]StageSummary, len(p.stages))
	for i, st := range p.stages {
		out[i] = StageSummary{Index: i, Type: st.Type(), Info: st.Describe()}
	}
	return out
}
