// Package svanimate steps through the animation of a view by fading in its
// elements and relationships one step at a time.
package svanimate

import (
	"context"
	"sync"
	"time"

	"cdr.dev/slog"

	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/svfilter"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svworkspace"
)

const DefaultInterval = 2 * time.Second

type Mode int

const (
	// DynamicReplay reveals dynamic view relationships in order.
	DynamicReplay Mode = iota
	// ExplicitSteps follows the animation steps declared on a view.
	ExplicitSteps
)

// Step lists the cells a step reveals. Links holds the relationship views
// behind Relationships; a dynamic view may show one relationship more than
// once.
type Step struct {
	Elements      []string
	Relationships []string
	Links         []*svworkspace.RelationshipView
}

// Steps computes the animation of v. It returns nil when v has none.
func Steps(ws *svworkspace.Workspace, v *svworkspace.View) (Mode, []Step) {
	if v.Type == svworkspace.DynamicView {
		return DynamicReplay, dynamicSteps(ws, v)
	}
	var steps []Step
	for _, a := range v.Animations {
		step := Step{
			Elements:      append([]string(nil), a.Elements...),
			Relationships: append([]string(nil), a.Relationships...),
		}
		for _, rv := range v.Relationships {
			if contains(a.Relationships, rv.ID) {
				step.Links = append(step.Links, rv)
			}
		}
		steps = append(steps, step)
	}
	return ExplicitSteps, steps
}

// dynamicSteps groups relationships with equal order into one step. Each step
// also reveals the ends of its relationships.
func dynamicSteps(ws *svworkspace.Workspace, v *svworkspace.View) []Step {
	var steps []Step
	prev := ""
	for i, rv := range ws.SortedDynamicRelationships(v) {
		if i == 0 || svworkspace.CompareOrder(prev, rv.Order) != 0 {
			steps = append(steps, Step{})
		}
		prev = rv.Order
		step := &steps[len(steps)-1]
		step.Relationships = appendNew(step.Relationships, rv.ID)
		step.Links = append(step.Links, rv)
		if r := ws.Relationship(rv.ID); r != nil {
			step.Elements = appendNew(step.Elements, r.SourceID, r.DestinationID)
		}
	}
	return steps
}

func appendNew(ss []string, vs ...string) []string {
	for _, v := range vs {
		if !contains(ss, v) {
			ss = append(ss, v)
		}
	}
	return ss
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

// Animation drives the steps of one view over a scene. It is safe to step
// from an autoplay goroutine while the owner reads Index.
type Animation struct {
	scene  *svscene.Scene
	ws     *svworkspace.Workspace
	filter svfilter.Filter
	mode   Mode
	steps  []Step

	// OnZoom, when set, is called with the cells of each revealed step.
	OnZoom func([]*svscene.Cell)

	mu      sync.Mutex
	index   int
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(scene *svscene.Scene, ws *svworkspace.Workspace, v *svworkspace.View, filter svfilter.Filter) *Animation {
	mode, steps := Steps(ws, v)
	return &Animation{
		scene:  scene,
		ws:     ws,
		filter: filter,
		mode:   mode,
		steps:  steps,
		index:  -1,
	}
}

func (a *Animation) Mode() Mode {
	return a.mode
}

func (a *Animation) Steps() []Step {
	return a.steps
}

// Len is the number of steps.
func (a *Animation) Len() int {
	return len(a.steps)
}

// Index is the last revealed step, or -1 before the first.
func (a *Animation) Index() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.index
}

func (a *Animation) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Start hides everything and reveals the first step.
func (a *Animation) Start(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.steps) == 0 {
		return false
	}
	a.running = true
	a.show(ctx, 0)
	return true
}

// StepForward reveals the next step. It reports false at the last step.
func (a *Animation) StepForward(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.steps) == 0 || a.index >= len(a.steps)-1 {
		return false
	}
	a.running = true
	a.show(ctx, a.index+1)
	return true
}

// StepBackward replays the animation up to the previous step.
func (a *Animation) StepBackward(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.index <= 0 {
		return false
	}
	a.show(ctx, a.index-1)
	return true
}

// Stop ends the animation, shows every cell and reapplies the filter.
func (a *Animation) Stop(ctx context.Context) {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = false
	a.index = -1
	a.scene.ResetOpacity()
	a.filter.Apply(a.scene, a.ws)
	log.Debug(ctx, "animation stopped")
}

// show fades every element and relationship, then reveals steps 0..i. The
// ancestors of revealed cells are revealed with them.
func (a *Animation) show(ctx context.Context, i int) {
	a.scene.ResetOpacity()
	visible := map[*svscene.Cell]bool{}
	var last []*svscene.Cell
	for n := 0; n <= i; n++ {
		last = last[:0]
		for _, id := range a.steps[n].Elements {
			if c := a.scene.ElementCell(id); c != nil {
				last = append(last, c)
			}
		}
		for _, rv := range a.steps[n].Links {
			if c := a.scene.LinkFor(rv); c != nil {
				last = append(last, c)
			}
		}
		for _, c := range last {
			visible[c] = true
			for _, p := range c.Ancestors() {
				visible[p] = true
			}
		}
	}
	for _, c := range a.scene.Cells() {
		if animated(c) && !visible[c] {
			c.Opacity = svfilter.FadedOpacity
		}
	}
	a.filter.Apply(a.scene, a.ws)
	a.index = i
	log.Debug(ctx, "animation step", slog.F("step", i+1), slog.F("of", len(a.steps)))
	if a.OnZoom != nil && len(last) > 0 {
		a.OnZoom(append([]*svscene.Cell(nil), last...))
	}
}

// animated reports whether c takes part in animation. Diagram metadata
// stays visible throughout.
func animated(c *svscene.Cell) bool {
	switch c.Role {
	case svscene.RoleElement, svscene.RoleRelationship, svscene.RoleBoundary, svscene.RoleGroup:
		return true
	}
	return c.Element != nil && c.Element.Type == svworkspace.DeploymentNode
}

// Autoplay steps forward every interval on its own goroutine until the last
// step, Stop or ctx is done. onStep is called after each step with its
// index. A non positive interval uses DefaultInterval.
func (a *Animation) Autoplay(ctx context.Context, interval time.Duration, onStep func(int)) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	a.Stop(ctx)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.mu.Lock()
	a.cancel, a.done = cancel, done
	a.mu.Unlock()

	if a.Start(ctx) && onStep != nil {
		onStep(0)
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !a.StepForward(ctx) {
					return
				}
				if onStep != nil {
					onStep(a.Index())
				}
			}
		}
	}()
}

// Wait blocks until autoplay finishes.
func (a *Animation) Wait() {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()
	if done != nil {
		<-done
	}
}
