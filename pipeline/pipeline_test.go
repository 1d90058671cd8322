package pipeline

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/tickforge/arena"
	"github.com/lixenwraith/tickforge/tick"
)

type testPayload struct{ N int }

func makeEntities(n int) []arena.AnyHandle {
	a := arena.New[testPayload](arena.Config{})
	out := make([]arena.AnyHandle, 0, n)
	for i := 0; i < n; i++ {
		h, _ := a.Spawn(testPayload{N: i})
		out = append(out, h.Any())
	}
	return out
}

type recordingSerial struct {
	name    string
	enabled bool
	query   Query
	calls   [][]arena.AnyHandle
}

func (s *recordingSerial) Name() string  { return s.name }
func (s *recordingSerial) Enabled() bool { return s.enabled }
func (s *recordingSerial) Kind() Kind    { return KindSerial }
func (s *recordingSerial) Query() Query  { return s.query }
func (s *recordingSerial) ProcessSerial(entities []arena.AnyHandle, ctx *Context) {
	s.calls = append(s.calls, entities)
}

func TestExecuteRunsSystemsInDefinitionOrder(t *testing.T) {
	entities := makeEntities(3)
	var order []string
	sysA := &recordingSerial{name: "a", enabled: true}
	sysB := &recordingSerial{name: "b", enabled: true}

	wrapA := &orderRecordingSerial{recordingSerial: sysA, order: &order, label: "a"}
	wrapB := &orderRecordingSerial{recordingSerial: sysB, order: &order, label: "b"}
	g := NewGroup()
	g.Add(wrapA)
	g.Add(wrapB)

	p := NewPipeline(func() []arena.AnyHandle { return entities }, 2, zerolog.Nop())
	p.Execute(g, tick.FromTicks(1))

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("order = %v, want [a b]", order)
	}
}

type orderRecordingSerial struct {
	*recordingSerial
	order *[]string
	label string
}

func (s *orderRecordingSerial) ProcessSerial(entities []arena.AnyHandle, ctx *Context) {
	*s.order = append(*s.order, s.label)
}

func TestExecuteSkipsDisabledSystems(t *testing.T) {
	entities := makeEntities(2)
	sys := &recordingSerial{name: "disabled", enabled: false}
	g := NewGroup()
	g.Add(sys)

	p := NewPipeline(func() []arena.AnyHandle { return entities }, 2, zerolog.Nop())
	p.Execute(g, tick.FromTicks(1))

	if len(sys.calls) != 0 {
		t.Fatal("a disabled system must not be dispatched")
	}
}

func TestExecuteIncrementsFrameCountAndTicks(t *testing.T) {
	p := NewPipeline(func() []arena.AnyHandle { return nil }, 2, zerolog.Nop())
	p.Execute(NewGroup(), tick.FromTicks(5))
	p.Execute(NewGroup(), tick.FromTicks(3))

	if p.FrameCount() != 2 {
		t.Fatalf("FrameCount = %d, want 2", p.FrameCount())
	}
	if p.TotalTicks() != tick.Tick(8) {
		t.Fatalf("TotalTicks = %v, want 8", p.TotalTicks())
	}
}

func TestResetZerosCountersWithoutTouchingRegistry(t *testing.T) {
	p := NewPipeline(func() []arena.AnyHandle { return nil }, 2, zerolog.Nop())
	p.Execute(NewGroup(), tick.FromTicks(5))
	p.Reset()

	if p.FrameCount() != 0 || p.TotalTicks() != 0 {
		t.Fatalf("Reset must zero both counters, got frame=%d ticks=%v", p.FrameCount(), p.TotalTicks())
	}
}

type countingParallel struct {
	name string
	sink *HandleMap[int]
}

func (s *countingParallel) Name() string  { return s.name }
func (s *countingParallel) Enabled() bool { return true }
func (s *countingParallel) Kind() Kind    { return KindParallel }
func (s *countingParallel) Query() Query  { return nil }
func (s *countingParallel) ProcessEntity(h arena.AnyHandle, ctx *Context) {
	s.sink.Set(h, int(h.Index))
}

func TestParallelStageWritesEveryEntityToSink(t *testing.T) {
	entities := makeEntities(20)
	sink := NewHandleMap[int]()
	sys := &countingParallel{name: "decide", sink: sink}

	g := NewGroup()
	g.Add(sys)

	p := NewPipeline(func() []arena.AnyHandle { return entities }, 4, zerolog.Nop())
	p.Execute(g, tick.FromTicks(1))

	if sink.Len() != len(entities) {
		t.Fatalf("sink.Len() = %d, want %d", sink.Len(), len(entities))
	}
	for _, h := range entities {
		if v, ok := sink.Get(h); !ok || v != int(h.Index) {
			t.Fatalf("sink missing or wrong value for handle %+v", h)
		}
	}
}

func TestHandleMapRangeVisitsInAscendingHandleOrder(t *testing.T) {
	entities := makeEntities(10)
	sink := NewHandleMap[int]()
	for _, h := range entities {
		sink.Set(h, int(h.Index))
	}

	var seen []int32
	sink.Range(func(h arena.AnyHandle, v int) bool {
		seen = append(seen, h.Index)
		return true
	})

	for i := 1; i < len(seen); i++ {
		if seen[i-1] > seen[i] {
			t.Fatalf("Range must visit in ascending index order, got %v", seen)
		}
	}
}

func TestCancelStopsLaterSystemsInGroup(t *testing.T) {
	entities := makeEntities(1)
	cancelingSys := &cancelingParallel{name: "cancel"}
	after := &recordingSerial{name: "after", enabled: true}

	g := NewGroup()
	g.Add(cancelingSys)
	g.Add(after)

	p := NewPipeline(func() []arena.AnyHandle { return entities }, 1, zerolog.Nop())
	p.Execute(g, tick.FromTicks(1))

	if len(after.calls) != 0 {
		t.Fatal("a system after a canceling stage must not run within the same Execute call")
	}
}

type cancelingParallel struct{ name string }

func (s *cancelingParallel) Name() string  { return s.name }
func (s *cancelingParallel) Enabled() bool { return true }
func (s *cancelingParallel) Kind() Kind    { return KindParallel }
func (s *cancelingParallel) Query() Query  { return nil }
func (s *cancelingParallel) ProcessEntity(h arena.AnyHandle, ctx *Context) {
	ctx.Cancel()
}
