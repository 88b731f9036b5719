package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/themis-iprm/themis/internal/domain/model/wizard"
)

func flowOf(keys ...wizard.StepKey) wizard.Flow {
	f := make(wizard.Flow, len(keys))
	for i, k := range keys {
		f[i] = wizard.StepDefinition{Key: k, Title: string(k), UIRef: wizard.UIRef("Generic")}
	}
	return f
}

type recordingSetter struct {
	calls []int
}

func (r *recordingSetter) SetCurrentStep(_ context.Context, index int) {
	r.calls = append(r.calls, index)
}

func TestGate_IsStepAccessible(t *testing.T) {
	g := NewGate(flowOf("a", "b", "c", "d", "e"), 1, nil)

	tests := []struct {
		index int
		want  bool
	}{
		{index: -1, want: false},
		{index: 0, want: true},
		{index: 1, want: true},
		{index: 2, want: true},
		{index: 3, want: false},
		{index: 4, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.IsStepAccessible(tt.index), "index %d", tt.index)
	}
}

func TestGate_IsStepCompleted(t *testing.T) {
	data := wizard.StepData{
		"a": wizard.GenericData{Fields: map[string]any{"x": 1}},
		"c": wizard.GenericData{Fields: map[string]any{"x": 3}},
	}
	g := NewGate(flowOf("a", "b", "c", "d"), 2, data)

	assert.True(t, g.IsStepCompleted(0))
	assert.False(t, g.IsStepCompleted(1), "no data captured")
	assert.False(t, g.IsStepCompleted(2), "data but not behind the pointer")
	assert.False(t, g.IsStepCompleted(3))
	assert.False(t, g.IsStepCompleted(-1))
	assert.False(t, g.IsStepCompleted(10))
}

// dataSets covers no data, partial data and data for every step
func dataSets(steps wizard.Flow) map[string]wizard.StepData {
	full := wizard.StepData{}
	partial := wizard.StepData{}
	for i, s := range steps {
		full[s.Key] = wizard.GenericData{Fields: map[string]any{"i": i}}
		if i%2 == 0 {
			partial[s.Key] = full[s.Key]
		}
	}
	return map[string]wizard.StepData{"none": nil, "partial": partial, "full": full}
}

func TestGate_AccessibilityForEveryPosition(t *testing.T) {
	steps := flowOf("a", "b", "c", "d", "e")
	n := len(steps)

	for name, data := range dataSets(steps) {
		for cur := 0; cur < n; cur++ {
			g := NewGate(steps, cur, data)
			for i := -1; i <= n; i++ {
				want := i >= 0 && i <= cur+1
				assert.Equal(t, want, g.IsStepAccessible(i), "data=%s current=%d index=%d", name, cur, i)

				rec := &recordingSetter{}
				jumped := JumpTo(context.Background(), g, rec, i)
				assert.Equal(t, want && i < n, jumped, "data=%s current=%d jump to %d", name, cur, i)
				if !jumped {
					assert.Empty(t, rec.calls)
				}
			}
		}
	}
}

func TestGate_CompletionForEveryPosition(t *testing.T) {
	steps := flowOf("a", "b", "c", "d", "e")
	n := len(steps)

	for name, data := range dataSets(steps) {
		for cur := 0; cur < n; cur++ {
			g := NewGate(steps, cur, data)
			for i := 0; i < n; i++ {
				want := i < cur && data.Has(steps[i].Key)
				assert.Equal(t, want, g.IsStepCompleted(i), "data=%s current=%d index=%d", name, cur, i)
			}
			// the current step and everything after it are never completed
			for i := cur; i < n; i++ {
				assert.False(t, g.IsStepCompleted(i), "data=%s current=%d index=%d", name, cur, i)
			}
		}
	}
}

func TestGate_NextPreviousBounds(t *testing.T) {
	steps := flowOf("a", "b", "c")

	first := NewGate(steps, 0, nil)
	assert.True(t, first.CanGoNext())
	assert.False(t, first.CanGoPrevious())

	last := NewGate(steps, 2, nil)
	assert.False(t, last.CanGoNext())
	assert.True(t, last.CanGoPrevious())

	empty := NewGate(nil, 0, nil)
	assert.False(t, empty.CanGoNext())
	assert.False(t, empty.CanGoPrevious())
}

func TestGate_ProgressPercent(t *testing.T) {
	steps := flowOf("a", "b", "c", "d")

	assert.InDelta(t, 25.0, NewGate(steps, 0, nil).ProgressPercent(), 0.001)
	assert.InDelta(t, 100.0, NewGate(steps, 3, nil).ProgressPercent(), 0.001)
	assert.Equal(t, 0.0, NewGate(nil, 0, nil).ProgressPercent())
}

func TestGate_State(t *testing.T) {
	data := wizard.StepData{"a": wizard.GenericData{Fields: map[string]any{}}}
	g := NewGate(flowOf("a", "b", "c", "d"), 1, data)

	assert.Equal(t, StateCompleted, g.State(0))
	assert.Equal(t, StateCurrent, g.State(1))
	assert.Equal(t, StateAccessible, g.State(2))
	assert.Equal(t, StateLocked, g.State(3))
}

func TestCommands(t *testing.T) {
	ctx := context.Background()
	steps := flowOf("a", "b", "c", "d", "e")

	t.Run("next and previous move one step", func(t *testing.T) {
		s := &recordingSetter{}
		assert.True(t, Next(ctx, NewGate(steps, 1, nil), s))
		assert.True(t, Previous(ctx, NewGate(steps, 1, nil), s))
		assert.Equal(t, []int{2, 0}, s.calls)
	})

	t.Run("moves past the ends are rejected", func(t *testing.T) {
		s := &recordingSetter{}
		assert.False(t, Next(ctx, NewGate(steps, 4, nil), s))
		assert.False(t, Previous(ctx, NewGate(steps, 0, nil), s))
		assert.Empty(t, s.calls)
	})

	t.Run("jump forward by more than one step is rejected", func(t *testing.T) {
		s := &recordingSetter{}
		assert.False(t, JumpTo(ctx, NewGate(steps, 0, nil), s, 3))
		assert.Empty(t, s.calls)
	})

	t.Run("jump to an earlier or the next step is allowed", func(t *testing.T) {
		s := &recordingSetter{}
		g := NewGate(steps, 2, nil)
		assert.True(t, JumpTo(ctx, g, s, 0))
		assert.True(t, JumpTo(ctx, g, s, 3))
		assert.Equal(t, []int{0, 3}, s.calls)
	})

	t.Run("jump beyond the flow is rejected", func(t *testing.T) {
		s := &recordingSetter{}
		assert.False(t, JumpTo(ctx, NewGate(steps, 4, nil), s, 5))
		assert.False(t, JumpTo(ctx, NewGate(steps, 0, nil), s, -1))
		assert.Empty(t, s.calls)
	})
}
