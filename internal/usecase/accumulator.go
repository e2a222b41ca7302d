package usecase

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/xdamman/stripe-mcp-fridge/internal/domain/entity"
)

// toolCallAccumulator merges the index-addressed tool-call fragments of one
// model turn into complete invocations.
//
// Providers split a call across many chunks: the first fragment for an index
// usually carries the id and name, later ones append argument text. Index
// gaps are valid; an index that never received a fragment simply has no
// builder. Never assume contiguity.
type toolCallAccumulator struct {
	builders map[int]*toolCallBuilder
}

type toolCallBuilder struct {
	id   string
	name string
	args strings.Builder
}

func newToolCallAccumulator() *toolCallAccumulator {
	return &toolCallAccumulator{builders: make(map[int]*toolCallBuilder)}
}

// apply merges one fragment into the builder at its index, creating the
// builder on first sight. Id and name are overwritten only by non-empty
// values so a sparse later fragment can never blank out known data.
// Argument deltas always append.
func (a *toolCallAccumulator) apply(frag *entity.ToolCallFragment) {
	if frag == nil {
		return
	}

	b, ok := a.builders[frag.Index]
	if !ok {
		b = &toolCallBuilder{id: newCallID()}
		a.builders[frag.Index] = b
	}

	if v := strings.TrimSpace(frag.ID); v != "" {
		b.id = v
	}
	if v := strings.TrimSpace(frag.Name); v != "" {
		b.name = v
	}
	b.args.WriteString(frag.ArgumentsDelta)
}

// count reports how many calls are in progress.
func (a *toolCallAccumulator) count() int {
	return len(a.builders)
}

// freeze renders the builders as complete ToolCalls in ascending index
// order. Builders are mutable only until this point.
func (a *toolCallAccumulator) freeze() []entity.ToolCall {
	if len(a.builders) == 0 {
		return nil
	}

	indexes := make([]int, 0, len(a.builders))
	for idx := range a.builders {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	calls := make([]entity.ToolCall, 0, len(indexes))
	for _, idx := range indexes {
		b := a.builders[idx]
		calls = append(calls, entity.ToolCall{
			ID:        b.id,
			Name:      b.name,
			Arguments: b.args.String(),
		})
	}
	return calls
}

// newCallID generates a process-unique id for calls the provider sent
// without one, so tool results can still be keyed back to their call.
func newCallID() string {
	return "call_" + uuid.NewString()
}
