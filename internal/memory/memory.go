package memory

import "sync"

// Turn is one completed question and answer exchange.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Buffer is an append-only conversation history. A turn is recorded only
// after its answer was produced, so the buffer never holds half-finished
// exchanges.
type Buffer struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append records one completed turn.
func (b *Buffer) Append(question, answer string) {
	b.mu.Lock()
	b.turns = append(b.turns, Turn{Question: question, Answer: answer})
	b.mu.Unlock()
}

// Recent returns the last n turns, oldest first. Fewer than n recorded
// turns returns them all; n <= 0 returns none.
func (b *Buffer) Recent(n int) []Turn {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	if n > len(b.turns) {
		n = len(b.turns)
	}
	out := make([]Turn, n)
	copy(out, b.turns[len(b.turns)-n:])
	return out
}

// Len returns the number of recorded turns.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.turns)
}

// Clear discards all history. Clearing an empty buffer is a no-op.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.turns = nil
	b.mu.Unlock()
}
