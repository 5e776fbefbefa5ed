package opt

import (
	"context"
	"time"
)

// budget bounds the local search of a single seed. A nil *budget is unlimited.
// Once exhausted it stays exhausted, and the search keeps the best order found.
type budget struct {
	ctx      context.Context
	deadline time.Time
	maxMoves int
	moves    int
	step     int
	spent    bool
}

func newBudget(ctx context.Context, limit time.Duration, maxMoves int) *budget {
	b := &budget{ctx: ctx, maxMoves: maxMoves}
	if limit > 0 {
		b.deadline = time.Now().Add(limit)
	}
	return b
}

// tick is called once per evaluated candidate. The clock and the context are
// only consulted every 2048 steps.
func (b *budget) tick() bool {
	if b == nil {
		return false
	}
	if b.spent {
		return true
	}
	b.step++
	if b.step&2047 != 0 {
		return false
	}
	if b.ctx != nil && b.ctx.Err() != nil {
		b.spent = true
	}
	if !b.deadline.IsZero() && time.Now().After(b.deadline) {
		b.spent = true
	}
	return b.spent
}

// accept records an applied move and reports whether the move cap is reached.
func (b *budget) accept() bool {
	if b == nil {
		return false
	}
	b.moves++
	if b.maxMoves > 0 && b.moves >= b.maxMoves {
		b.spent = true
	}
	return b.spent
}

func (b *budget) exhausted() bool { return b != nil && b.spent }
