package core

import (
	"errors"
	"fmt"
)

// ErrMaxRounds is returned when an agent exhausts its generation rounds for
// one inbound message.
var ErrMaxRounds = errors.New("exceeded max generation rounds")

// RoundBudget counts the generation rounds spent on one inbound message.
// It belongs to a single control loop and is not safe for concurrent use.
type RoundBudget struct {
	// Max is the number of rounds allowed; 0 means unbounded.
	Max  int
	used int
}

// Next spends one round. Once more than Max rounds are spent it returns an
// error wrapping ErrMaxRounds.
func (b *RoundBudget) Next() error {
	b.used++
	if b.Max > 0 && b.used > b.Max {
		return fmt.Errorf("%w: %d", ErrMaxRounds, b.Max)
	}
	return nil
}

// Used returns the number of rounds started.
func (b *RoundBudget) Used() int { return b.used }

// Remaining returns the rounds left, or -1 when unbounded.
func (b *RoundBudget) Remaining() int {
	if b.Max == 0 {
		return -1
	}
	return max(b.Max-b.used, 0)
}
