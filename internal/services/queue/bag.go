// Package queue provides the upcoming-piece sequence. The reference generator
// is a 7-bag: every run of seven pieces starting at a multiple of seven holds
// each shape exactly once.
package queue

import (
	"fmt"
	"sync"

	"github.com/mcoot/blockfall/internal/dependencies/random"
	"github.com/mcoot/blockfall/internal/model"
)

// Queue is consumed by the board by increasing index
type Queue interface {
	// Piece returns the piece at index. Asking for an index the generator
	// has not produced yet is a broken invariant and panics.
	Piece(index int) model.Piece

	// Peek returns n pieces starting at index from
	Peek(from, n int) []model.Piece

	// Generated returns how many pieces exist so far
	Generated() int
}

// Ahead is the minimum number of pieces kept generated past the last
// requested index
const Ahead = model.PreviewLength

// Bag is a 7-bag generator owned by a single session
type Bag struct {
	rng    random.Random
	pieces []model.Piece
}

var _ Queue = (*Bag)(nil)

// NewBag creates a bag queue with enough pieces for the first spawn and preview
func NewBag(rng random.Random) *Bag {
	b := &Bag{rng: rng}
	b.fill(0)
	return b
}

// Piece returns the piece at index and tops the bag up past it
func (b *Bag) Piece(index int) model.Piece {
	if index < 0 || index >= len(b.pieces) {
		panic(fmt.Sprintf("queue: piece %d requested but only %d generated", index, len(b.pieces)))
	}
	p := b.pieces[index]
	b.fill(index)
	return p
}

// Peek returns up to n pieces starting at from, generating as needed
func (b *Bag) Peek(from, n int) []model.Piece {
	if from < 0 || n <= 0 {
		return nil
	}
	for len(b.pieces) < from+n {
		b.appendBag()
	}
	out := make([]model.Piece, n)
	copy(out, b.pieces[from:from+n])
	return out
}

// Generated returns how many pieces exist so far
func (b *Bag) Generated() int {
	return len(b.pieces)
}

// fill generates bags until at least Ahead pieces follow index
func (b *Bag) fill(index int) {
	for len(b.pieces)-(index+1) < Ahead {
		b.appendBag()
	}
}

func (b *Bag) appendBag() {
	perm := b.rng.Perm(len(model.Shapes))
	for _, i := range perm {
		b.pieces = append(b.pieces, model.Shapes[i])
	}
}

// Shared lets several sessions in a room draw the same piece sequence. Each
// session still reads by its own index.
type Shared struct {
	mu  sync.Mutex
	bag *Bag
}

var _ Queue = (*Shared)(nil)

// NewShared creates a sequence safe for concurrent readers
func NewShared(rng random.Random) *Shared {
	return &Shared{bag: NewBag(rng)}
}

// Piece returns the piece at index. Readers that fall behind the shared
// generator are served from the already generated prefix.
func (s *Shared) Piece(index int) model.Piece {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bag.Piece(index)
}

// Peek returns n pieces starting at from
func (s *Shared) Peek(from, n int) []model.Piece {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bag.Peek(from, n)
}

// Generated returns how many pieces exist so far
func (s *Shared) Generated() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bag.Generated()
}
