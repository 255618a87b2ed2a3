package listing

import "sync"

// Token identifies one request issued for a logical query.
type Token struct {
	Query string
	Seq   uint64
}

// Sequencer hands out increasing tokens per logical query so that a slow
// response for an older request can be recognised and dropped.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// NewSequencer returns an empty Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Next issues a token for query, superseding all earlier ones.
func (s *Sequencer) Next(query string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[query]++
	return Token{Query: query, Seq: s.latest[query]}
}

// IsLatest reports whether tok is the most recent token issued for its query.
func (s *Sequencer) IsLatest(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tok.Seq != 0 && s.latest[tok.Query] == tok.Seq
}
