package optpass

import "sort"

// Effect records one pass's contribution against a single function: how
// many instructions it folded away or marked dead, kept so a caller can
// judge which passes are actually earning their place in the pipeline.
type Effect struct {
	Pass     string
	Function string
	Removed  int
}

// Stats accumulates Effects across a whole pipeline run, mutex-guarded so
// a parallel Pipeline.RunParallel can report into it from multiple
// goroutines at once.
type Stats struct {
	mu      chan struct{} // 1-buffered channel used as a lightweight mutex
	effects []Effect
}

// NewStats creates an empty, ready-to-use Stats table.
func NewStats() *Stats {
	s := &Stats{mu: make(chan struct{}, 1)}
	s.mu <- struct{}{}
	return s
}

func (s *Stats) lock()   { <-s.mu }
func (s *Stats) unlock() { s.mu <- struct{}{} }

// Add records one pass's effect on one function.
func (s *Stats) Add(e Effect) {
	s.lock()
	defer s.unlock()
	s.effects = append(s.effects, e)
}

// Effects returns every recorded effect, sorted by instructions removed
// (descending) then by pass name, so the biggest wins surface first.
func (s *Stats) Effects() []Effect {
	s.lock()
	defer s.unlock()
	out := make([]Effect, len(s.effects))
	copy(out, s.effects)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Removed != out[j].Removed {
			return out[i].Removed > out[j].Removed
		}
		return out[i].Pass < out[j].Pass
	})
	return out
}

// Len returns the number of recorded effects.
func (s *Stats) Len() int {
	s.lock()
	defer s.unlock()
	return len(s.effects)
}

// ByPass totals Removed per pass name, descending.
func (s *Stats) ByPass() []Effect {
	s.lock()
	totals := make(map[string]int)
	for _, e := range s.effects {
		totals[e.Pass] += e.Removed
	}
	s.unlock()
	out := make([]Effect, 0, len(totals))
	for name, removed := range totals {
		out = append(out, Effect{Pass: name, Removed: removed})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Removed != out[j].Removed {
			return out[i].Removed > out[j].Removed
		}
		return out[i].Pass < out[j].Pass
	})
	return out
}
