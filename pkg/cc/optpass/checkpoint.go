package optpass

import (
	"encoding/gob"
	"os"
)

// SaveStats writes a pipeline run's recorded Effects to path, so a build
// pipeline can track optimizer effectiveness across invocations instead
// of only ever seeing the latest run.
func SaveStats(path string, s *Stats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(s.Effects())
}

// LoadStats reads Effects previously written by SaveStats into a fresh
// Stats table.
func LoadStats(path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var effects []Effect
	if err := gob.NewDecoder(f).Decode(&effects); err != nil {
		return nil, err
	}
	s := NewStats()
	for _, e := range effects {
		s.Add(e)
	}
	return s, nil
}
