package data

import (
	"fmt"
)

var stateQueries = map[string]string{
	"snapshot": "SELECT COUNT(*) FROM snapshot",
	"carrier":  "SELECT COUNT(*) FROM snapshot_carrier",
	"score":    "SELECT COUNT(*) FROM snapshot_score",
	"state":    "SELECT COUNT(DISTINCT state) FROM snapshot_carrier",
}

// State returns row counts for the store's tables, used by the data
// state command.
func (s *Store) State() (map[string]int64, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}

	state := make(map[string]int64, len(stateQueries))
	for k, q := range stateQueries {
		var count int64
		if err := s.db.QueryRow(q).Scan(&count); err != nil {
			return nil, fmt.Errorf("error getting %s count: %w", k, err)
		}
		state[k] = count
	}

	return state, nil
}
