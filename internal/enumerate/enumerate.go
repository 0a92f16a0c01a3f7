// Package enumerate produces the ordered stream of OCLC identifiers a
// harvest run should fetch. There is no separate checkpoint file: the
// record store is consulted per candidate, so re-running the same bounds
// resumes past everything already harvested.
package enumerate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Range is a closed interval [Start, End] of identifiers to skip without
// any store lookup. Immutable for the duration of a run.
type Range struct {
	Start int64
	End   int64
}

// Contains reports whether id falls inside the range.
func (r Range) Contains(id int64) bool {
	return r.Start <= id && id <= r.End
}

// ExistsChecker is the single store capability the enumerator needs.
type ExistsChecker interface {
	Exists(ctx context.Context, oclcID int64) (bool, error)
}

// Enumerator yields candidate identifiers in strictly increasing order,
// applying the exclude ranges first and the store existence check second.
type Enumerator struct {
	Start        int64
	End          int64 // exclusive; 0 means unbounded
	SkipExisting bool
	Exclude      []Range
	Store        ExistsChecker
}

// ForEach calls fn for every candidate identifier until the bound is
// reached, fn returns an error, or ctx is cancelled. Excluded ids never
// reach the store lookup.
func (e *Enumerator) ForEach(ctx context.Context, fn func(id int64) error) error {
	for id := e.Start; e.End == 0 || id < e.End; id++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if e.excluded(id) {
			continue
		}

		if e.SkipExisting {
			exists, err := e.Store.Exists(ctx, id)
			if err != nil {
				return fmt.Errorf("existence check for %d: %w", id, err)
			}
			if exists {
				continue
			}
		}

		if err := fn(id); err != nil {
			return err
		}
	}
	return nil
}

func (e *Enumerator) excluded(id int64) bool {
	for _, r := range e.Exclude {
		if r.Contains(id) {
			return true
		}
	}
	return false
}

// ParseRanges parses the inline flag form of exclude ranges, a JSON array
// of [start, end] pairs, e.g. "[[1,10],[500,600]]".
func ParseRanges(s string) ([]Range, error) {
	if s == "" {
		return nil, nil
	}

	var pairs [][]int64
	if err := json.Unmarshal([]byte(s), &pairs); err != nil {
		return nil, fmt.Errorf("invalid exclude ranges %q: %w", s, err)
	}
	return rangesFromPairs(pairs)
}

// LoadRangesFile reads exclude ranges from a YAML file holding a list of
// [start, end] pairs.
func LoadRangesFile(path string) ([]Range, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exclude file: %w", err)
	}

	var pairs [][]int64
	if err := yaml.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("invalid exclude file %s: %w", path, err)
	}
	return rangesFromPairs(pairs)
}

func rangesFromPairs(pairs [][]int64) ([]Range, error) {
	ranges := make([]Range, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("exclude range must be a [start, end] pair, got %v", pair)
		}
		if pair[0] > pair[1] {
			return nil, fmt.Errorf("exclude range start %d after end %d", pair[0], pair[1])
		}
		ranges = append(ranges, Range{Start: pair[0], End: pair[1]})
	}
	return ranges, nil
}
