package enumerate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records which ids were probed and answers from a fixed set.
type fakeStore struct {
	existing map[int64]bool
	probed   []int64
	err      error
}

func (f *fakeStore) Exists(_ context.Context, oclcID int64) (bool, error) {
	f.probed = append(f.probed, oclcID)
	if f.err != nil {
		return false, f.err
	}
	return f.existing[oclcID], nil
}

func collect(t *testing.T, e *Enumerator) []int64 {
	t.Helper()

	var ids []int64
	err := e.ForEach(context.Background(), func(id int64) error {
		ids = append(ids, id)
		return nil
	})
	require.NoError(t, err)
	return ids
}

func TestForEach(t *testing.T) {
	testCases := []struct {
		name     string
		e        Enumerator
		existing map[int64]bool
		expected []int64
	}{
		{
			name:     "plain bounded range",
			e:        Enumerator{Start: 1, End: 5},
			expected: []int64{1, 2, 3, 4},
		},
		{
			name:     "empty bound yields nothing",
			e:        Enumerator{Start: 5, End: 5},
			expected: nil,
		},
		{
			name:     "start past end yields nothing",
			e:        Enumerator{Start: 9, End: 5},
			expected: nil,
		},
		{
			name: "exclude ranges are skipped",
			e: Enumerator{
				Start:   1,
				End:     11,
				Exclude: []Range{{Start: 2, End: 4}, {Start: 7, End: 7}},
			},
			expected: []int64{1, 5, 6, 8, 9, 10},
		},
		{
			name:     "existing ids skipped when enabled",
			e:        Enumerator{Start: 1, End: 6, SkipExisting: true},
			existing: map[int64]bool{2: true, 4: true},
			expected: []int64{1, 3, 5},
		},
		{
			name:     "existing ids kept when disabled",
			e:        Enumerator{Start: 1, End: 6},
			existing: map[int64]bool{2: true, 4: true},
			expected: []int64{1, 2, 3, 4, 5},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.e.Store = &fakeStore{existing: tc.existing}
			assert.Equal(t, tc.expected, collect(t, &tc.e))
		})
	}
}

func TestExcludedIDsAreNeverProbed(t *testing.T) {
	store := &fakeStore{}
	e := &Enumerator{
		Start:        1,
		End:          6,
		SkipExisting: true,
		Exclude:      []Range{{Start: 2, End: 3}},
		Store:        store,
	}

	collect(t, e)
	assert.Equal(t, []int64{1, 4, 5}, store.probed)
}

func TestForEachStopsOnCallbackError(t *testing.T) {
	e := &Enumerator{Start: 1, End: 100, Store: &fakeStore{}}
	boom := errors.New("boom")

	var seen []int64
	err := e.ForEach(context.Background(), func(id int64) error {
		seen = append(seen, id)
		if id == 3 {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int64{1, 2, 3}, seen)
}

func TestForEachUnboundedStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Enumerator{Start: 1, Store: &fakeStore{}} // End 0 = unbounded

	var seen []int64
	err := e.ForEach(ctx, func(id int64) error {
		seen = append(seen, id)
		if id == 50 {
			cancel()
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, seen, 50)
}

func TestForEachPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("db locked")
	e := &Enumerator{Start: 1, End: 10, SkipExisting: true, Store: &fakeStore{err: storeErr}}

	err := e.ForEach(context.Background(), func(int64) error { return nil })
	assert.ErrorIs(t, err, storeErr)
}

func TestParseRanges(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []Range
		wantErr  bool
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "empty array",
			input:    "[]",
			expected: []Range{},
		},
		{
			name:     "two ranges",
			input:    "[[1,10],[500,600]]",
			expected: []Range{{Start: 1, End: 10}, {Start: 500, End: 600}},
		},
		{
			name:    "not a pair",
			input:   "[[1,2,3]]",
			wantErr: true,
		},
		{
			name:    "inverted range",
			input:   "[[10,1]]",
			wantErr: true,
		},
		{
			name:    "malformed json",
			input:   "[[1,",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ranges, err := ParseRanges(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ranges)
		})
	}
}

func TestLoadRangesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.yaml")
	content := "- [225, 229]\n- [1000, 2000]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	ranges, err := LoadRangesFile(path)
	require.NoError(t, err)
	assert.Equal(t, []Range{{Start: 225, End: 229}, {Start: 1000, End: 2000}}, ranges)
}

func TestLoadRangesFileMissing(t *testing.T) {
	_, err := LoadRangesFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
