package driver

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const R = Reject

// abcStar is the table of `A B C*` with A=0, B=1 and C=2.
func abcStar(t *testing.T) *DFA {
	t.Helper()
	dfa, err := NewDFA("main", [][]int{
		{1, R, R},
		{R, 2, R},
		{R, R, 3},
		{R, R, 3},
	}, []int{2, 3}, []string{"START", "BC", "DEFH", "FGH"})
	require.NoError(t, err)
	return dfa
}

func TestNewDFA(t *testing.T) {
	tests := []struct {
		caption   string
		table     [][]int
		accepting []int
		labels    []string
		err       bool
	}{
		{
			caption: "no rows",
			table:   [][]int{},
			err:     true,
		},
		{
			caption: "ragged rows",
			table:   [][]int{{0, R}, {R}},
			err:     true,
		},
		{
			caption: "target out of range",
			table:   [][]int{{1}},
			err:     true,
		},
		{
			caption: "negative target",
			table:   [][]int{{-1}},
			err:     true,
		},
		{
			caption:   "accept state out of range",
			table:     [][]int{{R}},
			accepting: []int{1},
			err:       true,
		},
		{
			caption: "label count mismatch",
			table:   [][]int{{R}},
			labels:  []string{"a", "b"},
			err:     true,
		},
		{
			caption:   "single accept state without columns",
			table:     [][]int{{}},
			accepting: []int{0},
		},
		{
			caption:   "duplicate accept states",
			table:     [][]int{{0}},
			accepting: []int{0, 0},
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			dfa, err := NewDFA("main", tt.table, tt.accepting, tt.labels)
			if tt.err {
				assert.Error(t, err)
				assert.Nil(t, dfa)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []int{0}, dfa.AcceptStates())
			assert.True(t, dfa.Matches(nil))
		})
	}
}

func TestDFA_Matches(t *testing.T) {
	dfa := abcStar(t)
	tests := []struct {
		seq    []int
		accept bool
	}{
		{seq: []int{0, 1}, accept: true},
		{seq: []int{0, 1, 2, 2, 2}, accept: true},
		{seq: []int{0}, accept: false},
		{seq: []int{1, 0}, accept: false},
		{seq: []int{}, accept: false},
		{seq: []int{0, 1, 3}, accept: false},
		{seq: []int{0, 1, 1000}, accept: false},
		{seq: []int{-5}, accept: false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.seq), func(t *testing.T) {
			assert.Equal(t, tt.accept, dfa.Matches(tt.seq))
			assert.Equal(t, tt.accept, dfa.Parse(tt.seq...))
		})
	}
}

func TestDFA_Step(t *testing.T) {
	dfa := abcStar(t)
	assert.Equal(t, 0, dfa.Start())
	assert.Equal(t, 1, dfa.Step(0, 0))
	assert.Equal(t, Reject, dfa.Step(0, 1))
	assert.Equal(t, Reject, dfa.Step(0, 3))
	assert.Equal(t, Reject, dfa.Step(0, -1))
	assert.Equal(t, Reject, dfa.Step(Reject, 0))
	assert.Equal(t, Reject, dfa.Step(4, 0))
	assert.False(t, dfa.IsAccept(Reject))
	assert.False(t, dfa.IsAccept(1))
	assert.True(t, dfa.IsAccept(3))
}

func TestDFA_Trace(t *testing.T) {
	dfa := abcStar(t)

	states, ok := dfa.Trace([]int{0, 1, 2})
	assert.True(t, ok)
	assert.Equal(t, []int{0, 1, 2, 3}, states)

	states, ok = dfa.Trace([]int{0, 2, 2, 2})
	assert.False(t, ok)
	assert.Equal(t, []int{0, 1, Reject}, states)

	states, ok = dfa.Trace(nil)
	assert.False(t, ok)
	assert.Equal(t, []int{0}, states)
}

func TestDFA_LongestPrefix(t *testing.T) {
	dfa := abcStar(t)
	tests := []struct {
		seq     []int
		longest int
	}{
		{seq: []int{0, 1, 2, 2, 0, 1}, longest: 4},
		{seq: []int{0, 1}, longest: 2},
		{seq: []int{0, 1, 1}, longest: 2},
		{seq: []int{0}, longest: -1},
		{seq: nil, longest: -1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.seq), func(t *testing.T) {
			assert.Equal(t, tt.longest, dfa.LongestPrefix(tt.seq))
		})
	}

	star, err := NewDFA("star", [][]int{{0}}, []int{0}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, star.LongestPrefix([]int{1}))
}

func TestDFA_DumpTable(t *testing.T) {
	dfa := abcStar(t)
	assert.Equal(t, "01 -- -- \n-- 02 -- \n-- -- 03 \n-- -- 03 \n", dfa.DumpTable())

	big := make([][]int, 12)
	for i := range big {
		big[i] = []int{(i + 1) % 12}
	}
	dfa, err := NewDFA("ring", big, nil, nil)
	require.NoError(t, err)
	lines := strings.Split(dfa.DumpTable(), "\n")
	assert.Equal(t, "10 ", lines[9])
	assert.Equal(t, "00 ", lines[11])
	assert.Equal(t, "11", dfa.Labels()[11])
}

func TestDFA_RenderTable(t *testing.T) {
	out := abcStar(t).RenderTable()
	assert.Contains(t, out, "state")
	assert.Contains(t, out, "*2 DEFH")
	assert.Contains(t, out, "*3 FGH")
	assert.Contains(t, out, "0 START")
	assert.NotContains(t, out, "*0 START")
}

func TestDFA_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(abcStar(t))
	require.NoError(t, err)

	var tab transitionTable
	require.NoError(t, json.Unmarshal(data, &tab))
	assert.Equal(t, "main", tab.NT)
	assert.Equal(t, 0, tab.InitialState)
	assert.Equal(t, []int{2, 3}, tab.AcceptingStates)
	assert.Equal(t, 4, tab.RowCount)
	assert.Equal(t, 3, tab.ColCount)
	assert.Equal(t, []int{R, 2, R}, tab.Transition[1])
}

func TestDFA_ConcurrentMatching(t *testing.T) {
	dfa := abcStar(t)
	var wg sync.WaitGroup
	failures := make([]int, 16)
	for g := range failures {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for n := 0; n < 1000; n++ {
				seq := []int{0, 1}
				for i := 0; i < (n+g)%7; i++ {
					seq = append(seq, 2)
				}
				if !dfa.Matches(seq) {
					failures[g]++
				}
				if dfa.Matches(append(seq, 0)) {
					failures[g]++
				}
			}
		}(g)
	}
	wg.Wait()
	for g, n := range failures {
		assert.Zero(t, n, "goroutine %v", g)
	}
}
