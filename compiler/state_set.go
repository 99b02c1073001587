package compiler

import (
	"sort"
	"strconv"
	"strings"
)

// stateSet is a sorted set of NFA states without duplicates. Two sets that
// hold the same states always have the same key.
type stateSet []stateID

func newStateSet(ids ...stateID) stateSet {
	if len(ids) == 0 {
		return stateSet{}
	}
	sorted := make([]stateID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	s := sorted[:1]
	for _, id := range sorted[1:] {
		if id != s[len(s)-1] {
			s = append(s, id)
		}
	}
	return stateSet(s)
}

func (s stateSet) has(id stateID) bool {
	i := sort.Search(len(s), func(i int) bool {
		return s[i] >= id
	})
	return i < len(s) && s[i] == id
}

func (s stateSet) equal(t stateSet) bool {
	if len(s) != len(t) {
		return false
	}
	for i := range s {
		if s[i] != t[i] {
			return false
		}
	}
	return true
}

func (s stateSet) key() string {
	if len(s) <= 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(s[0])))
	for _, id := range s[1:] {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(id)))
	}
	return b.String()
}

// closure returns the epsilon-closure of s: s plus every state reachable
// from it through epsilon transitions alone. The states are visited breadth
// first until no new state turns up. Closing a closed set yields an equal
// set.
func (n *NFA) closure(s stateSet) stateSet {
	seen := make(map[stateID]struct{}, len(s))
	queue := make([]stateID, 0, len(s))
	for _, id := range s {
		seen[id] = struct{}{}
		queue = append(queue, id)
	}
	closed := append([]stateID{}, s...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, to := range n.states.get(id).eps {
			if _, ok := seen[to]; ok {
				continue
			}
			seen[to] = struct{}{}
			closed = append(closed, to)
			queue = append(queue, to)
		}
	}
	return newStateSet(closed...)
}

// deriveLabel concatenates the labels of the member states.
func (n *NFA) deriveLabel(s stateSet) string {
	var b strings.Builder
	for _, id := range s {
		b.WriteString(n.states.get(id).label)
	}
	return b.String()
}

// deriveLabelList lists the labels of the member states separated by
// commas.
func (n *NFA) deriveLabelList(s stateSet) string {
	var b strings.Builder
	for i, id := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(n.states.get(id).label)
	}
	return b.String()
}
