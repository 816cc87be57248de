package editor

// IndexSet is external index-keyed state over the component list: the
// expanded panels, hidden components, undo markers. Every structural edit
// of the component list must be paired with the matching remap below; the
// remap is part of the mutation's contract, not an afterthought.
type IndexSet map[int]bool

// Clone returns an independent copy.
func (s IndexSet) Clone() IndexSet {
	out := make(IndexSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// RemapAfterDelete shifts the set for a deletion at index i: references to
// i are dropped, every index above i moves down by one.
func RemapAfterDelete(s IndexSet, i int) IndexSet {
	out := make(IndexSet, len(s))
	for idx := range s {
		switch {
		case idx < i:
			out[idx] = true
		case idx > i:
			out[idx-1] = true
		}
	}
	return out
}

// RemapAfterInsert shifts the set for an insertion at index i: every index
// at or above i moves up by one.
func RemapAfterInsert(s IndexSet, i int) IndexSet {
	out := make(IndexSet, len(s))
	for idx := range s {
		if idx >= i {
			out[idx+1] = true
		} else {
			out[idx] = true
		}
	}
	return out
}

// RemapAfterDuplicate shifts the set for a duplication of index i: every
// index above i moves up by one and a fresh reference appears at i+1, the
// copy's position.
func RemapAfterDuplicate(s IndexSet, i int) IndexSet {
	out := make(IndexSet, len(s))
	for idx := range s {
		if idx > i {
			out[idx+1] = true
		} else {
			out[idx] = true
		}
	}
	if s[i] {
		out[i+1] = true
	}
	return out
}

// RemapAfterMove applies the rotation a reorder from index `from` to index
// `to` induces on the affected half-open range; indices outside the range
// are untouched.
func RemapAfterMove(s IndexSet, from, to int) IndexSet {
	out := make(IndexSet, len(s))
	for idx := range s {
		out[remapIndexAfterMove(idx, from, to)] = true
	}
	return out
}

func remapIndexAfterMove(idx, from, to int) int {
	switch {
	case idx == from:
		return to
	case from < to && idx > from && idx <= to:
		return idx - 1
	case to < from && idx >= to && idx < from:
		return idx + 1
	default:
		return idx
	}
}

// RemapIndexAfterDelete remaps a single index (selection) for a deletion
// at i. The second return is false when the reference was dropped.
func RemapIndexAfterDelete(idx, i int) (int, bool) {
	switch {
	case idx == i:
		return -1, false
	case idx > i:
		return idx - 1, true
	default:
		return idx, true
	}
}

// RemapIndexAfterInsert remaps a single index for an insertion at i.
func RemapIndexAfterInsert(idx, i int) int {
	if idx >= i {
		return idx + 1
	}
	return idx
}
