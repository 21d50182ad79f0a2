package textutil

import (
	"golang.org/x/text/cases"
)

// autoJunkMinLength is the sequence length from which very frequent runes of
// the second sequence stop seeding matches.
const autoJunkMinLength = 200

// Fold returns the Unicode case-folded form of s. A Caser carries state, so
// each call builds its own.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Ratio returns 2*M/T where T is the combined rune length of a and b and M is
// the number of runes covered by their matching blocks. Matching blocks are
// found by taking the longest common run and recursing on both sides of it.
// Two empty strings are identical and score 1.
func Ratio(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1
	}
	m := newMatcher(ar, br)
	return 2 * float64(m.matchedRunes()) / float64(total)
}

type match struct {
	i, j, size int
}

type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	if n := len(b); n >= autoJunkMinLength {
		limit := n/100 + 1
		for r, idxs := range b2j {
			if len(idxs) > limit {
				delete(b2j, r)
			}
		}
	}
	return &matcher{a: a, b: b, b2j: b2j}
}

// longestMatch finds the longest block a[i:i+size] == b[j:j+size] inside the
// given bounds, preferring the earliest i and then the earliest j.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) match {
	best := match{i: alo, j: blo}
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > best.size {
				best = match{i: i - k + 1, j: j - k + 1, size: k}
			}
		}
		j2len = next
	}

	// Runes dropped from b2j as too frequent can still extend a block.
	for best.i > alo && best.j > blo && m.a[best.i-1] == m.b[best.j-1] {
		best.i--
		best.j--
		best.size++
	}
	for best.i+best.size < ahi && best.j+best.size < bhi && m.a[best.i+best.size] == m.b[best.j+best.size] {
		best.size++
	}
	return best
}

func (m *matcher) matchedRunes() int {
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	matched := 0
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		found := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if found.size == 0 {
			continue
		}
		matched += found.size
		if s.alo < found.i && s.blo < found.j {
			queue = append(queue, span{s.alo, found.i, s.blo, found.j})
		}
		if found.i+found.size < s.ahi && found.j+found.size < s.bhi {
			queue = append(queue, span{found.i + found.size, s.ahi, found.j + found.size, s.bhi})
		}
	}
	return matched
}
