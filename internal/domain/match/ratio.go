// Package match implements the fuzzy string similarity primitives the
// resolver and retriever are calibrated against. The acceptance thresholds
// below were tuned against real query logs together with these exact
// algorithms; changing either side independently silently shifts precision,
// so both live in this one package.
package match

import (
	"sort"
	"strings"

	"github.com/mediclic/vademecum-ai/internal/domain/text"
)

const (
	// EntityAcceptRatio is the minimum similarity for accepting a loose
	// drug-name guess from free text.
	EntityAcceptRatio = 0.80

	// KeywordAcceptRatio is the minimum similarity for matching section
	// keywords and grouping near-duplicate names.
	KeywordAcceptRatio = 0.84

	// LongTextAcceptRatio is the minimum similarity for recognising a
	// vocabulary name inside long passages, where accidental overlap is
	// cheap and the bar must be high.
	LongTextAcceptRatio = 0.92
)

// Ratio returns the similarity of a and b in [0, 1], computed as
// 2*M/(len(a)+len(b)) where M is the total length of the longest matching
// blocks. Two empty strings are fully similar. Comparison is rune-based so
// multibyte characters count once.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	m := matchingSize(ra, rb)
	return 2.0 * float64(m) / float64(total)
}

type span struct{ alo, ahi, blo, bhi int }

// matchingSize sums the sizes of all matching blocks found by repeatedly
// locating the longest common substring and recursing on both sides.
func matchingSize(a, b []rune) int {
	size := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		size += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return size
}

// longestMatch finds the longest block of equal runes in a[alo:ahi] and
// b[blo:bhi], preferring the earliest occurrence in a, then in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	b2j := make(map[rune][]int, bhi-blo)
	for j := blo; j < bhi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}

// TokenSetRatio compares a and b as normalized token sets, making the result
// insensitive to word order and to tokens the two strings share. Useful for
// scoring "paracetamol 500 mg comprimidos" against a query that mentions
// only "paracetamol".
func TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}

	var inter, diffA, diffB []string
	for tok := range ta {
		if tb[tok] {
			inter = append(inter, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for tok := range tb {
		if !ta[tok] {
			diffB = append(diffB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(diffA)
	sort.Strings(diffB)

	base := strings.Join(inter, " ")
	withA := joinNonEmpty(base, strings.Join(diffA, " "))
	withB := joinNonEmpty(base, strings.Join(diffB, " "))

	best := Ratio(base, withA)
	if r := Ratio(base, withB); r > best {
		best = r
	}
	if r := Ratio(withA, withB); r > best {
		best = r
	}
	return best
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range text.Tokens(s) {
		set[tok] = true
	}
	return set
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

// BestWindowRatio slides a window of as many tokens as name has across the
// text and returns the best Ratio between name and any window. It is how the
// engine recognises a vocabulary entry inside long passages without paying
// for a full alignment of the whole text.
func BestWindowRatio(s, name string) float64 {
	nameTokens := text.Tokens(name)
	if len(nameTokens) == 0 {
		return 0
	}
	target := strings.Join(nameTokens, " ")

	tokens := text.Tokens(s)
	if len(tokens) < len(nameTokens) {
		return Ratio(strings.Join(tokens, " "), target)
	}

	best := 0.0
	for i := 0; i+len(nameTokens) <= len(tokens); i++ {
		window := strings.Join(tokens[i:i+len(nameTokens)], " ")
		if r := Ratio(window, target); r > best {
			best = r
			if best == 1.0 {
				break
			}
		}
	}
	return best
}
