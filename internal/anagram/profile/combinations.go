package profile

import "math"

// SubProfiles returns every profile obtainable from p by choosing, for each
// letter independently, a count between zero and its count in p. The empty
// profile comes first and p itself last; the first letter varies slowest.
func SubProfiles(p Profile) []Profile {
	out := []Profile{nil}
	for i := len(p) - 1; i >= 0; i-- {
		lc := p[i]
		next := make([]Profile, 0, len(out)*(lc.Count+1))
		for n := 0; n <= lc.Count; n++ {
			for _, tail := range out {
				if n == 0 {
					next = append(next, tail)
					continue
				}
				sub := make(Profile, 0, len(tail)+1)
				sub = append(sub, LetterCount{Letter: lc.Letter, Count: n})
				sub = append(sub, tail...)
				next = append(next, sub)
			}
		}
		out = next
	}
	return out
}

// CountSubProfiles returns len(SubProfiles(p)) without building them,
// saturating at math.MaxInt.
func CountSubProfiles(p Profile) int {
	total := 1
	for _, lc := range p {
		k := lc.Count + 1
		if total > math.MaxInt/k {
			return math.MaxInt
		}
		total *= k
	}
	return total
}
