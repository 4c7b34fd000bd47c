package profile

import "sort"

// Rank orders profiles for display: higher score first, then newer creation
// time, then id ascending. The final id rule makes the order a total one so
// two renders of the same snapshot can never disagree.
func Rank(profiles []Profile) []Profile {
	ranked := append([]Profile(nil), profiles...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score() != b.Score() {
			return a.Score() > b.Score()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return ranked
}
