package recommender

import (
	"sort"

	"github.com/echo-systems/echo/internal/catalog"
)

// Pairwise similarity weights. Tag overlap carries most of the signal; a
// dependency-closure link is a strong but secondary hint. Importance of the
// matched installed package can lift the final relevance by up to 20%.
const (
	simTagWeight      = 0.7
	simDepWeight      = 0.3
	simImportanceLift = 0.2
	simScoreEpsilon   = 1e-9
)

// depIndex maps normalized package name to its normalized dependency names.
// References to unknown packages are kept as-is: dependencies are weak
// name references and need no package record to participate in closures.
type depIndex map[string][]string

func buildDepIndex(groups ...[]*catalog.Package) depIndex {
	idx := make(depIndex)
	for _, group := range groups {
		for _, pkg := range group {
			name := catalog.NormalizeName(pkg.Name)
			if name == "" {
				continue
			}
			for _, dep := range pkg.Dependencies {
				if d := catalog.NormalizeName(dep); d != "" {
					idx[name] = append(idx[name], d)
				}
			}
		}
	}
	return idx
}

// closureContains reports whether target is reachable from start through the
// dependency graph.
func (idx depIndex) closureContains(start, target string) bool {
	if start == target {
		return false
	}
	seen := map[string]bool{start: true}
	frontier := []string{start}
	for len(frontier) > 0 {
		next := frontier[:0:0]
		for _, name := range frontier {
			for _, dep := range idx[name] {
				if dep == target {
					return true
				}
				if !seen[dep] {
					seen[dep] = true
					next = append(next, dep)
				}
			}
		}
		frontier = next
	}
	return false
}

// PairSimilarity computes the symmetric similarity between two packages:
// Jaccard overlap of their tag sets, boosted when either package appears in
// the other's dependency closure. The result is in [0,1] and
// PairSimilarity(a, b, idx) == PairSimilarity(b, a, idx) always holds.
func PairSimilarity(a, b *catalog.Package, idx depIndex) float64 {
	an := catalog.NormalizeName(a.Name)
	bn := catalog.NormalizeName(b.Name)
	if an == "" || bn == "" || an == bn {
		return 0
	}

	score := simTagWeight * tagJaccard(a.Tags, b.Tags)

	if idx.closureContains(an, bn) || idx.closureContains(bn, an) {
		score += simDepWeight
	}

	return clamp01(score)
}

// tagJaccard computes |A ∩ B| / |A ∪ B| over normalized tag sets.
func tagJaccard(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		if n := catalog.NormalizeName(t); n != "" {
			setA[n] = true
		}
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		if n := catalog.NormalizeName(t); n != "" {
			setB[n] = true
		}
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// FindSimilar scores every candidate in pool that is not already installed
// against the installed set and returns up to topN candidates in descending
// score order (ties broken alphabetically). A candidate's score is the
// maximum over installed packages, not the sum, so generic packages that
// loosely resemble many things are not over-rewarded. Matches against
// highly-important installed packages are lifted proportionally to their
// importance. Zero-score candidates are excluded. An empty pool yields an
// empty result, not an error.
func FindSimilar(installed, pool []*catalog.Package, importance map[string]float64, topN int) []SimilarityCandidate {
	if len(pool) == 0 || len(installed) == 0 {
		return nil
	}

	idx := buildDepIndex(installed, pool)

	installedSet := make(map[string]bool, len(installed))
	for _, pkg := range installed {
		installedSet[catalog.NormalizeName(pkg.Name)] = true
	}

	var candidates []SimilarityCandidate
	seen := make(map[string]bool, len(pool))

	for _, cand := range pool {
		name := catalog.NormalizeName(cand.Name)
		if name == "" || installedSet[name] || seen[name] {
			continue
		}
		seen[name] = true

		best := 0.0
		var matched []string
		for _, inst := range installed {
			rel := PairSimilarity(cand, inst, idx)
			if rel <= 0 {
				continue
			}
			rel = clamp01(rel * (1 + simImportanceLift*importance[catalog.NormalizeName(inst.Name)]))

			switch {
			case rel > best+simScoreEpsilon:
				best = rel
				matched = []string{inst.Name}
			case rel > best-simScoreEpsilon:
				matched = append(matched, inst.Name)
			}
		}

		if best <= 0 {
			continue
		}
		sort.Strings(matched)
		candidates = append(candidates, SimilarityCandidate{
			Name:        cand.Name,
			Score:       best,
			MatchedWith: matched,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return catalog.NormalizeName(candidates[i].Name) < catalog.NormalizeName(candidates[j].Name)
	})

	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}
