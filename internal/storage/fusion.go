package storage

import (
	"sort"

	"github.com/qdrant/go-client/qdrant"
)

// rrfK dampens the weight difference between nearby ranks. 60 is the value
// from the original reciprocal rank fusion paper.
const rrfK = 60

// fuseRRF merges ranked result lists by reciprocal rank fusion: each point
// scores the sum of 1/(rank+rrfK) over the lists it appears in, rank being
// 1-based. Points appearing in several lists therefore outrank points that
// lead a single list. Ties keep first-appearance order, which makes the
// fusion deterministic.
func fuseRRF(lists ...[]*qdrant.ScoredPoint) []*qdrant.ScoredPoint {
	type candidate struct {
		point *qdrant.ScoredPoint
		score float64
		order int
	}

	byID := make(map[string]*candidate)
	var candidates []*candidate

	for _, list := range lists {
		for rank, point := range list {
			id := pointKey(point)
			c, ok := byID[id]
			if !ok {
				c = &candidate{point: point, order: len(candidates)}
				byID[id] = c
				candidates = append(candidates, c)
			}
			c.score += 1.0 / float64(rank+1+rrfK)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	out := make([]*qdrant.ScoredPoint, len(candidates))
	for i, c := range candidates {
		out[i] = c.point
	}
	return out
}

func pointKey(p *qdrant.ScoredPoint) string {
	if p.Id == nil {
		return ""
	}
	if u := p.Id.GetUuid(); u != "" {
		return u
	}
	return p.Id.String()
}
