package analyzer

import "github.com/anime-shed/heatmap-inspector-go/internal/backend"

// applyNeighborFilter drops set pixels with fewer than agreeMin set
// neighbors in their 8-neighborhood. Out-of-bounds neighbors count as unset.
func applyNeighborFilter(b backend.Backend, m *backend.Mask, agreeMin int) *backend.Mask {
	if agreeMin <= 0 {
		return m
	}
	sums := b.NeighborSum(m)
	return b.And(m, b.Compare(sums, backend.GreaterEqual, float64(agreeMin)))
}
