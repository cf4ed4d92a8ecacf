package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
)

func TestApplyNeighborFilter(t *testing.T) {
	input := maskOf(
		"#......",
		".......",
		"..###..",
		"..###..",
		"..###..",
		".......",
		"......#",
	)

	tests := []struct {
		name     string
		agreeMin int
		want     []string
	}{
		{
			name:     "disabled",
			agreeMin: 0,
			want:     maskRows(input),
		},
		{
			name:     "isolated pixels removed",
			agreeMin: 1,
			want: []string{
				".......",
				".......",
				"..###..",
				"..###..",
				"..###..",
				".......",
				".......",
			},
		},
		{
			name:     "corners need four",
			agreeMin: 4,
			want: []string{
				".......",
				".......",
				"...#...",
				"..###..",
				"...#...",
				".......",
				".......",
			},
		},
		{
			name:     "only the centre has eight",
			agreeMin: 8,
			want: []string{
				".......",
				".......",
				".......",
				"...#...",
				".......",
				".......",
				".......",
			},
		},
	}

	for _, counter := range []backend.NeighborCounter{backend.NeighborConvolve, backend.NeighborShift} {
		b := backend.NewCPU(counter)
		for _, tt := range tests {
			t.Run(string(counter)+"/"+tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, maskRows(applyNeighborFilter(b, input, tt.agreeMin)))
			})
		}
	}
}

func TestApplyNeighborFilter_EdgesAreZeroPadded(t *testing.T) {
	b := backend.NewCPU(backend.NeighborShift)
	full := maskOf("###", "###", "###")

	// corners see 3 neighbors, edges 5, centre 8
	got := applyNeighborFilter(b, full, 4)

	assert.Equal(t, []string{".#.", "###", ".#."}, maskRows(got))
}
