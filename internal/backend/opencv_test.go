//go:build opencv

package backend

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCVNeighborSum_MatchesCPU(t *testing.T) {
	ocv, err := NewOpenCV()
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(11))
	m := NewMask(19, 27)
	for i := range m.Bits {
		m.Bits[i] = rng.Intn(2) == 0
	}

	want := NewCPU(NeighborConvolve).NeighborSum(m)
	got := ocv.NeighborSum(m)

	assert.Equal(t, denseValues(want), denseValues(got))
	assert.Equal(t, "opencv", ocv.Name())
}
