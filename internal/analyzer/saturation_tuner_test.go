package analyzer

import (
	"math"
	"testing"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
)

func TestTuneMinSaturation(t *testing.T) {
	tuned := plainOptions()
	tuned.AutoTuneMinSaturation = true

	// 100 present pixels with saturation 0.00, 0.01, ..., 0.99
	ramp := createChannelSet(10, 10, func(x, y int) testPixel {
		return testPixel{sat: float64(y*10+x) / 100, val: 1, alpha: 255}
	})

	tests := []struct {
		name   string
		size   int
		at     func(x, y int) testPixel
		mutate func(o *Options)
		want   float64
	}{
		{
			name:   "disabled keeps configured value",
			size:   10,
			at:     uniform(testPixel{sat: 0.01, val: 1, alpha: 255}),
			mutate: func(o *Options) { o.AutoTuneMinSaturation = false },
			want:   0.25,
		},
		{
			name: "too few samples",
			size: 7,
			at:   uniform(testPixel{sat: 0.01, val: 1, alpha: 255}),
			want: 0.25,
		},
		{
			name: "floored",
			size: 10,
			at:   uniform(testPixel{sat: 0.01, val: 1, alpha: 255}),
			want: 0.08,
		},
		{
			name: "capped at configured value",
			size: 10,
			at:   uniform(testPixel{sat: 1, val: 1, alpha: 255}),
			want: 0.25,
		},
		{
			name: "transparent and dark pixels ignored",
			size: 10,
			at:   func(x, y int) testPixel {
				if x < 5 {
					return testPixel{sat: 0.01, val: 1, alpha: 0}
				}
				return testPixel{sat: 0.01, val: 0.01, alpha: 255}
			},
			want: 0.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tuned
			if tt.mutate != nil {
				tt.mutate(&opts)
			}
			cs := createChannelSet(tt.size, tt.size, tt.at)
			got := tuneMinSaturation(backend.NewCPU(backend.NeighborConvolve), cs.Saturation, cs.Value, cs.Alpha, opts)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("percentile of ramp", func(t *testing.T) {
		got := tuneMinSaturation(backend.NewCPU(backend.NeighborConvolve), ramp.Saturation, ramp.Value, ramp.Alpha, tuned)
		// p20 of the ramp is 0.198
		if want := 0.198 * 0.95; math.Abs(got-want) > 1e-12 {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("percentile clamped to 0.05", func(t *testing.T) {
		opts := tuned
		opts.AutoTuneSPercentile = 0
		opts.AutoTuneSMinFloor = 0
		got := tuneMinSaturation(backend.NewCPU(backend.NeighborConvolve), ramp.Saturation, ramp.Value, ramp.Alpha, opts)
		if want := 0.0495 * 0.95; math.Abs(got-want) > 1e-12 {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})
}
