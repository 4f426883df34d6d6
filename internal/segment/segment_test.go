// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/petrify/pkg/types"
)

func pts(timestamps ...int64) []types.Point {
	out := make([]types.Point, len(timestamps))
	for i, ts := range timestamps {
		out[i] = types.Point{X: float64(i), Y: float64(i), Timestamp: ts}
	}
	return out
}

func timestamps(runs [][]types.Point) [][]int64 {
	out := make([][]int64, len(runs))
	for i, run := range runs {
		for _, p := range run {
			out[i] = append(out[i], p.Timestamp)
		}
	}
	return out
}

func TestSegment_GapLaw(t *testing.T) {
	tests := []struct {
		name   string
		points []types.Point
		want   [][]int64
	}{
		{"gap equal to threshold splits", pts(5, 11), [][]int64{{5}, {11}}},
		{"gap one below threshold joins", pts(5, 10), [][]int64{{5, 10}}},
		{"contiguous run", pts(1, 2, 3, 4, 5), [][]int64{{1, 2, 3, 4, 5}}},
		{"single point", pts(42), [][]int64{{42}}},
		{"three clusters", pts(0, 1, 2, 10, 11, 30), [][]int64{{0, 1, 2}, {10, 11}, {30}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New().Segment(tt.points, Temporal{})
			assert.Equal(t, tt.want, timestamps(got))
		})
	}
}

func TestSegment_Empty(t *testing.T) {
	assert.Empty(t, New().Segment(nil, Temporal{}))
	assert.Empty(t, New().Segment([]types.Point{}, InkChange{}))
}

func TestSegment_SortsBeforeSplitting(t *testing.T) {
	sorted := pts(0, 1, 2, 3, 9, 10, 11, 20, 21, 40)
	want := New().Segment(sorted, nil)

	shuffled := append([]types.Point(nil), sorted...)
	r := rand.New(rand.NewPCG(1, 2))
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	got := New().Segment(shuffled, nil)
	assert.Equal(t, want, got)
	assert.Len(t, got, 4)
}

func TestSegment_StableForEqualTimestamps(t *testing.T) {
	in := []types.Point{
		{X: 3, Timestamp: 9},
		{X: 1, Timestamp: 2},
		{X: 4, Timestamp: 9},
		{X: 2, Timestamp: 2},
	}
	got := New().Segment(in, nil)
	require.Len(t, got, 2)
	assert.Equal(t, []float64{1, 2}, []float64{got[0][0].X, got[0][1].X})
	assert.Equal(t, []float64{3, 4}, []float64{got[1][0].X, got[1][1].X})
}

func TestSegment_DoesNotMutateInput(t *testing.T) {
	in := pts(9, 1, 5)
	New().Segment(in, nil)
	assert.Equal(t, int64(9), in[0].Timestamp)
}

func TestSegment_CustomAndZeroThreshold(t *testing.T) {
	in := pts(0, 3, 6)
	assert.Len(t, Segmenter{GapThreshold: 3}.Segment(in, nil), 3)
	assert.Len(t, Segmenter{}.Segment(in, nil), 1)
}

// gridSampler colors samples by their X coordinate.
type gridSampler map[int]string

func (g gridSampler) ColorAt(x, _ int) (string, uint8) {
	if c, ok := g[x]; ok {
		return c, 255
	}
	return "#ffffff", 255
}

// inked builds contiguous points whose X indexes the given colors.
func inked(start int64, xs ...int) []types.Point {
	out := make([]types.Point, len(xs))
	for i, x := range xs {
		out[i] = types.Point{X: float64(x) + 0.7, Y: 0, Timestamp: start + int64(i)}
	}
	return out
}

func xs(runs [][]types.Point) [][]int {
	out := make([][]int, len(runs))
	for i, run := range runs {
		for _, p := range run {
			out[i] = append(out[i], PixelCoord(p.X))
		}
	}
	return out
}

func TestInkChange(t *testing.T) {
	const red, blue = "#ff0000", "#0000ff"
	// x 1-2 red, 3-4 blue, anything else background.
	sampler := gridSampler{1: red, 2: red, 3: blue, 4: blue}
	policy := InkChange{Sampler: sampler}

	tests := []struct {
		name   string
		points []types.Point
		want   [][]int
	}{
		{
			name:   "color change splits without a gap",
			points: inked(0, 1, 2, 3, 4),
			want:   [][]int{{1, 2}, {3, 4}},
		},
		{
			name:   "background inherits running color",
			points: inked(0, 1, 9, 2, 1),
			want:   [][]int{{1, 9, 2, 1}},
		},
		{
			name:   "leading background joins first ink",
			points: inked(0, 9, 9, 3, 4),
			want:   [][]int{{9, 9, 3, 4}},
		},
		{
			name:   "background then new color splits",
			points: inked(0, 1, 9, 3),
			want:   [][]int{{1, 9}, {3}},
		},
		{
			name:   "all background",
			points: inked(0, 9, 8, 7),
			want:   [][]int{{9, 8, 7}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, xs(New().Segment(tt.points, policy)))
		})
	}
}

func TestInkChange_ResetsAfterGap(t *testing.T) {
	sampler := gridSampler{1: "#ff0000", 3: "#0000ff"}
	points := append(inked(0, 1, 1), inked(20, 9, 3, 3)...)

	got := New().Segment(points, InkChange{Sampler: sampler})
	assert.Equal(t, [][]int{{1, 1}, {9, 3, 3}}, xs(got))
}

func TestPixelCoord(t *testing.T) {
	assert.Equal(t, 3, PixelCoord(3.99))
	assert.Equal(t, 0, PixelCoord(0))
	assert.Equal(t, -1, PixelCoord(-0.5))
}
