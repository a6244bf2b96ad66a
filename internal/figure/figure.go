// Package figure turns filtered survey tables into Plotly figures.
package figure

import (
	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	"github.com/MetalBlueberry/go-plotly/pkg/types"
)

// Figure is a Plotly figure: a list of traces and a layout.
type Figure = grob.Fig

// margin builds a layout margin in pixels. Zero sides are emitted as 0.
func margin(t, r, b, l float64) *grob.LayoutMargin {
	return &grob.LayoutMargin{T: types.N(t), R: types.N(r), B: types.N(b), L: types.N(l)}
}

// solid is a single marker colour.
func solid(c string) *types.ArrayOK[*types.ColorWithColorScale] {
	return types.ArrayOKValue(types.UseColor(types.C(c)))
}

// colorScale spreads colours evenly over [0, 1].
func colorScale(colors []string) *types.ColorScale {
	if len(colors) == 1 {
		colors = []string{colors[0], colors[0]}
	}
	cs := &types.ColorScale{Values: make([]types.ColorScaleReference, len(colors))}
	for i, c := range colors {
		cs.Values[i] = types.ColorScaleReference{
			NormalizedValue: float64(i) / float64(len(colors)-1),
			Color:           types.C(c),
		}
	}
	return cs
}
