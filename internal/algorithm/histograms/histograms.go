// Package histograms implements grey-level histogram transforms. A histogram is
// a slice of non-negative counts indexed by intensity level.
//
// Every transform moves counts between levels; none creates or destroys them, so
// the total of the output always equals the total of the input.
package histograms

import (
	"errors"
	"fmt"
	"math"

	"github.com/seantiz/algolab/internal/algorithm/args"
	"github.com/seantiz/algolab/internal/registry"
)

var (
	// ErrEmptyHistogram is returned for a histogram with no levels.
	ErrEmptyHistogram = errors.New("histograms: empty histogram")

	// ErrNegativeCount is returned when a level holds a negative count.
	ErrNegativeCount = errors.New("histograms: negative count")

	// ErrBadRange is returned when a target range is empty or negative.
	ErrBadRange = errors.New("histograms: invalid target range")

	// ErrNoMass is returned when an operation needs at least one counted sample.
	ErrNoMass = errors.New("histograms: histogram has no samples")
)

// Table returns the "histograms" category.
func Table() registry.Category {
	return registry.Category{
		"expand":          args.Fn3(Expand),
		"equalize":        args.Fn2(Equalize),
		"equalizationMap": args.Fn2(EqualizationMap),
		"cumulative":      args.Fn1(Cumulative),
		"normalize":       args.Fn1(Normalize),
	}
}

func validate(hist []int) error {
	if len(hist) == 0 {
		return ErrEmptyHistogram
	}
	for i, c := range hist {
		if c < 0 {
			return fmt.Errorf("%w at level %d", ErrNegativeCount, i)
		}
	}
	return nil
}

// occupied returns the first and last levels holding a non-zero count, or
// ok=false when every level is empty.
func occupied(hist []int) (lo, hi int, ok bool) {
	lo, hi = -1, -1
	for i, c := range hist {
		if c == 0 {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i
	}
	return lo, hi, lo >= 0
}

// Expand stretches the occupied level range of hist linearly onto
// [newMin, newMax]. The result has newMax-newMin+1 levels; result[0] is the
// count at level newMin.
func Expand(hist []int, newMin, newMax int) ([]int, error) {
	if err := validate(hist); err != nil {
		return nil, err
	}
	if newMin < 0 || newMax < newMin {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrBadRange, newMin, newMax)
	}

	out := make([]int, newMax-newMin+1)
	lo, hi, ok := occupied(hist)
	if !ok {
		return out, nil
	}
	if lo == hi {
		out[0] = hist[lo]
		return out, nil
	}

	span := float64(newMax - newMin)
	for i := lo; i <= hi; i++ {
		if hist[i] == 0 {
			continue
		}
		target := int(math.Round(float64(i-lo) * span / float64(hi-lo)))
		out[target] += hist[i]
	}
	return out, nil
}

// EqualizationMap returns, for every input level, the level it is mapped to by
// histogram equalisation onto `levels` output levels.
func EqualizationMap(hist []int, levels int) ([]int, error) {
	if err := validate(hist); err != nil {
		return nil, err
	}
	if levels < 1 {
		return nil, fmt.Errorf("%w: %d levels", ErrBadRange, levels)
	}

	cdf, _ := Cumulative(hist)
	total := cdf[len(cdf)-1]
	if total == 0 {
		return nil, ErrNoMass
	}

	cdfMin := 0
	for _, c := range cdf {
		if c > 0 {
			cdfMin = c
			break
		}
	}

	mapping := make([]int, len(hist))
	denom := float64(total - cdfMin)
	for i, c := range cdf {
		if denom == 0 || c < cdfMin {
			continue
		}
		mapping[i] = int(math.Round(float64(c-cdfMin) / denom * float64(levels-1)))
	}
	return mapping, nil
}

// Equalize redistributes hist across `levels` output levels so that the
// cumulative distribution becomes approximately linear.
func Equalize(hist []int, levels int) ([]int, error) {
	mapping, err := EqualizationMap(hist, levels)
	if err != nil {
		return nil, err
	}
	out := make([]int, levels)
	for i, c := range hist {
		out[mapping[i]] += c
	}
	return out, nil
}

// Cumulative returns the running totals of hist.
func Cumulative(hist []int) ([]int, error) {
	if err := validate(hist); err != nil {
		return nil, err
	}
	out := make([]int, len(hist))
	running := 0
	for i, c := range hist {
		running += c
		out[i] = running
	}
	return out, nil
}

// Normalize returns each level's share of the total count.
func Normalize(hist []int) ([]float64, error) {
	cdf, err := Cumulative(hist)
	if err != nil {
		return nil, err
	}
	total := cdf[len(cdf)-1]
	if total == 0 {
		return nil, ErrNoMass
	}
	out := make([]float64, len(hist))
	for i, c := range hist {
		out[i] = float64(c) / float64(total)
	}
	return out, nil
}
