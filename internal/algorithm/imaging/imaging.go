// Package imaging implements spatial filters over greyscale images represented
// as row-major [][]float64 matrices. Pixels outside the image are clamped to the
// nearest edge pixel.
package imaging

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/seantiz/algolab/internal/algorithm/args"
	"github.com/seantiz/algolab/internal/registry"
)

var (
	// ErrEmptyImage is returned for an image with no pixels.
	ErrEmptyImage = errors.New("imaging: empty image")

	// ErrRagged is returned when image rows differ in length.
	ErrRagged = errors.New("imaging: rows have different lengths")

	// ErrBadKernel is returned for a kernel that is not an odd square.
	ErrBadKernel = errors.New("imaging: kernel must be an odd square matrix")

	// ErrBadWindow is returned for a non-positive or even window size.
	ErrBadWindow = errors.New("imaging: window size must be a positive odd number")
)

var (
	sharpenKernel = [][]float64{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}
	sobelX = [][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// Table returns the "imageProcessing" category.
func Table() registry.Category {
	return registry.Category{
		"convolve":  args.Fn2(Convolve),
		"boxBlur":   args.Fn2(BoxBlur),
		"sharpen":   args.Fn1(Sharpen),
		"sobel":     args.Fn1(Sobel),
		"median":    args.Fn2(Median),
		"invert":    args.Fn2(Invert),
		"threshold": args.Fn2(Threshold),
	}
}

func validateImage(img [][]float64) (rows, cols int, err error) {
	if len(img) == 0 || len(img[0]) == 0 {
		return 0, 0, ErrEmptyImage
	}
	rows, cols = len(img), len(img[0])
	for i, row := range img {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("%w: row %d has %d pixels, want %d", ErrRagged, i, len(row), cols)
		}
	}
	return rows, cols, nil
}

func validateWindow(size int) error {
	if size < 1 || size%2 == 0 {
		return fmt.Errorf("%w: %d", ErrBadWindow, size)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func newImage(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}

// Convolve applies kernel to img.
func Convolve(img, kernel [][]float64) ([][]float64, error) {
	rows, cols, err := validateImage(img)
	if err != nil {
		return nil, err
	}
	k := len(kernel)
	if k == 0 || k%2 == 0 {
		return nil, ErrBadKernel
	}
	for _, row := range kernel {
		if len(row) != k {
			return nil, ErrBadKernel
		}
	}

	half := k / 2
	out := newImage(rows, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			var acc float64
			for ky := 0; ky < k; ky++ {
				sy := clamp(y+ky-half, 0, rows-1)
				for kx := 0; kx < k; kx++ {
					sx := clamp(x+kx-half, 0, cols-1)
					acc += img[sy][sx] * kernel[ky][kx]
				}
			}
			out[y][x] = acc
		}
	}
	return out, nil
}

// BoxBlur averages each pixel with its size×size neighbourhood.
func BoxBlur(img [][]float64, size int) ([][]float64, error) {
	if err := validateWindow(size); err != nil {
		return nil, err
	}
	w := 1 / float64(size*size)
	kernel := newImage(size, size)
	for i := range kernel {
		for j := range kernel[i] {
			kernel[i][j] = w
		}
	}
	return Convolve(img, kernel)
}

// Sharpen applies a 4-neighbour Laplacian sharpening kernel.
func Sharpen(img [][]float64) ([][]float64, error) {
	return Convolve(img, sharpenKernel)
}

// Sobel returns the gradient magnitude of img.
func Sobel(img [][]float64) ([][]float64, error) {
	gx, err := Convolve(img, sobelX)
	if err != nil {
		return nil, err
	}
	gy, err := Convolve(img, sobelY)
	if err != nil {
		return nil, err
	}
	for y := range gx {
		for x := range gx[y] {
			gx[y][x] = math.Hypot(gx[y][x], gy[y][x])
		}
	}
	return gx, nil
}

// Median replaces each pixel with the median of its size×size neighbourhood.
func Median(img [][]float64, size int) ([][]float64, error) {
	rows, cols, err := validateImage(img)
	if err != nil {
		return nil, err
	}
	if err := validateWindow(size); err != nil {
		return nil, err
	}

	half := size / 2
	window := make([]float64, 0, size*size)
	out := newImage(rows, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			window = window[:0]
			for dy := -half; dy <= half; dy++ {
				for dx := -half; dx <= half; dx++ {
					window = append(window, img[clamp(y+dy, 0, rows-1)][clamp(x+dx, 0, cols-1)])
				}
			}
			sort.Float64s(window)
			out[y][x] = window[len(window)/2]
		}
	}
	return out, nil
}

// Invert maps every pixel p to max-p.
func Invert(img [][]float64, max float64) ([][]float64, error) {
	rows, cols, err := validateImage(img)
	if err != nil {
		return nil, err
	}
	out := newImage(rows, cols)
	for y := range img {
		for x, p := range img[y] {
			out[y][x] = max - p
		}
	}
	return out, nil
}

// Threshold binarises img: pixels at or above t become 1, the rest 0.
func Threshold(img [][]float64, t float64) ([][]float64, error) {
	rows, cols, err := validateImage(img)
	if err != nil {
		return nil, err
	}
	out := newImage(rows, cols)
	for y := range img {
		for x, p := range img[y] {
			if p >= t {
				out[y][x] = 1
			}
		}
	}
	return out, nil
}
