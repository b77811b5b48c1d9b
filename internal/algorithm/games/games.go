// Package games implements small finite game solvers: pure Nash equilibria of
// bimatrix games, saddle points and dominance for zero-sum games, and Shapley
// values for cooperative games.
//
// Payoff matrices are indexed [row strategy][column strategy]. In a zero-sum
// game the matrix holds the row player's payoff.
package games

import (
	"errors"
	"fmt"

	"github.com/seantiz/algolab/internal/algorithm/args"
	"github.com/seantiz/algolab/internal/registry"
)

// MaxShapleyPlayers bounds the permutation enumeration in Shapley.
const MaxShapleyPlayers = 12

var (
	// ErrEmptyGame is returned for a payoff matrix without strategies.
	ErrEmptyGame = errors.New("gameTheory: empty payoff matrix")

	// ErrShape is returned for ragged or mismatched payoff matrices.
	ErrShape = errors.New("gameTheory: payoff matrices have inconsistent shape")

	// ErrPlayers is returned for a player count outside [1, MaxShapleyPlayers].
	ErrPlayers = errors.New("gameTheory: unsupported number of players")

	// ErrCoalitions is returned when the characteristic function does not list
	// exactly 2^n coalition values.
	ErrCoalitions = errors.New("gameTheory: characteristic function must have 2^n values")
)

// Table returns the "gameTheory" category.
func Table() registry.Category {
	return registry.Category{
		"pureNash":    args.Fn2(PureNash),
		"saddlePoint": args.Fn1(SaddlePoint),
		"dominated":   args.Fn1(Dominated),
		"shapley":     args.Fn2(Shapley),
	}
}

// Profile is a pair of pure strategies.
type Profile struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Saddle describes the pure solution of a zero-sum game, when one exists.
type Saddle struct {
	Found   bool    `json:"found"`
	Row     int     `json:"row"`
	Col     int     `json:"col"`
	Value   float64 `json:"value"`
	Maximin float64 `json:"maximin"`
	Minimax float64 `json:"minimax"`
}

// Reduced lists the strategies that survive iterated elimination.
type Reduced struct {
	Rows []int `json:"rows"`
	Cols []int `json:"cols"`
}

func shape(m [][]float64) (rows, cols int, err error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return 0, 0, ErrEmptyGame
	}
	rows, cols = len(m), len(m[0])
	for i, r := range m {
		if len(r) != cols {
			return 0, 0, fmt.Errorf("%w: row %d", ErrShape, i)
		}
	}
	return rows, cols, nil
}

// PureNash returns every pure-strategy Nash equilibrium of the bimatrix game
// (a, b), where a is the row player's payoff and b the column player's.
func PureNash(a, b [][]float64) ([]Profile, error) {
	rows, cols, err := shape(a)
	if err != nil {
		return nil, err
	}
	br, bc, err := shape(b)
	if err != nil {
		return nil, err
	}
	if br != rows || bc != cols {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrShape, rows, cols, br, bc)
	}

	out := []Profile{}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if isRowBest(a, i, j) && isColBest(b, i, j) {
				out = append(out, Profile{Row: i, Col: j})
			}
		}
	}
	return out, nil
}

func isRowBest(a [][]float64, i, j int) bool {
	for k := range a {
		if a[k][j] > a[i][j] {
			return false
		}
	}
	return true
}

func isColBest(b [][]float64, i, j int) bool {
	for k := range b[i] {
		if b[i][k] > b[i][j] {
			return false
		}
	}
	return true
}

// SaddlePoint finds a pure saddle point of the zero-sum game a: an entry that
// is the minimum of its row and the maximum of its column.
func SaddlePoint(a [][]float64) (Saddle, error) {
	rows, cols, err := shape(a)
	if err != nil {
		return Saddle{}, err
	}

	var s Saddle
	for i := 0; i < rows; i++ {
		rowMin := a[i][0]
		for j := 1; j < cols; j++ {
			rowMin = min(rowMin, a[i][j])
		}
		if i == 0 || rowMin > s.Maximin {
			s.Maximin = rowMin
		}
	}
	for j := 0; j < cols; j++ {
		colMax := a[0][j]
		for i := 1; i < rows; i++ {
			colMax = max(colMax, a[i][j])
		}
		if j == 0 || colMax < s.Minimax {
			s.Minimax = colMax
		}
	}

	if s.Maximin != s.Minimax {
		return s, nil
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if a[i][j] == s.Maximin && isRowMin(a, i, j) && isRowBest(a, i, j) {
				s.Found, s.Row, s.Col, s.Value = true, i, j, a[i][j]
				return s, nil
			}
		}
	}
	return s, nil
}

func isRowMin(a [][]float64, i, j int) bool {
	for _, v := range a[i] {
		if v < a[i][j] {
			return false
		}
	}
	return true
}

// Dominated removes strictly dominated strategies from the zero-sum game a
// until none remain. The row player maximises, the column player minimises.
func Dominated(a [][]float64) (Reduced, error) {
	rows, cols, err := shape(a)
	if err != nil {
		return Reduced{}, err
	}

	liveRows := make([]int, rows)
	for i := range liveRows {
		liveRows[i] = i
	}
	liveCols := make([]int, cols)
	for j := range liveCols {
		liveCols[j] = j
	}

	for changed := true; changed; {
		changed = false
		for _, r := range liveRows {
			if rowDominated(a, r, liveRows, liveCols) {
				liveRows = without(liveRows, r)
				changed = true
				break
			}
		}
		for _, c := range liveCols {
			if colDominated(a, c, liveRows, liveCols) {
				liveCols = without(liveCols, c)
				changed = true
				break
			}
		}
	}
	return Reduced{Rows: liveRows, Cols: liveCols}, nil
}

func rowDominated(a [][]float64, r int, rows, cols []int) bool {
	for _, o := range rows {
		if o == r {
			continue
		}
		strictly := true
		for _, c := range cols {
			if a[o][c] <= a[r][c] {
				strictly = false
				break
			}
		}
		if strictly {
			return true
		}
	}
	return false
}

func colDominated(a [][]float64, c int, rows, cols []int) bool {
	for _, o := range cols {
		if o == c {
			continue
		}
		strictly := true
		for _, r := range rows {
			if a[r][o] >= a[r][c] {
				strictly = false
				break
			}
		}
		if strictly {
			return true
		}
	}
	return false
}

func without(xs []int, v int) []int {
	out := make([]int, 0, len(xs)-1)
	for _, x := range xs {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// Shapley returns each player's Shapley value for an n-player cooperative game.
// values[mask] is the worth of the coalition whose members are the set bits of
// mask. Every one of the n! join orders is enumerated, so cost grows
// factorially with n.
func Shapley(n int, values []float64) ([]float64, error) {
	if n < 1 || n > MaxShapleyPlayers {
		return nil, fmt.Errorf("%w: %d", ErrPlayers, n)
	}
	if len(values) != 1<<n {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCoalitions, len(values), 1<<n)
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	phi := make([]float64, n)
	var orders float64

	credit := func() {
		mask := 0
		for _, p := range perm {
			next := mask | 1<<p
			phi[p] += values[next] - values[mask]
			mask = next
		}
		orders++
	}

	// Heap's algorithm, iterative form.
	c := make([]int, n)
	credit()
	for i := 0; i < n; {
		if c[i] < i {
			if i%2 == 0 {
				perm[0], perm[i] = perm[i], perm[0]
			} else {
				perm[c[i]], perm[i] = perm[i], perm[c[i]]
			}
			credit()
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}

	for i := range phi {
		phi[i] /= orders
	}
	return phi, nil
}
