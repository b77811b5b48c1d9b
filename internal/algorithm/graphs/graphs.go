// Package graphs implements graph algorithms over dense adjacency matrices.
//
// adj[i][j] is the weight of the edge i→j; a zero off the diagonal means "no
// edge" and the diagonal is ignored. Distances that do not exist are reported
// as -1 so results stay JSON-encodable.
package graphs

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/seantiz/algolab/internal/algorithm/args"
	"github.com/seantiz/algolab/internal/registry"
)

// Unreachable marks a missing path in distance results.
const Unreachable = -1.0

// Table returns the "graphTheory" category.
func Table() registry.Category {
	return registry.Category{
		"floydWarshall": args.Fn1(FloydWarshall),
		"dijkstra":      args.Fn2(Dijkstra),
		"bfs":           args.Fn2(BFS),
		"degrees":       args.Fn1(Degrees),
		"mstWeight":     args.Fn1(MSTWeight),
	}
}

func validate(adj [][]float64) (int, error) {
	n := len(adj)
	if n == 0 {
		return 0, ErrEmptyGraph
	}
	for i, row := range adj {
		if len(row) != n {
			return 0, fmt.Errorf("%w: row %d has %d entries, want %d", ErrNonSquare, i, len(row), n)
		}
		for j, w := range row {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return 0, fmt.Errorf("%w at (%d,%d)", ErrBadWeight, i, j)
			}
		}
	}
	return n, nil
}

func validateVertex(v, n int) error {
	if v < 0 || v >= n {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrVertexRange, v, n)
	}
	return nil
}

func hasEdge(adj [][]float64, i, j int) bool {
	return i != j && adj[i][j] != 0
}

// FloydWarshall returns all-pairs shortest path distances.
func FloydWarshall(adj [][]float64) ([][]float64, error) {
	n, err := validate(adj)
	if err != nil {
		return nil, err
	}

	inf := math.Inf(1)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			switch {
			case i == j:
				d[i][j] = 0
			case adj[i][j] == 0:
				d[i][j] = inf
			default:
				d[i][j] = adj[i][j]
			}
		}
	}

	// Fixed k→i→j order; relax on strict improvement only.
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			ik := d[i][k]
			if math.IsInf(ik, 1) {
				continue
			}
			for j := 0; j < n; j++ {
				kj := d[k][j]
				if math.IsInf(kj, 1) {
					continue
				}
				if cand := ik + kj; cand < d[i][j] {
					d[i][j] = cand
				}
			}
		}
	}

	for i := range d {
		if d[i][i] < 0 {
			return nil, fmt.Errorf("%w through vertex %d", ErrNegativeCycle, i)
		}
		for j := range d[i] {
			if math.IsInf(d[i][j], 1) {
				d[i][j] = Unreachable
			}
		}
	}
	return d, nil
}

type item struct {
	vertex int
	dist   float64
}

type minQueue []item

func (q minQueue) Len() int           { return len(q) }
func (q minQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q minQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *minQueue) Push(x any)        { *q = append(*q, x.(item)) }
func (q *minQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}

// Dijkstra returns single-source shortest distances from source.
func Dijkstra(adj [][]float64, source int) ([]float64, error) {
	n, err := validate(adj)
	if err != nil {
		return nil, err
	}
	if err := validateVertex(source, n); err != nil {
		return nil, err
	}
	for i := range adj {
		for j := range adj[i] {
			if hasEdge(adj, i, j) && adj[i][j] < 0 {
				return nil, fmt.Errorf("%w at (%d,%d)", ErrNegativeWeight, i, j)
			}
		}
	}

	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[source] = 0
	done := make([]bool, n)

	q := &minQueue{{vertex: source}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(item)
		if done[cur.vertex] {
			continue
		}
		done[cur.vertex] = true
		for v := 0; v < n; v++ {
			if !hasEdge(adj, cur.vertex, v) {
				continue
			}
			if cand := cur.dist + adj[cur.vertex][v]; cand < dist[v] {
				dist[v] = cand
				heap.Push(q, item{vertex: v, dist: cand})
			}
		}
	}

	for i, d := range dist {
		if math.IsInf(d, 1) {
			dist[i] = Unreachable
		}
	}
	return dist, nil
}

// BFS returns vertices in breadth-first visiting order from source. Neighbours
// are visited in ascending index order.
func BFS(adj [][]float64, source int) ([]int, error) {
	n, err := validate(adj)
	if err != nil {
		return nil, err
	}
	if err := validateVertex(source, n); err != nil {
		return nil, err
	}

	seen := make([]bool, n)
	seen[source] = true
	order := []int{source}
	for head := 0; head < len(order); head++ {
		u := order[head]
		for v := 0; v < n; v++ {
			if hasEdge(adj, u, v) && !seen[v] {
				seen[v] = true
				order = append(order, v)
			}
		}
	}
	return order, nil
}

// Degrees returns the out-degree of every vertex.
func Degrees(adj [][]float64) ([]int, error) {
	n, err := validate(adj)
	if err != nil {
		return nil, err
	}
	deg := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if hasEdge(adj, i, j) {
				deg[i]++
			}
		}
	}
	return deg, nil
}

// MSTWeight returns the total weight of a minimum spanning tree of an
// undirected (symmetric) graph, computed with Prim's algorithm.
func MSTWeight(adj [][]float64) (float64, error) {
	n, err := validate(adj)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if adj[i][j] != adj[j][i] {
				return 0, fmt.Errorf("%w at (%d,%d)", ErrNotSymmetric, i, j)
			}
		}
	}

	inTree := make([]bool, n)
	best := make([]float64, n)
	for i := range best {
		best[i] = math.Inf(1)
	}
	best[0] = 0

	var total float64
	for step := 0; step < n; step++ {
		u := -1
		for v := 0; v < n; v++ {
			if !inTree[v] && (u < 0 || best[v] < best[u]) {
				u = v
			}
		}
		if math.IsInf(best[u], 1) {
			return 0, ErrDisconnected
		}
		inTree[u] = true
		total += best[u]
		for v := 0; v < n; v++ {
			if !inTree[v] && hasEdge(adj, u, v) && adj[u][v] < best[v] {
				best[v] = adj[u][v]
			}
		}
	}
	return total, nil
}
