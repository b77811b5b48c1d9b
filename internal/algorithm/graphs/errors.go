package graphs

import "errors"

var (
	// ErrEmptyGraph is returned for an adjacency matrix with no vertices.
	ErrEmptyGraph = errors.New("graphs: empty graph")

	// ErrNonSquare is returned when the adjacency matrix is not n×n.
	ErrNonSquare = errors.New("graphs: adjacency matrix is not square")

	// ErrBadWeight is returned for NaN or infinite edge weights.
	ErrBadWeight = errors.New("graphs: edge weight must be finite")

	// ErrVertexRange is returned for a source vertex outside [0, n).
	ErrVertexRange = errors.New("graphs: vertex out of range")

	// ErrNegativeWeight is returned by algorithms that require non-negative edges.
	ErrNegativeWeight = errors.New("graphs: negative edge weight")

	// ErrNegativeCycle is returned when shortest paths are undefined.
	ErrNegativeCycle = errors.New("graphs: negative cycle")

	// ErrNotSymmetric is returned when an undirected graph was required.
	ErrNotSymmetric = errors.New("graphs: adjacency matrix is not symmetric")

	// ErrDisconnected is returned when a spanning tree does not exist.
	ErrDisconnected = errors.New("graphs: graph is disconnected")
)
