// Package algorithm assembles the built-in category tables into a registry.
package algorithm

import (
	"github.com/seantiz/algolab/internal/algorithm/crypto"
	"github.com/seantiz/algolab/internal/algorithm/games"
	"github.com/seantiz/algolab/internal/algorithm/graphs"
	"github.com/seantiz/algolab/internal/algorithm/histograms"
	"github.com/seantiz/algolab/internal/algorithm/imaging"
	"github.com/seantiz/algolab/internal/model"
	"github.com/seantiz/algolab/internal/registry"
)

// Tables returns the fixed set of category tables keyed by category name.
func Tables() map[string]registry.Category {
	return map[string]registry.Category{
		model.CategoryImageProcessing: imaging.Table(),
		model.CategoryGraphTheory:     graphs.Table(),
		model.CategoryCryptography:    crypto.Table(),
		model.CategoryGameTheory:      games.Table(),
		model.CategoryHistograms:      histograms.Table(),
	}
}

// Default builds the registry of every built-in algorithm.
func Default() (*registry.Registry, error) {
	return registry.New(Tables())
}
