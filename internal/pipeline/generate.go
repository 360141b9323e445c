package pipeline

import (
	"context"

	"github.com/MrWong99/hexforge/internal/category"
	"github.com/MrWong99/hexforge/internal/cluster"
	"github.com/MrWong99/hexforge/internal/emit"
	"github.com/MrWong99/hexforge/internal/entity"
)

// Compile-time check that AssetGenerator satisfies Generator.
var _ Generator = (*AssetGenerator)(nil)

// assetKinds maps the location categories that have an asset kind of their
// own. Dungeons are covered by the dungeon container instead.
var assetKinds = map[category.Category]emit.AssetKind{
	category.Regions:     emit.Terrain,
	category.Settlements: emit.Buildings,
	category.Factions:    emit.Leaders,
}

// AssetGenerator writes the model metadata of one location category.
type AssetGenerator struct {
	Emitter          *emit.Emitter
	CorruptionThemes bool
}

// Generate implements [Generator].
func (g *AssetGenerator) Generate(ctx context.Context, c cluster.Cluster) ([]string, error) {
	kind, ok := assetKinds[c.Category]
	if !ok {
		return nil, nil
	}
	byKey := make(map[string][]entity.RawEntity)
	for _, e := range c.Entities {
		k := cluster.Key(e)
		byKey[k] = append(byKey[k], e)
	}
	snap := cluster.Snapshot{Clusters: map[category.Category]map[string][]entity.RawEntity{c.Category: byKey}}
	assets := g.Emitter.Plan(snap, emit.PlanOptions{
		Kinds:            []emit.AssetKind{kind},
		CorruptionThemes: g.CorruptionThemes,
	})
	return g.Emitter.WriteAssets(ctx, assets)
}
