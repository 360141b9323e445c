package emit

import (
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/MrWong99/hexforge/internal/categorize"
	"github.com/MrWong99/hexforge/internal/category"
	"github.com/MrWong99/hexforge/internal/cluster"
	"github.com/MrWong99/hexforge/internal/entity"
	"github.com/MrWong99/hexforge/internal/htmlparse"
)

// Independent is the faction of units that mention no known faction.
const Independent = "independent"

// Asset is one planned metadata file.
type Asset struct {
	Kind AssetKind

	// Group is the faction, settlement or biome directory. Leaders have
	// none.
	Group string

	// Name is the sanitized file stem.
	Name string

	// Faction is the faction the asset belongs to, if any.
	Faction string

	Entity entity.RawEntity
	Meta   ModelMetadata
}

// RelPath returns the asset's path below the assets root.
func (a Asset) RelPath() string {
	if a.Kind == Leaders {
		return path.Join(string(Leaders), a.Name+"_leader.meta.ron")
	}
	return path.Join(string(a.Kind), a.Group, a.Name+".meta.ron")
}

// PlanOptions narrows and decorates a plan.
type PlanOptions struct {
	// Kinds restricts the plan. Empty means every kind.
	Kinds []AssetKind

	// Faction keeps only assets of this faction, compared sanitized.
	Faction string

	// CorruptionThemes fills corruption_band and horror_theme.
	CorruptionThemes bool

	// Training supplies per-entity corruption bands and themes.
	Training *categorize.Corpus
}

func (o PlanOptions) wants(k AssetKind) bool {
	return len(o.Kinds) == 0 || slices.Contains(o.Kinds, k)
}

// Entities returns the entities of cat in snap ordered by cluster key, then
// insertion order.
func Entities(snap cluster.Snapshot, cat category.Category) []entity.RawEntity {
	if cat == category.Uncategorized {
		return append([]entity.RawEntity(nil), snap.Uncategorized...)
	}
	clusters := snap.Clusters[cat]
	keys := make([]string, 0, len(clusters))
	for k := range clusters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var out []entity.RawEntity
	for _, k := range keys {
		out = append(out, clusters[k]...)
	}
	return out
}

// Stem returns the sanitized file stem for e. Entities whose key sanitizes
// to nothing fall back to category and uuid.
func Stem(e entity.RawEntity) string {
	if s := SanitizeName(cluster.Key(e)); s != "" {
		return s
	}
	return SanitizeName(e.Category.String() + "_" + e.UUID)
}

type faction struct {
	stem  string
	lower string
}

// factions lists the named faction entities of snap, sorted by stem.
func factions(snap cluster.Snapshot) []faction {
	var out []faction
	for _, e := range Entities(snap, category.Factions) {
		if !e.HasName() {
			continue
		}
		f := faction{stem: SanitizeName(e.EntityName), lower: strings.ToLower(e.EntityName)}
		if f.stem == "" || slices.ContainsFunc(out, func(o faction) bool { return o.stem == f.stem }) {
			continue
		}
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b faction) int { return strings.Compare(a.stem, b.stem) })
	return out
}

// factionOf returns the first known faction named in e's content.
func factionOf(fs []faction, e entity.RawEntity) string {
	lower := strings.ToLower(e.RawValue)
	for _, f := range fs {
		if strings.Contains(lower, f.lower) {
			return f.stem
		}
	}
	return Independent
}

// Plan maps the entities of snap to assets. The result is ordered by kind,
// then group, then name, and paths are unique.
func Plan(snap cluster.Snapshot, opts PlanOptions) []Asset {
	fs := factions(snap)
	filter := SanitizeName(opts.Faction)
	keep := func(faction string) bool { return filter == "" || faction == filter }

	var assets []Asset
	if opts.wants(Units) {
		for _, cat := range []category.Category{category.Characters, category.Creatures} {
			for _, e := range Entities(snap, cat) {
				f := factionOf(fs, e)
				if !keep(f) {
					continue
				}
				assets = append(assets, unitAsset(e, f, opts))
			}
		}
	}
	if opts.wants(Buildings) && filter == "" {
		for _, e := range Entities(snap, category.Settlements) {
			assets = append(assets, buildingAssets(e, opts)...)
		}
	}
	if opts.wants(Leaders) {
		for _, e := range Entities(snap, category.Factions) {
			if !keep(Stem(e)) {
				continue
			}
			assets = append(assets, leaderAsset(e, opts))
		}
	}
	if opts.wants(Terrain) && filter == "" {
		for _, e := range Entities(snap, category.Regions) {
			assets = append(assets, terrainAsset(e, opts))
		}
	}

	slices.SortStableFunc(assets, func(a, b Asset) int {
		if c := slices.Index(AssetKinds, a.Kind) - slices.Index(AssetKinds, b.Kind); c != 0 {
			return c
		}
		if c := strings.Compare(a.Group, b.Group); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	dedupe(assets)
	return assets
}

// dedupe suffixes repeated paths with _2, _3 and so on. The first asset of
// a path keeps it, and a suffix is never one another asset already owns.
func dedupe(assets []Asset) {
	taken := make(map[string]bool, len(assets))
	var repeats []int
	for i, a := range assets {
		if p := a.RelPath(); taken[p] {
			repeats = append(repeats, i)
		} else {
			taken[p] = true
		}
	}
	for _, i := range repeats {
		for n := 2; ; n++ {
			c := withSuffix(assets[i], n)
			if p := c.RelPath(); !taken[p] {
				taken[p] = true
				assets[i] = c
				break
			}
		}
	}
}

func withSuffix(a Asset, n int) Asset {
	suffix := "_" + strconv.Itoa(n)
	a.Name += suffix
	a.Meta.ID += suffix
	a.Meta.ModelPath = modelPath(a)
	a.Meta.UIIcon = iconPath(a)
	return a
}

func modelPath(a Asset) string {
	if a.Kind == Leaders {
		return path.Join("models", string(Leaders), a.Name+"_leader.glb")
	}
	return path.Join("models", string(a.Kind), a.Group, a.Name+".glb")
}

func iconPath(a Asset) string {
	return path.Join("icons", string(a.Kind), a.Meta.ID+".png")
}

// baseMeta fills the fields shared by every kind.
func baseMeta(a *Asset, display string, opts PlanOptions, tags ...string) {
	p := profiles[a.Kind]
	a.Meta.DisplayName = DisplayName(display)
	a.Meta.ModelPath = modelPath(*a)
	a.Meta.Scale = p.scale
	a.Meta.Bounds = p.bounds
	a.Meta.Animations = append([]string{}, p.animations...)
	a.Meta.Sockets = append([]Socket{}, p.sockets...)
	a.Meta.Sounds = append([]string{}, p.sounds...)
	a.Meta.Tags = sortedTags(append([]string{string(a.Kind), a.Entity.Category.String(), a.Group}, tags...)...)
	a.Meta.UIIcon = iconPath(*a)
	if opts.CorruptionThemes {
		a.Meta.CorruptionBand, a.Meta.HorrorTheme = corruption(a.Entity, opts.Training)
	}
}

// corruption resolves an entity's band and theme: a matching training
// example with a band wins, otherwise content keywords decide.
func corruption(e entity.RawEntity, training *categorize.Corpus) (int, string) {
	if ex, ok := training.Example(e.EntityName); ok && ex.CorruptionBand >= 1 && ex.CorruptionBand <= categorize.MaxCorruptionBand {
		theme := ex.HorrorTheme
		if theme == "" {
			theme = HorrorTheme(ex.CorruptionBand)
		}
		return ex.CorruptionBand, theme
	}
	band := CorruptionTier(e.RawValue)
	return band, HorrorTheme(band)
}

func displayOf(e entity.RawEntity, stem string) string {
	if e.HasName() {
		return e.EntityName
	}
	return stem
}

func unitAsset(e entity.RawEntity, faction string, opts PlanOptions) Asset {
	a := Asset{Kind: Units, Group: faction, Name: Stem(e), Faction: faction, Entity: e}
	a.Meta.ID = SanitizeName(faction + "_" + a.Name)
	class := tierOf(e.RawValue)
	if class == "" {
		class = "soldier"
		if e.Category == category.Creatures {
			class = "creature"
		}
	}
	a.Meta.Class = class
	if faction != Independent {
		a.Meta.Cult = faction
		if next := nextTier(class); next != "" {
			a.Meta.UpgradesTo = SanitizeName(faction + "_" + next)
		}
	}
	baseMeta(&a, displayOf(e, a.Name), opts, class)
	return a
}

func leaderAsset(e entity.RawEntity, opts PlanOptions) Asset {
	stem := Stem(e)
	a := Asset{Kind: Leaders, Name: stem, Faction: stem, Entity: e}
	a.Meta.ID = stem + "_leader"
	a.Meta.Cult = stem
	a.Meta.Class = "leader"
	baseMeta(&a, displayOf(e, stem)+" Leader", opts, "leader")
	return a
}

// buildingAssets emits one building per listed service of a settlement, or
// the settlement itself when it lists none.
func buildingAssets(e entity.RawEntity, opts PlanOptions) []Asset {
	settlement := Stem(e)
	var services []string
	if s, _ := htmlparse.ParseSettlement(e.RawValue); s != nil {
		services = s.Services
	}
	if len(services) == 0 {
		services = []string{displayOf(e, settlement)}
	}

	var out []Asset
	for _, svc := range services {
		name := SanitizeName(svc)
		if name == "" {
			continue
		}
		a := Asset{Kind: Buildings, Group: settlement, Name: name, Entity: e}
		a.Meta.ID = SanitizeName(settlement + "_" + name)
		a.Meta.Class = htmlparse.POIKind(svc)
		baseMeta(&a, svc, opts, a.Meta.Class)
		if isForge(svc) {
			band := a.Meta.CorruptionBand
			if band == 0 {
				band = 1
			}
			a.Meta.ForgeMaterial = forgeMaterials[band-1]
		}
		out = append(out, a)
	}
	return out
}

func isForge(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "smith") || strings.Contains(lower, "forge")
}

func terrainAsset(e entity.RawEntity, opts PlanOptions) Asset {
	name := Stem(e)
	biome := Biome(e.EntityName, e.RawValue, htmlparse.MapCoords(e.RawValue))
	a := Asset{Kind: Terrain, Group: biome, Name: name, Entity: e}
	a.Meta.ID = SanitizeName(biome + "_" + name)
	a.Meta.Class = biome
	baseMeta(&a, displayOf(e, name), opts, "biome_"+biome)
	return a
}
