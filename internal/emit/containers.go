package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/MrWong99/hexforge/internal/category"
	"github.com/MrWong99/hexforge/internal/cluster"
	"github.com/MrWong99/hexforge/internal/entity"
	"github.com/MrWong99/hexforge/internal/htmlparse"
)

// Generated container source files.
const (
	DungeonContainerFile = "dungeons_gen.go"
	RegionContainerFile  = "regions_gen.go"
	DefaultContainerPkg  = "containers"
)

// ContainerRoom is one dungeon room in a generated container.
type ContainerRoom struct {
	Area  int
	Title string
	Type  string
	Exits []string
}

// DungeonContainer groups the rooms of one dungeon.
type DungeonContainer struct {
	UUID  string
	Name  string
	Rooms []ContainerRoom
}

// RegionContainer groups what lies within one region, including the IDs of
// the assets emitted for it.
type RegionContainer struct {
	UUID        string
	Name        string
	Biome       string
	Settlements []string
	Dungeons    []string
	Features    []string
	Assets      []string
}

// allEntities returns every entity of snap in category order.
func allEntities(snap cluster.Snapshot) []entity.RawEntity {
	var out []entity.RawEntity
	for _, cat := range category.All {
		out = append(out, Entities(snap, cat)...)
	}
	return out
}

func mentions(e entity.RawEntity, name string) bool {
	return name != "" && strings.Contains(strings.ToLower(e.RawValue), strings.ToLower(name))
}

// DungeonContainers collects one container per dungeon entity. Rooms are
// every parsed dungeon room that is the dungeon entity itself or names it as
// its parent, ordered by area number.
func DungeonContainers(snap cluster.Snapshot) []DungeonContainer {
	type parsedRoom struct {
		uuid string
		room *htmlparse.ParsedDungeonRoom
	}
	var rooms []parsedRoom
	for _, e := range allEntities(snap) {
		if !htmlparse.IsDungeonRoom(e.RawValue) {
			continue
		}
		if r, _ := htmlparse.ParseDungeonRoom(e.RawValue); r != nil {
			rooms = append(rooms, parsedRoom{uuid: e.UUID, room: r})
		}
	}

	var out []DungeonContainer
	for _, d := range Entities(snap, category.Dungeons) {
		c := DungeonContainer{UUID: d.UUID, Name: displayOf(d, Stem(d))}
		for _, pr := range rooms {
			if pr.uuid != d.UUID && (pr.room.ParentDungeon == "" || !strings.EqualFold(pr.room.ParentDungeon, d.EntityName)) {
				continue
			}
			cr := ContainerRoom{Area: pr.room.AreaNumber, Title: pr.room.Title, Type: pr.room.RoomType}
			for _, dw := range pr.room.Doorways {
				exit := dw.Direction
				if dw.Locked {
					exit += " (locked)"
				}
				cr.Exits = append(cr.Exits, exit)
			}
			c.Rooms = append(c.Rooms, cr)
		}
		slices.SortStableFunc(c.Rooms, func(a, b ContainerRoom) int {
			if a.Area != b.Area {
				return a.Area - b.Area
			}
			return strings.Compare(a.Title, b.Title)
		})
		out = append(out, c)
	}
	return out
}

// RegionContainers collects one container per region entity. Settlements,
// dungeons and hex features belong to a region when their content names it;
// Assets lists the IDs of emitted assets whose entity belongs to the region.
func RegionContainers(snap cluster.Snapshot, assets []Asset) []RegionContainer {
	settlements := Entities(snap, category.Settlements)
	dungeons := Entities(snap, category.Dungeons)
	var features []entity.RawEntity
	for _, e := range allEntities(snap) {
		if htmlparse.HexFeatureKind(e.RawValue) != "" {
			features = append(features, e)
		}
	}

	var out []RegionContainer
	for _, r := range Entities(snap, category.Regions) {
		c := RegionContainer{
			UUID:  r.UUID,
			Name:  displayOf(r, Stem(r)),
			Biome: Biome(r.EntityName, r.RawValue, htmlparse.MapCoords(r.RawValue)),
		}
		if !r.HasName() {
			out = append(out, c)
			continue
		}
		members := map[string]bool{r.UUID: true}
		for _, s := range settlements {
			if mentions(s, r.EntityName) {
				c.Settlements = append(c.Settlements, displayOf(s, Stem(s)))
				members[s.UUID] = true
			}
		}
		for _, d := range dungeons {
			if mentions(d, r.EntityName) {
				c.Dungeons = append(c.Dungeons, displayOf(d, Stem(d)))
			}
		}
		for _, f := range features {
			if f.UUID != r.UUID && mentions(f, r.EntityName) {
				c.Features = append(c.Features, displayOf(f, Stem(f)))
			}
		}
		for _, a := range assets {
			if members[a.Entity.UUID] {
				c.Assets = append(c.Assets, a.Meta.ID)
			}
		}
		out = append(out, c)
	}
	return out
}

// goStrings renders ss as a Go expression.
func goStrings(ss []string) string {
	if len(ss) == 0 {
		return "nil"
	}
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = strconv.Quote(s)
	}
	return "[]string{" + strings.Join(q, ", ") + "}"
}

var containerFuncs = template.FuncMap{
	"quote":   strconv.Quote,
	"strings": goStrings,
}

const dungeonContainerTmpl = `// Code generated by hexforge. DO NOT EDIT.

package {{.Package}}

// DungeonRoom is one keyed area of a dungeon.
type DungeonRoom struct {
	Area int
	Title string
	Type string
	Exits []string
}

// Dungeon groups the rooms of one dungeon.
type Dungeon struct {
	UUID string
	Name string
	Rooms []DungeonRoom
}

// Dungeons lists every dungeon of the archive.
var Dungeons = []Dungeon{
{{- range .Items}}
	{
		UUID: {{quote .UUID}},
		Name: {{quote .Name}},
		Rooms: []DungeonRoom{
		{{- range .Rooms}}
			{Area: {{.Area}}, Title: {{quote .Title}}, Type: {{quote .Type}}, Exits: {{strings .Exits}}},
		{{- end}}
		},
	},
{{- end}}
}
`

const regionContainerTmpl = `// Code generated by hexforge. DO NOT EDIT.

package {{.Package}}

// Region groups what lies within one region.
type Region struct {
	UUID string
	Name string
	Biome string
	Settlements []string
	Dungeons []string
	Features []string
	Assets []string
}

// Regions lists every region of the archive.
var Regions = []Region{
{{- range .Items}}
	{
		UUID: {{quote .UUID}},
		Name: {{quote .Name}},
		Biome: {{quote .Biome}},
		Settlements: {{strings .Settlements}},
		Dungeons: {{strings .Dungeons}},
		Features: {{strings .Features}},
		Assets: {{strings .Assets}},
	},
{{- end}}
}
`

var (
	dungeonContainerTemplate = template.Must(template.New("dungeons").Funcs(containerFuncs).Parse(dungeonContainerTmpl))
	regionContainerTemplate  = template.Must(template.New("regions").Funcs(containerFuncs).Parse(regionContainerTmpl))
)

func renderGo(t *template.Template, pkg string, items any) ([]byte, error) {
	if pkg == "" {
		pkg = DefaultContainerPkg
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, struct {
		Package string
		Items   any
	}{pkg, items}); err != nil {
		return nil, fmt.Errorf("emit: render %s: %w", t.Name(), err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("emit: format %s: %w", t.Name(), err)
	}
	return src, nil
}

// RenderDungeonContainers renders the dungeon container source file.
func RenderDungeonContainers(pkg string, ds []DungeonContainer) ([]byte, error) {
	return renderGo(dungeonContainerTemplate, pkg, ds)
}

// RenderRegionContainers renders the region container source file.
func RenderRegionContainers(pkg string, rs []RegionContainer) ([]byte, error) {
	return renderGo(regionContainerTemplate, pkg, rs)
}
