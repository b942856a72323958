package configurator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is an opaque catalog identifier. Numbers and strings decode to the same
// value, so 4 and "4" compare equal.
type ID string

func IDPtr(s string) *ID {
	id := ID(s)
	return &id
}

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = ID(canonicalNumber(n))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(strings.TrimSpace(s))
	return nil
}

func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return n.String()
}

func idEqual(a, b *ID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// FixtureSelection is the identifier tuple for one fixture. A nil field is a
// wildcard when matching; a nil ColorID on a record means the fixture has no color.
type FixtureSelection struct {
	CategoryID *ID `json:"categoryId"`
	ModelID    *ID `json:"modelId"`
	MaterialID *ID `json:"materialId"`
	ColorID    *ID `json:"colorId"`
}

// UnmarshalJSON reads "" like null, matching how FixturePatch treats it.
func (f *FixtureSelection) UnmarshalJSON(data []byte) error {
	type plain FixtureSelection
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = FixtureSelection(p)
	for _, id := range []**ID{&f.CategoryID, &f.ModelID, &f.MaterialID, &f.ColorID} {
		if *id != nil && **id == "" {
			*id = nil
		}
	}
	return nil
}

func (f FixtureSelection) IsEmpty() bool {
	return f.CategoryID == nil && f.ModelID == nil && f.MaterialID == nil && f.ColorID == nil
}

func (f FixtureSelection) Equal(other FixtureSelection) bool {
	return idEqual(f.CategoryID, other.CategoryID) &&
		idEqual(f.ModelID, other.ModelID) &&
		idEqual(f.MaterialID, other.MaterialID) &&
		idEqual(f.ColorID, other.ColorID)
}

type Selection map[FixtureType]FixtureSelection

// Normalize returns a copy with an entry for every given fixture type.
func (s Selection) Normalize(fixtures []FixtureType) Selection {
	out := s.clone()
	for _, ft := range fixtures {
		if _, ok := out[ft]; !ok {
			out[ft] = FixtureSelection{}
		}
	}
	return out
}

func (s Selection) clone() Selection {
	out := make(Selection, len(s)+3)
	for k, v := range s {
		out[k] = v
	}
	return out
}

type SceneRecord struct {
	SceneID   string                           `json:"sceneId"`
	Title     string                           `json:"title"`
	Panorama  string                           `json:"panorama,omitempty"`
	Thumbnail string                           `json:"thumbnail,omitempty"`
	Fixtures  map[FixtureType]FixtureSelection `json:"fixtures"`
}

// Selection returns the record's fixtures as a Selection.
func (r SceneRecord) Selection() Selection {
	out := make(Selection, len(r.Fixtures))
	for k, v := range r.Fixtures {
		out[k] = v
	}
	return out
}

// SceneCatalog is ordered; order defines the tie-break when several records match.
type SceneCatalog struct {
	Records []SceneRecord `json:"records"`
}

func (c SceneCatalog) Find(sceneID string) (SceneRecord, bool) {
	for _, r := range c.Records {
		if r.SceneID == sceneID {
			return r, true
		}
	}
	return SceneRecord{}, false
}

type Color struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Hex  string `json:"hex,omitempty"`
}

type Material struct {
	ID     ID      `json:"id"`
	Name   string  `json:"name"`
	Colors []Color `json:"colors,omitempty"`
}

type Model struct {
	ID        ID         `json:"id"`
	Name      string     `json:"name"`
	Thumbnail string     `json:"thumbnail,omitempty"`
	Materials []Material `json:"materials,omitempty"`
}

type FixtureCatalog struct {
	Type       FixtureType `json:"type"`
	CategoryID ID          `json:"categoryId"`
	Title      string      `json:"title"`
	Models     []Model     `json:"models"`
}

// Hotspot places a fixture menu trigger in a panorama. An empty SceneID applies to every scene.
type Hotspot struct {
	ID      string      `json:"id"`
	SceneID string      `json:"sceneId,omitempty"`
	Fixture FixtureType `json:"fixture"`
	Yaw     float64     `json:"yaw"`
	Pitch   float64     `json:"pitch"`
}

type ProductCatalog struct {
	Fixtures []FixtureCatalog `json:"fixtures"`
	Hotspots []Hotspot        `json:"hotspots,omitempty"`
}

func (p ProductCatalog) FixtureTypes() []FixtureType {
	out := make([]FixtureType, 0, len(p.Fixtures))
	for _, f := range p.Fixtures {
		out = append(out, f.Type)
	}
	return out
}

func (p ProductCatalog) Fixture(ft FixtureType) (FixtureCatalog, bool) {
	for _, f := range p.Fixtures {
		if f.Type == ft {
			return f, true
		}
	}
	return FixtureCatalog{}, false
}

func (f FixtureCatalog) Model(id ID) (Model, bool) {
	for _, m := range f.Models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

func (m Model) Material(id ID) (Material, bool) {
	for _, mat := range m.Materials {
		if mat.ID == id {
			return mat, true
		}
	}
	return Material{}, false
}
