package tourxml

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
)

// AuthoringFile is the hand-edited scene list. Fixture keys accept the same
// aliases as the HTTP API, and ids may be written as numbers or strings.
//
//	scenes:
//	  - id: scene-oval-white
//	    title: Oval white
//	    panorama: panos/oval-white.jpg
//	    fixtures:
//	      tub: {category: 1, model: 1, material: 11, color: 111}
type AuthoringFile struct {
	Scenes []AuthoringScene `yaml:"scenes"`
}

type AuthoringScene struct {
	ID        string                      `yaml:"id"`
	Title     string                      `yaml:"title"`
	Panorama  string                      `yaml:"panorama"`
	Thumbnail string                      `yaml:"thumbnail"`
	Fixtures  map[string]AuthoringFixture `yaml:"fixtures"`
}

type AuthoringFixture struct {
	Category authoringID `yaml:"category"`
	Model    authoringID `yaml:"model"`
	Material authoringID `yaml:"material"`
	Color    authoringID `yaml:"color"`
}

// authoringID keeps whatever scalar text the author wrote; ~ and null stay nil.
type authoringID struct {
	value *configurator.ID
}

func (a *authoringID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		a.value = nil
		return nil
	}
	v := strings.TrimSpace(node.Value)
	if v == "" {
		a.value = nil
		return nil
	}
	a.value = configurator.IDPtr(v)
	return nil
}

// ParseAuthoring decodes an authoring YAML document into catalog records,
// preserving scene order.
func ParseAuthoring(r io.Reader) ([]configurator.SceneRecord, error) {
	var file AuthoringFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("authoring yaml is empty")
		}
		return nil, fmt.Errorf("decode authoring yaml: %w", err)
	}

	out := make([]configurator.SceneRecord, 0, len(file.Scenes))
	for i, s := range file.Scenes {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return nil, fmt.Errorf("scene %d: id is required", i)
		}
		rec := configurator.SceneRecord{
			SceneID:   id,
			Title:     strings.TrimSpace(s.Title),
			Panorama:  strings.TrimSpace(s.Panorama),
			Thumbnail: strings.TrimSpace(s.Thumbnail),
			Fixtures:  make(map[configurator.FixtureType]configurator.FixtureSelection, len(s.Fixtures)),
		}
		for key, f := range s.Fixtures {
			ft, ok := configurator.ParseFixtureType(key)
			if !ok {
				return nil, fmt.Errorf("scene %q: unknown fixture %q", id, key)
			}
			if _, dup := rec.Fixtures[ft]; dup {
				return nil, fmt.Errorf("scene %q: fixture %s listed twice", id, ft)
			}
			rec.Fixtures[ft] = configurator.FixtureSelection{
				CategoryID: f.Category.value,
				ModelID:    f.Model.value,
				MaterialID: f.Material.value,
				ColorID:    f.Color.value,
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// WriteSceneCatalog writes records as the bare JSON array the catalog loader reads.
func WriteSceneCatalog(w io.Writer, records []configurator.SceneRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
