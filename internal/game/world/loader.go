package world

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoLocations is returned when an entities file declares no locations.
var ErrNoLocations = errors.New("entities file declares no locations")

// ErrUnsupportedFormat is returned for entities files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported entities file format")

// yamlWorldFile is the top-level YAML structure for world files.
type yamlWorldFile struct {
	World yamlWorld `yaml:"world"`
}

// yamlWorld is the YAML representation of a world. The first location is the start.
type yamlWorld struct {
	Locations []yamlLocation `yaml:"locations"`
	Paths     []yamlPath     `yaml:"paths,omitempty"`
}

// yamlLocation is the YAML representation of a location and its entities.
type yamlLocation struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Characters  []yamlEntity `yaml:"characters,omitempty"`
	Artefacts   []yamlEntity `yaml:"artefacts,omitempty"`
	Furniture   []yamlEntity `yaml:"furniture,omitempty"`
}

// yamlEntity is the YAML representation of an entity.
type yamlEntity struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// yamlPath is the YAML representation of a directed path.
type yamlPath struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadFile reads an entities file, choosing the parser by extension:
// .dot and .gv are graph-language files, .yaml and .yml are YAML worlds.
//
// Precondition: path must point to a readable entities file.
// Postcondition: Returns a validated World or a non-nil error.
func LoadFile(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading entities file %s: %w", path, err)
	}
	var w *World
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		w, err = LoadDOT(data)
	case ".yaml", ".yml":
		w, err = LoadYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading entities file %s: %w", path, err)
	}
	return w, nil
}

// LoadYAML parses and validates a world from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the world schema.
// Postcondition: Returns a validated World or a non-nil error.
func LoadYAML(data []byte) (*World, error) {
	var file yamlWorldFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing world YAML: %w", err)
	}
	if len(file.World.Locations) == 0 {
		return nil, ErrNoLocations
	}

	locations, paths := convertYAMLWorld(file.World)
	w, err := New(locations, paths)
	if err != nil {
		return nil, fmt.Errorf("validating world: %w", err)
	}
	return w, nil
}

// convertYAMLWorld converts the parsed YAML structures into domain types.
func convertYAMLWorld(yw yamlWorld) ([]*Location, [][2]string) {
	locations := make([]*Location, 0, len(yw.Locations))
	for _, yl := range yw.Locations {
		loc := NewLocation(strings.TrimSpace(yl.Name), strings.TrimSpace(yl.Description))
		for _, group := range []struct {
			kind     Kind
			entities []yamlEntity
		}{
			{Character, yl.Characters},
			{Artefact, yl.Artefacts},
			{Furniture, yl.Furniture},
		} {
			for _, ye := range group.entities {
				loc.Add(Entity{
					Name:        strings.TrimSpace(ye.Name),
					Description: strings.TrimSpace(ye.Description),
					Kind:        group.kind,
				})
			}
		}
		locations = append(locations, loc)
	}

	paths := make([][2]string, 0, len(yw.Paths))
	for _, yp := range yw.Paths {
		paths = append(paths, [2]string{yp.From, yp.To})
	}
	return locations, paths
}

// EncodeYAML renders the world's content, locations in load order, in the
// YAML world schema. Players are not part of the content and are omitted.
//
// Postcondition: LoadYAML on the result yields a world with the same locations,
// entities and paths.
func EncodeYAML(w *World) ([]byte, error) {
	var yw yamlWorld
	for _, k := range w.order {
		loc := w.locations[k]
		yw.Locations = append(yw.Locations, yamlLocation{
			Name:        loc.Name,
			Description: loc.Description,
			Characters:  toYAMLEntities(loc.characters),
			Artefacts:   toYAMLEntities(loc.artefacts),
			Furniture:   toYAMLEntities(loc.furniture),
		})
		for _, dst := range w.paths[k] {
			yw.Paths = append(yw.Paths, yamlPath{From: loc.Name, To: w.locations[dst].Name})
		}
	}

	data, err := yaml.Marshal(yamlWorldFile{World: yw})
	if err != nil {
		return nil, fmt.Errorf("encoding world YAML: %w", err)
	}
	return data, nil
}

func toYAMLEntities(entities []Entity) []yamlEntity {
	var out []yamlEntity
	for _, e := range entities {
		out = append(out, yamlEntity{Name: e.Name, Description: e.Description})
	}
	return out
}
