package action

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoActions is returned when an actions file declares no actions.
var ErrNoActions = errors.New("actions file declares no actions")

// xmlActionsFile is the top-level XML structure for actions files.
type xmlActionsFile struct {
	XMLName xml.Name    `xml:"actions"`
	Actions []xmlAction `xml:"action"`
}

// xmlAction is the XML representation of an action.
type xmlAction struct {
	Triggers  []string `xml:"triggers>keyphrase"`
	Subjects  []string `xml:"subjects>entity"`
	Consumed  []string `xml:"consumed>entity"`
	Produced  []string `xml:"produced>entity"`
	Narration string   `xml:"narration"`
}

// LoadFile reads an actions file and builds a Catalogue from it.
//
// Precondition: path must point to a readable XML actions file.
// Postcondition: Returns a populated Catalogue or a non-nil error.
func LoadFile(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading actions file %s: %w", path, err)
	}
	c, err := LoadXML(data)
	if err != nil {
		return nil, fmt.Errorf("loading actions file %s: %w", path, err)
	}
	return c, nil
}

// LoadXML parses actions from XML bytes into a Catalogue.
//
// Precondition: data must be an <actions> document.
// Postcondition: Returns a populated Catalogue or a non-nil error.
func LoadXML(data []byte) (*Catalogue, error) {
	var file xmlActionsFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing actions XML: %w", err)
	}
	if len(file.Actions) == 0 {
		return nil, ErrNoActions
	}

	c := NewCatalogue()
	for i, xa := range file.Actions {
		if err := c.Register(convertXMLAction(xa)); err != nil {
			return nil, fmt.Errorf("action %d: %w", i+1, err)
		}
	}
	return c, nil
}

// convertXMLAction converts a parsed XML action into the domain type.
func convertXMLAction(xa xmlAction) *Action {
	return &Action{
		Triggers:  trimAll(xa.Triggers),
		Subjects:  trimAll(xa.Subjects),
		Consumed:  trimAll(xa.Consumed),
		Produced:  trimAll(xa.Produced),
		Narration: strings.TrimSpace(xa.Narration),
	}
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
