// Package world provides the game world model: locations, the entities they
// hold, the directed paths between them, and the players moving through them.
package world

import (
	"fmt"
	"strings"
)

// Storeroom is the reserved location that holds entities not yet in play and
// receives everything consumed by actions. It is never a goto destination.
const Storeroom = "storeroom"

// storeroomDescription is used when the entities file declares no storeroom.
const storeroomDescription = "Storage for any entities not placed in the game"

// MaxHealth is the health a player joins and respawns with.
const MaxHealth = 3

// Kind is the variant of an Entity.
type Kind int

// Entity variants.
const (
	Artefact Kind = iota
	Furniture
	Character
)

// String returns the lowercase plural section name used by the entities file.
func (k Kind) String() string {
	switch k {
	case Artefact:
		return "artefacts"
	case Furniture:
		return "furniture"
	case Character:
		return "characters"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps an entities-file section name onto a Kind.
//
// Postcondition: Returns (kind, true) for "artefacts", "furniture" or "characters"
// (case-insensitive), or (0, false) otherwise.
func ParseKind(section string) (Kind, bool) {
	switch key(section) {
	case "artefacts":
		return Artefact, true
	case "furniture":
		return Furniture, true
	case "characters":
		return Character, true
	}
	return 0, false
}

// Entity is a named item living in exactly one container. Entities are
// identified by their case-insensitive name; Name keeps the display casing.
type Entity struct {
	Name        string
	Description string
	Kind        Kind
}

// Location is a room holding entities and players.
type Location struct {
	// Name uniquely identifies the location (case-insensitive).
	Name string
	// Description is shown to players looking around.
	Description string

	characters []Entity
	artefacts  []Entity
	furniture  []Entity
	players    []string
}

// NewLocation creates an empty location.
//
// Precondition: name must be non-empty.
func NewLocation(name, description string) *Location {
	return &Location{Name: name, Description: description}
}

func (l *Location) slot(k Kind) *[]Entity {
	switch k {
	case Character:
		return &l.characters
	case Furniture:
		return &l.furniture
	default:
		return &l.artefacts
	}
}

// Add places e into the collection matching its kind.
//
// Postcondition: e is the last entry of its kind's collection.
func (l *Location) Add(e Entity) {
	s := l.slot(e.Kind)
	*s = append(*s, e)
}

// Find returns the entity with the given name from any of the three collections.
func (l *Location) Find(name string) (Entity, bool) {
	for _, s := range [][]Entity{l.characters, l.artefacts, l.furniture} {
		if i := indexOf(s, name); i >= 0 {
			return s[i], true
		}
	}
	return Entity{}, false
}

// Artefact returns the named entity only if it is an artefact in this location.
func (l *Location) Artefact(name string) (Entity, bool) {
	if i := indexOf(l.artefacts, name); i >= 0 {
		return l.artefacts[i], true
	}
	return Entity{}, false
}

// Remove takes the named entity out of the location.
//
// Postcondition: Returns the removed entity and true, or false with the location unchanged.
func (l *Location) Remove(name string) (Entity, bool) {
	for _, k := range []Kind{Character, Artefact, Furniture} {
		s := l.slot(k)
		if i := indexOf(*s, name); i >= 0 {
			e := (*s)[i]
			*s = append((*s)[:i], (*s)[i+1:]...)
			return e, true
		}
	}
	return Entity{}, false
}

// Characters returns a copy of the characters in the location.
func (l *Location) Characters() []Entity { return copyEntities(l.characters) }

// Artefacts returns a copy of the artefacts in the location.
func (l *Location) Artefacts() []Entity { return copyEntities(l.artefacts) }

// Furniture returns a copy of the furniture in the location.
func (l *Location) Furniture() []Entity { return copyEntities(l.furniture) }

// Entities returns characters, artefacts and furniture, in that order.
func (l *Location) Entities() []Entity {
	out := make([]Entity, 0, len(l.characters)+len(l.artefacts)+len(l.furniture))
	out = append(out, l.characters...)
	out = append(out, l.artefacts...)
	return append(out, l.furniture...)
}

// Players returns the names of the players currently in the location.
func (l *Location) Players() []string {
	out := make([]string, len(l.players))
	copy(out, l.players)
	return out
}

// HasPlayer reports whether the named player is in the location.
func (l *Location) HasPlayer(name string) bool {
	for _, p := range l.players {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

func (l *Location) addPlayer(name string) {
	if !l.HasPlayer(name) {
		l.players = append(l.players, name)
	}
}

func (l *Location) removePlayer(name string) {
	for i, p := range l.players {
		if strings.EqualFold(p, name) {
			l.players = append(l.players[:i], l.players[i+1:]...)
			return
		}
	}
}

func (l *Location) clone() *Location {
	return &Location{
		Name:        l.Name,
		Description: l.Description,
		characters:  cloneSlice(l.characters),
		artefacts:   cloneSlice(l.artefacts),
		furniture:   cloneSlice(l.furniture),
		players:     cloneSlice(l.players),
	}
}

// Player is a participant identified by a case-insensitive name.
type Player struct {
	// Name is the display name from the player's first command.
	Name string
	// Location is the name of the location the player is in.
	Location string
	// Health is in [0, MaxHealth]; it is 0 only while death is being handled.
	Health int

	inventory []Entity
}

// Inventory returns a copy of the artefacts the player carries.
func (p *Player) Inventory() []Entity { return copyEntities(p.inventory) }

// Holds reports whether the player carries the named artefact.
func (p *Player) Holds(name string) bool {
	return indexOf(p.inventory, name) >= 0
}

// AdjustHealth adds delta to the player's health, clamped to [0, MaxHealth].
//
// Postcondition: Returns the new health.
func (p *Player) AdjustHealth(delta int) int {
	p.Health = max(0, min(MaxHealth, p.Health+delta))
	return p.Health
}

func (p *Player) take(name string) (Entity, bool) {
	if i := indexOf(p.inventory, name); i >= 0 {
		e := p.inventory[i]
		p.inventory = append(p.inventory[:i], p.inventory[i+1:]...)
		return e, true
	}
	return Entity{}, false
}

func (p *Player) clone() *Player {
	c := *p
	c.inventory = cloneSlice(p.inventory)
	return &c
}

func indexOf(entities []Entity, name string) int {
	for i, e := range entities {
		if strings.EqualFold(e.Name, name) {
			return i
		}
	}
	return -1
}

func copyEntities(s []Entity) []Entity {
	out := make([]Entity, len(s))
	copy(out, s)
	return out
}

// cloneSlice copies s, keeping a nil slice nil.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// key normalises a name for case-insensitive lookup.
func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
