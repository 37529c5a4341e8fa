package world

import (
	"fmt"
	"sort"
	"strings"
)

// ContainerKind distinguishes the two places an entity can live.
type ContainerKind int

const (
	// InLocation means the entity is held by a location.
	InLocation ContainerKind = iota
	// InInventory means the entity is carried by a player.
	InInventory
)

// Container names the location or player holding an entity.
type Container struct {
	Kind ContainerKind
	// Name is the location name or the player name.
	Name string
}

// AtLocation returns a Container for the named location.
func AtLocation(name string) Container { return Container{Kind: InLocation, Name: name} }

// InInventoryOf returns a Container for the named player's inventory.
func InInventoryOf(player string) Container { return Container{Kind: InInventory, Name: player} }

// World is the complete game state: locations, directed paths and players.
//
// World is not safe for concurrent use; callers serialise access.
type World struct {
	locations map[string]*Location
	order     []string
	paths     map[string][]string
	players   map[string]*Player
	joined    []string
	start     string
}

// New assembles a World from loaded locations and paths.
//
// Precondition: locations must be non-empty and list the start location first.
// Postcondition: Returns a World containing a storeroom, or an error when names
// collide or a path references an unknown location.
func New(locations []*Location, paths [][2]string) (*World, error) {
	if len(locations) == 0 {
		return nil, fmt.Errorf("world has no locations")
	}
	w := &World{
		locations: make(map[string]*Location, len(locations)+1),
		paths:     make(map[string][]string),
		players:   make(map[string]*Player),
	}
	seen := make(map[string]string)
	for _, loc := range locations {
		k := key(loc.Name)
		if k == "" {
			return nil, fmt.Errorf("location with empty name")
		}
		if prev, ok := seen[k]; ok {
			return nil, fmt.Errorf("duplicate name %q (already used by %s)", loc.Name, prev)
		}
		seen[k] = "location"
		for _, e := range loc.Entities() {
			ek := key(e.Name)
			if prev, ok := seen[ek]; ok {
				return nil, fmt.Errorf("duplicate name %q in %s (already used by %s)", e.Name, loc.Name, prev)
			}
			seen[ek] = "an entity in " + loc.Name
		}
		w.locations[k] = loc
		w.order = append(w.order, k)
	}
	w.start = w.order[0]
	if w.start == Storeroom {
		return nil, fmt.Errorf("the start location cannot be the storeroom")
	}
	if _, ok := w.locations[Storeroom]; !ok {
		w.locations[Storeroom] = NewLocation(Storeroom, storeroomDescription)
		w.order = append(w.order, Storeroom)
	}
	for _, p := range paths {
		from, to := key(p[0]), key(p[1])
		if _, ok := w.locations[from]; !ok {
			return nil, fmt.Errorf("path from unknown location %q", p[0])
		}
		if _, ok := w.locations[to]; !ok {
			return nil, fmt.Errorf("path to unknown location %q", p[1])
		}
		w.AddPath(from, to)
	}
	return w, nil
}

// Start returns the start location.
func (w *World) Start() *Location { return w.locations[w.start] }

// Location returns the named location.
func (w *World) Location(name string) (*Location, bool) {
	l, ok := w.locations[key(name)]
	return l, ok
}

// Locations returns every location in load order, storeroom included.
func (w *World) Locations() []*Location {
	out := make([]*Location, 0, len(w.order))
	for _, k := range w.order {
		out = append(out, w.locations[k])
	}
	return out
}

// IsLocation reports whether name identifies a location.
func (w *World) IsLocation(name string) bool {
	_, ok := w.locations[key(name)]
	return ok
}

// Find returns the entity with the given name and the container holding it.
//
// Postcondition: Returns ok=false when no location or inventory holds the entity.
func (w *World) Find(name string) (Entity, Container, bool) {
	for _, k := range w.order {
		loc := w.locations[k]
		if e, ok := loc.Find(name); ok {
			return e, AtLocation(loc.Name), true
		}
	}
	for _, pk := range w.joined {
		p := w.players[pk]
		if i := indexOf(p.inventory, name); i >= 0 {
			return p.inventory[i], InInventoryOf(p.Name), true
		}
	}
	return Entity{}, Container{}, false
}

// EntityNames returns the names of every entity in the world, wherever held.
func (w *World) EntityNames() []string {
	var out []string
	for _, k := range w.order {
		for _, e := range w.locations[k].Entities() {
			out = append(out, e.Name)
		}
	}
	for _, pk := range w.joined {
		for _, e := range w.players[pk].inventory {
			out = append(out, e.Name)
		}
	}
	return out
}

// LocationNames returns the names of every location in load order.
func (w *World) LocationNames() []string {
	out := make([]string, 0, len(w.order))
	for _, k := range w.order {
		out = append(out, w.locations[k].Name)
	}
	return out
}

// MoveEntity removes the named entity from its current container and places
// it into dst.
//
// Precondition: dst must name an existing location or player.
// Postcondition: The entity is held only by dst. Moving into a player's
// inventory is only valid for artefacts.
func (w *World) MoveEntity(name string, dst Container) error {
	e, src, ok := w.Find(name)
	if !ok {
		return fmt.Errorf("entity %q does not exist", name)
	}
	var put func(Entity)
	switch dst.Kind {
	case InLocation:
		loc, ok := w.locations[key(dst.Name)]
		if !ok {
			return fmt.Errorf("location %q does not exist", dst.Name)
		}
		put = loc.Add
	case InInventory:
		p, ok := w.players[key(dst.Name)]
		if !ok {
			return fmt.Errorf("player %q does not exist", dst.Name)
		}
		if e.Kind != Artefact {
			return fmt.Errorf("%s is not an artefact", e.Name)
		}
		put = func(e Entity) { p.inventory = append(p.inventory, e) }
	}
	switch src.Kind {
	case InLocation:
		w.locations[key(src.Name)].Remove(e.Name)
	case InInventory:
		w.players[key(src.Name)].take(e.Name)
	}
	put(e)
	return nil
}

// HasPath reports whether a directed path from -> to exists.
func (w *World) HasPath(from, to string) bool {
	for _, d := range w.paths[key(from)] {
		if d == key(to) {
			return true
		}
	}
	return false
}

// AddPath creates the directed path from -> to. Existing paths are left alone.
func (w *World) AddPath(from, to string) {
	f, t := key(from), key(to)
	if w.HasPath(f, t) {
		return
	}
	w.paths[f] = append(w.paths[f], t)
}

// RemovePath deletes the directed path from -> to if present.
func (w *World) RemovePath(from, to string) {
	f, t := key(from), key(to)
	dests := w.paths[f]
	for i, d := range dests {
		if d == t {
			w.paths[f] = append(dests[:i], dests[i+1:]...)
			return
		}
	}
}

// Destinations returns the names of locations reachable from the named
// location, in the order the paths were created. The storeroom is never listed.
func (w *World) Destinations(from string) []string {
	var out []string
	for _, d := range w.paths[key(from)] {
		if d == Storeroom {
			continue
		}
		out = append(out, w.locations[d].Name)
	}
	return out
}

// Player returns the named player.
func (w *World) Player(name string) (*Player, bool) {
	p, ok := w.players[key(name)]
	return p, ok
}

// Players returns every player in join order.
func (w *World) Players() []*Player {
	out := make([]*Player, 0, len(w.joined))
	for _, k := range w.joined {
		out = append(out, w.players[k])
	}
	return out
}

// PlayerNames returns every player's name in join order.
func (w *World) PlayerNames() []string {
	out := make([]string, 0, len(w.joined))
	for _, k := range w.joined {
		out = append(out, w.players[k].Name)
	}
	return out
}

// EnsurePlayer returns the named player, creating them at the start location
// with full health if this is their first appearance.
//
// Postcondition: Returns the player and whether they were created by this call.
func (w *World) EnsurePlayer(name string) (*Player, bool) {
	k := key(name)
	if p, ok := w.players[k]; ok {
		return p, false
	}
	p := &Player{Name: strings.TrimSpace(name), Location: w.Start().Name, Health: MaxHealth}
	w.players[k] = p
	w.joined = append(w.joined, k)
	w.Start().addPlayer(p.Name)
	return p, true
}

// MovePlayer relocates the named player to the named location.
//
// Precondition: both the player and the location must exist.
func (w *World) MovePlayer(name, to string) error {
	p, ok := w.players[key(name)]
	if !ok {
		return fmt.Errorf("player %q does not exist", name)
	}
	dst, ok := w.locations[key(to)]
	if !ok {
		return fmt.Errorf("location %q does not exist", to)
	}
	if cur, ok := w.locations[key(p.Location)]; ok {
		cur.removePlayer(p.Name)
	}
	dst.addPlayer(p.Name)
	p.Location = dst.Name
	return nil
}

// Perspective renders what the named player sees at their location: the
// location, its entities, any other players there and the reachable destinations.
func (w *World) Perspective(player string) string {
	p, ok := w.players[key(player)]
	if !ok {
		return ""
	}
	loc := w.locations[key(p.Location)]
	var b strings.Builder
	fmt.Fprintf(&b, "You are in %s\n", loc.Description)
	b.WriteString("You can see:\n")
	for _, e := range loc.Entities() {
		fmt.Fprintf(&b, "%s: %s\n", e.Name, e.Description)
	}
	for _, other := range loc.players {
		if strings.EqualFold(other, p.Name) {
			continue
		}
		fmt.Fprintf(&b, "Player: %s\n", other)
	}
	b.WriteString("You can access from here:\n")
	for _, d := range w.Destinations(loc.Name) {
		fmt.Fprintf(&b, "%s\n", d)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Dump renders the whole world state for diagnostics. Each location, sorted by
// name, is listed with its artefacts, characters, furniture and players, followed
// by every directed path as "source-->destination". Every list is sorted so the
// output depends only on where things are.
func (w *World) Dump() string {
	keys := make([]string, 0, len(w.locations))
	for k := range w.locations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		loc := w.locations[k]
		fmt.Fprintf(&b, "%s: ", loc.Name)
		writeGroup(&b, "artefacts", entityNames(loc.artefacts))
		writeGroup(&b, "characters", entityNames(loc.characters))
		writeGroup(&b, "furniture", entityNames(loc.furniture))
		writeGroup(&b, "players", sorted(loc.players))
		b.WriteString("\n")
	}
	b.WriteString("Paths:\n")
	var edges []string
	for _, src := range keys {
		for _, dst := range w.paths[src] {
			edges = append(edges, w.locations[src].Name+"-->"+w.locations[dst].Name)
		}
	}
	sort.Strings(edges)
	for _, e := range edges {
		b.WriteString(e)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeGroup(b *strings.Builder, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "[%s]: ", label)
	for _, n := range names {
		b.WriteString(n)
		b.WriteString(",")
	}
}

func entityNames(s []Entity) []string {
	out := make([]string, 0, len(s))
	for _, e := range s {
		out = append(out, e.Name)
	}
	sort.Strings(out)
	return out
}

func sorted(s []string) []string {
	out := cloneSlice(s)
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of the world. Mutating the copy never affects w.
func (w *World) Clone() *World {
	c := &World{
		locations: make(map[string]*Location, len(w.locations)),
		order:     cloneSlice(w.order),
		paths:     make(map[string][]string, len(w.paths)),
		players:   make(map[string]*Player, len(w.players)),
		joined:    cloneSlice(w.joined),
		start:     w.start,
	}
	for k, l := range w.locations {
		c.locations[k] = l.clone()
	}
	for k, d := range w.paths {
		c.paths[k] = cloneSlice(d)
	}
	for k, p := range w.players {
		c.players[k] = p.clone()
	}
	return c
}
