package engine

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/stag/internal/game/action"
	"github.com/cory-johannsen/stag/internal/game/command"
	"github.com/cory-johannsen/stag/internal/game/world"
)

// runAction resolves tokens to exactly one custom action, checks that every
// subject it needs is within reach, then produces and consumes.
func (i *Interpreter) runAction(p *world.Player, tokens command.Tokens) (string, error) {
	a, err := i.resolve(tokens)
	if err != nil {
		return "", err
	}
	if err := i.checkAvailable(p, a); err != nil {
		return "", err
	}

	for _, name := range a.Produced {
		i.produce(p, name)
	}
	for _, name := range a.Consumed {
		if died := i.consume(p, name); died {
			return i.die(p), nil
		}
	}
	return a.Narration, nil
}

// resolve collects the actions under every trigger found, keeps those naming
// at least one subject found, and requires exactly one to survive.
func (i *Interpreter) resolve(tokens command.Tokens) (*action.Action, error) {
	var valid []*action.Action
	seen := make(map[*action.Action]struct{})
	for _, t := range tokens.Triggers {
		for _, a := range i.catalogue.Lookup(t) {
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			if mentionsAny(a, tokens.Subjects) {
				valid = append(valid, a)
			}
		}
	}

	switch {
	case len(valid) == 0:
		return nil, command.Errorf(command.KindAmbiguous,
			"Input command is ambiguous, no action uses the subjects given, name more than one word: a trigger and its subject")
	case len(valid) > 1:
		return nil, command.Errorf(command.KindAmbiguous,
			"Input command is ambiguous, more than one action matches")
	}

	a := valid[0]
	for _, s := range tokens.Subjects {
		if !a.HasSubject(s) {
			return nil, command.Errorf(command.KindAmbiguous,
				"All the subjects should be from exactly one action, %s is not used by %s", s, a.Triggers[0])
		}
	}
	return a, nil
}

func mentionsAny(a *action.Action, subjects []string) bool {
	for _, s := range subjects {
		if a.HasSubject(s) {
			return true
		}
	}
	return false
}

// checkAvailable requires every subject of a to be carried by p, present in
// p's location, or to be the location itself.
func (i *Interpreter) checkAvailable(p *world.Player, a *action.Action) error {
	loc, _ := i.world.Location(p.Location)
	var missing []string
	for _, s := range a.Subjects {
		if p.Holds(s) || strings.EqualFold(s, loc.Name) {
			continue
		}
		if _, ok := loc.Find(s); ok {
			continue
		}
		missing = append(missing, s)
	}
	if len(missing) > 0 {
		return command.Errorf(command.KindAvailability,
			"Subject(s) required to execute action are missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// produce brings name into play at p's location: health is restored by one,
// a location gains a path from here, and an entity is moved here from
// wherever it is.
func (i *Interpreter) produce(p *world.Player, name string) {
	switch {
	case strings.EqualFold(name, action.Health):
		p.AdjustHealth(1)
	case strings.EqualFold(name, action.Storeroom):
		// reserved
	case i.world.IsLocation(name):
		i.world.AddPath(p.Location, name)
	default:
		if _, c, ok := i.world.Find(name); ok && c.Kind == world.InLocation && strings.EqualFold(c.Name, p.Location) {
			return
		}
		i.mustMove(name, world.AtLocation(p.Location))
	}
}

// consume takes name out of play: health drops by one, a path from here is
// removed, and an entity is moved to the storeroom.
//
// Postcondition: Returns true if p's health reached zero.
func (i *Interpreter) consume(p *world.Player, name string) bool {
	switch {
	case strings.EqualFold(name, action.Health):
		return p.AdjustHealth(-1) == 0
	case strings.EqualFold(name, action.Storeroom):
		// reserved
	case i.world.IsLocation(name):
		i.world.RemovePath(p.Location, name)
	default:
		i.mustMove(name, world.AtLocation(world.Storeroom))
	}
	return false
}

// mustMove moves an entity already known to exist. New checks every
// consumed and produced name, so a failure here is a programming error.
func (i *Interpreter) mustMove(name string, dst world.Container) {
	if err := i.world.MoveEntity(name, dst); err != nil {
		panic(fmt.Sprintf("moving %s: %v", name, err))
	}
}
