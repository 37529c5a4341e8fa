package engine

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/stag/internal/game/command"
	"github.com/cory-johannsen/stag/internal/game/world"
)

// builtinVerb reports whether triggers name a built-in verb. Built-in verbs
// take precedence over custom actions, but may not share an utterance with
// any other verb or trigger.
//
// Postcondition: Returns (verb, true, nil) for a single built-in verb,
// (nil, false, nil) when none is present, or an ambiguity error.
func (i *Interpreter) builtinVerb(triggers []string) (*command.Command, bool, error) {
	var verb *command.Command
	others := 0
	for _, t := range triggers {
		cmd, ok := i.builtins.Resolve(t)
		switch {
		case !ok:
			others++
		case verb == nil:
			verb = cmd
		case verb.Name != cmd.Name:
			return nil, false, command.Errorf(command.KindAmbiguous,
				"Input command is ambiguous, more than one built-in command found: %s and %s", verb.Name, cmd.Name)
		}
	}
	if verb == nil {
		return nil, false, nil
	}
	if others > 0 {
		return nil, false, command.Errorf(command.KindAmbiguous,
			"Input command is ambiguous, %s cannot be combined with more than one action", verb.Name)
	}
	return verb, true, nil
}

func (i *Interpreter) runBuiltin(p *world.Player, verb *command.Command, subjects []string) (string, error) {
	if len(subjects) != verb.Subjects {
		if verb.Subjects == 0 {
			return "", command.Errorf(command.KindArgument, "%s command does not take subjects", verb.Name)
		}
		return "", command.Errorf(command.KindArgument, "%s command requires exactly one subject", verb.Name)
	}

	switch verb.Handler {
	case command.HandlerInventory:
		return inventory(p), nil
	case command.HandlerLook:
		return i.world.Perspective(p.Name), nil
	case command.HandlerHealth:
		return fmt.Sprintf("%s's health is: %d", p.Name, p.Health), nil
	case command.HandlerGet:
		return i.get(p, subjects[0])
	case command.HandlerDrop:
		return i.drop(p, subjects[0])
	case command.HandlerGoto:
		return i.gotoLocation(p, subjects[0])
	default:
		return "", command.Errorf(command.KindNoTrigger, "No action found")
	}
}

func inventory(p *world.Player) string {
	var b strings.Builder
	b.WriteString("The player has")
	for _, e := range p.Inventory() {
		b.WriteString("\n")
		b.WriteString(e.Name)
	}
	return b.String()
}

func (i *Interpreter) get(p *world.Player, name string) (string, error) {
	loc, _ := i.world.Location(p.Location)
	e, ok := loc.Artefact(name)
	if !ok {
		return "", command.Errorf(command.KindArgument, "Artefact could not be found in current location: %s", name)
	}
	if err := i.world.MoveEntity(e.Name, world.InInventoryOf(p.Name)); err != nil {
		return "", command.Errorf(command.KindArgument, "%v", err)
	}
	return fmt.Sprintf("%s picked up %s", p.Name, e.Name), nil
}

func (i *Interpreter) drop(p *world.Player, name string) (string, error) {
	if !p.Holds(name) {
		return "", command.Errorf(command.KindArgument, "Artefact could not be found in player's inventory: %s", name)
	}
	e, _, _ := i.world.Find(name)
	if err := i.world.MoveEntity(e.Name, world.AtLocation(p.Location)); err != nil {
		return "", command.Errorf(command.KindArgument, "%v", err)
	}
	return fmt.Sprintf("%s dropped %s", p.Name, e.Name), nil
}

func (i *Interpreter) gotoLocation(p *world.Player, name string) (string, error) {
	dst, ok := i.world.Location(name)
	if !ok || strings.EqualFold(dst.Name, world.Storeroom) {
		return "", command.Errorf(command.KindArgument, "goto command must have a valid location")
	}
	if strings.EqualFold(dst.Name, p.Location) {
		return "", command.Errorf(command.KindArgument, "You are already at this location")
	}
	if !i.world.HasPath(p.Location, dst.Name) {
		return "", command.Errorf(command.KindArgument, "Location is not accessible from current location of the player")
	}
	if err := i.world.MovePlayer(p.Name, dst.Name); err != nil {
		return "", command.Errorf(command.KindArgument, "%v", err)
	}
	return i.world.Perspective(p.Name), nil
}
