// Package action provides custom action definitions, the trigger catalogue
// they are looked up through, and the XML actions file loader.
package action

import (
	"fmt"
	"sort"
	"strings"
)

// Reserved names with special meaning inside consumed and produced lists.
const (
	// Health adjusts the acting player's health by one.
	Health = "health"
	// Storeroom is never treated as a path target.
	Storeroom = "storeroom"
)

// Action is a custom game action.
type Action struct {
	// Triggers are the single or multi-word phrases that invoke the action.
	Triggers []string
	// Subjects are the entity or location names the action needs at hand.
	Subjects []string
	// Consumed names are removed from play, or paths closed, or health lost.
	Consumed []string
	// Produced names are brought into play, or paths opened, or health gained.
	Produced []string
	// Narration is returned to the player on success.
	Narration string
}

// HasSubject reports whether name is one of the action's subjects.
func (a *Action) HasSubject(name string) bool {
	for _, s := range a.Subjects {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// Validate checks that the action has at least one trigger and one subject.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (a *Action) Validate() error {
	if len(a.Triggers) == 0 {
		return fmt.Errorf("action %q has no triggers", a.Narration)
	}
	for _, t := range a.Triggers {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("action %q has an empty trigger", a.Narration)
		}
	}
	if len(a.Subjects) == 0 {
		return fmt.Errorf("action %q (%s) has no subjects", a.Narration, a.Triggers[0])
	}
	return nil
}

// Catalogue maps trigger phrases to the actions they may invoke.
type Catalogue struct {
	actions   []*Action
	byTrigger map[string][]*Action // normalised trigger → actions
}

// NewCatalogue creates an empty Catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{byTrigger: make(map[string][]*Action)}
}

// Register validates a and indexes it under each of its triggers.
//
// Precondition: a must not be nil.
// Postcondition: Lookup of any trigger of a includes a, or an error is returned
// and the catalogue is unchanged.
func (c *Catalogue) Register(a *Action) error {
	if err := a.Validate(); err != nil {
		return err
	}
	c.actions = append(c.actions, a)
	for _, t := range a.Triggers {
		k := normalise(t)
		if containsAction(c.byTrigger[k], a) {
			continue
		}
		c.byTrigger[k] = append(c.byTrigger[k], a)
	}
	return nil
}

// Lookup returns the actions registered under trigger, in registration order.
func (c *Catalogue) Lookup(trigger string) []*Action {
	return c.byTrigger[normalise(trigger)]
}

// Actions returns every registered action in registration order.
func (c *Catalogue) Actions() []*Action {
	out := make([]*Action, len(c.actions))
	copy(out, c.actions)
	return out
}

// Triggers returns every registered trigger phrase, sorted.
func (c *Catalogue) Triggers() []string {
	out := make([]string, 0, len(c.byTrigger))
	for t := range c.byTrigger {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered actions.
func (c *Catalogue) Len() int { return len(c.actions) }

func containsAction(s []*Action, a *Action) bool {
	for _, x := range s {
		if x == a {
			return true
		}
	}
	return false
}

// normalise lowercases a phrase and collapses internal whitespace.
func normalise(phrase string) string {
	return strings.ToLower(strings.Join(strings.Fields(phrase), " "))
}
