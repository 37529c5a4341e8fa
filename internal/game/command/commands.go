// Package command provides the built-in verb registry, the utterance
// tokeniser, and the error taxonomy for failed commands.
package command

// Handler identifiers mapping built-in verbs to interpreter handlers.
const (
	HandlerInventory = "inventory"
	HandlerGet       = "get"
	HandlerDrop      = "drop"
	HandlerGoto      = "goto"
	HandlerLook      = "look"
	HandlerHealth    = "health"
)

// Command defines a built-in verb.
type Command struct {
	// Name is the canonical verb.
	Name string
	// Aliases are alternate words for this verb.
	Aliases []string
	// Help is the short text the client prints for its local help command.
	Help string
	// Handler maps to the interpreter handler.
	Handler string
	// Subjects is the exact number of subjects the verb takes.
	Subjects int
}

// BuiltinCommands returns all built-in verbs.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "inventory", Aliases: []string{"inv"}, Help: "List the artefacts you carry", Handler: HandlerInventory},
		{Name: "get", Help: "Pick up an artefact in this location", Handler: HandlerGet, Subjects: 1},
		{Name: "drop", Help: "Put down an artefact you carry", Handler: HandlerDrop, Subjects: 1},
		{Name: "goto", Help: "Move to a location reachable from here", Handler: HandlerGoto, Subjects: 1},
		{Name: "look", Help: "Describe this location", Handler: HandlerLook},
		{Name: "health", Help: "Show your health", Handler: HandlerHealth},
	}
}
