// Package engine interprets player utterances against the game world. All
// command processing is serialised by a single mutex around the world.
package engine

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/stag/internal/game/action"
	"github.com/cory-johannsen/stag/internal/game/command"
	"github.com/cory-johannsen/stag/internal/game/world"
)

// DefaultDeathNarration is returned when a player's health reaches zero.
// The verb receives the player's name.
const DefaultDeathNarration = "%s died and lost all of their items, and has respawned at the start location"

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger used for per-command debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Interpreter) { i.logger = logger }
}

// WithDeathNarration overrides DefaultDeathNarration. A %s verb, if present,
// receives the player's name.
func WithDeathNarration(narration string) Option {
	return func(i *Interpreter) {
		if narration != "" {
			i.deathNarration = narration
		}
	}
}

// Interpreter executes player commands against a world.
// All methods are safe for concurrent use.
type Interpreter struct {
	mu             sync.Mutex
	world          *world.World
	catalogue      *action.Catalogue
	builtins       *command.Registry
	deathNarration string
	logger         *zap.Logger
}

// New creates an Interpreter over w and catalogue.
//
// Precondition: w and catalogue must be non-nil.
// Postcondition: Returns an Interpreter, or an error if an action consumes or
// produces a name that is neither an entity, a location, nor "health".
func New(w *world.World, catalogue *action.Catalogue, opts ...Option) (*Interpreter, error) {
	if err := checkCatalogue(w, catalogue); err != nil {
		return nil, err
	}
	i := &Interpreter{
		world:          w,
		catalogue:      catalogue,
		builtins:       command.DefaultRegistry(),
		deathNarration: DefaultDeathNarration,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// checkCatalogue verifies that every consumed and produced name exists, so
// that mutation can never fail half way through an action.
func checkCatalogue(w *world.World, catalogue *action.Catalogue) error {
	for _, a := range catalogue.Actions() {
		for _, names := range [][]string{a.Consumed, a.Produced} {
			for _, n := range names {
				if strings.EqualFold(n, action.Health) || w.IsLocation(n) {
					continue
				}
				if _, _, ok := w.Find(n); !ok {
					return fmt.Errorf("action %q refers to unknown entity %q", a.Triggers[0], n)
				}
			}
		}
	}
	return nil
}

// Join registers the named player, placing them at the start location on
// first sight.
//
// Postcondition: Returns true if the player was created by this call.
func (i *Interpreter) Join(player string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, created := i.world.EnsurePlayer(player)
	return created
}

// Execute runs text on behalf of player and returns the response. The player
// is created on first sight, even if the command then fails.
//
// Postcondition: On error the world is exactly as it was before the call,
// apart from the player's creation; the error is a *command.Error.
func (i *Interpreter) Execute(player, text string) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	p, created := i.world.EnsurePlayer(player)
	if created {
		i.logger.Info("player joined", zap.String("player", p.Name), zap.String("location", p.Location))
	}

	resp, err := i.dispatch(p, text)
	if err != nil {
		i.logger.Debug("command rejected",
			zap.String("player", p.Name),
			zap.String("text", text),
			zap.Error(err),
		)
		return "", err
	}
	i.logger.Debug("command executed",
		zap.String("player", p.Name),
		zap.String("text", text),
		zap.String("location", p.Location),
	)
	return resp, nil
}

// Dump returns the diagnostic rendering of the whole world.
func (i *Interpreter) Dump() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.world.Dump()
}

// Snapshot returns a deep copy of the current world.
func (i *Interpreter) Snapshot() *world.World {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.world.Clone()
}

// PlayerCount returns the number of players seen so far.
func (i *Interpreter) PlayerCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.world.Players())
}

// dispatch tokenises text and routes it to a built-in verb or custom action.
func (i *Interpreter) dispatch(p *world.Player, text string) (string, error) {
	tokens := command.Tokenise(text, i.vocabulary())

	for _, other := range tokens.Players {
		if !strings.EqualFold(other, p.Name) {
			return "", command.Errorf(command.KindCrossPlayer, "Name(s) of other players are not allowed in command")
		}
	}

	if len(tokens.Triggers) == 0 {
		msg := "No action found"
		if hint, ok := command.Suggest(text, i.triggerWords()); ok {
			msg = fmt.Sprintf("%s, did you mean %q?", msg, hint)
		}
		return "", command.Errorf(command.KindNoTrigger, "%s", msg)
	}

	if verb, ok, err := i.builtinVerb(tokens.Triggers); err != nil {
		return "", err
	} else if ok {
		return i.runBuiltin(p, verb, tokens.Subjects)
	}
	return i.runAction(p, tokens)
}

func (i *Interpreter) vocabulary() command.Vocabulary {
	return command.Vocabulary{
		Triggers: i.triggerWords(),
		Subjects: append(i.world.EntityNames(), i.world.LocationNames()...),
		Players:  i.world.PlayerNames(),
	}
}

func (i *Interpreter) triggerWords() []string {
	return append(i.builtins.Words(), i.catalogue.Triggers()...)
}
