// Package session routes "name: command" lines from connected clients to the
// interpreter and renders the reply.
package session

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/stag/internal/game/command"
)

// ErrorPrefix begins every failure reply.
const ErrorPrefix = "[ERROR]: "

// gamestateCommand is the diagnostic command that dumps the whole world.
const gamestateCommand = "gamestate"

var validName = regexp.MustCompile(`^[A-Za-z '-]+$`)

// Interpreter executes commands for players.
type Interpreter interface {
	Join(player string) bool
	Execute(player, text string) (string, error)
	Dump() string
}

// Exchange is one handled command and its reply.
type Exchange struct {
	Player   string
	Command  string
	Response string
	// Kind is empty on success, or the command.Kind label of the failure.
	Kind string
	At   time.Time
}

// Failed reports whether the command was rejected.
func (x Exchange) Failed() bool { return x.Kind != "" }

// Journal receives every handled exchange.
type Journal interface {
	Record(ctx context.Context, x Exchange) error
}

// JournalFunc adapts a function to the Journal interface.
type JournalFunc func(ctx context.Context, x Exchange) error

// Record calls f.
func (f JournalFunc) Record(ctx context.Context, x Exchange) error { return f(ctx, x) }

// Recorder receives command metrics.
type Recorder interface {
	CommandHandled(ctx context.Context, outcome string, elapsed time.Duration)
	PlayerJoined(ctx context.Context)
}

// Option configures a Router.
type Option func(*Router)

// WithJournal sends every exchange to j. Journal failures are logged, never returned to the player.
func WithJournal(j Journal) Option {
	return func(r *Router) { r.journal = j }
}

// WithRecorder reports metrics to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Router) { r.recorder = rec }
}

// Router parses client lines and dispatches them to an Interpreter.
type Router struct {
	interp   Interpreter
	logger   *zap.Logger
	journal  Journal
	recorder Recorder
	now      func() time.Time
}

// NewRouter creates a Router.
//
// Precondition: interp and logger must be non-nil.
func NewRouter(interp Interpreter, logger *zap.Logger, opts ...Option) *Router {
	r := &Router{interp: interp, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ParseLine splits a line of the form "name: command" at the first colon.
//
// Postcondition: Returns the trimmed player name and the command text, or a
// *command.Error of kind KindParse.
func ParseLine(line string) (string, string, error) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", command.Errorf(command.KindParse, "Command must be of the form <player name>: <command>")
	}
	name := strings.TrimSpace(line[:idx])
	if !validName.MatchString(name) {
		return "", "", command.Errorf(command.KindParse,
			"Invalid player name %q, names may only contain letters, spaces, apostrophes and hyphens", name)
	}
	return name, line[idx+1:], nil
}

// Handle executes one client line and returns the reply text. Failures are
// rendered with ErrorPrefix; Handle itself never fails.
func (r *Router) Handle(ctx context.Context, line string) string {
	start := r.now()
	name, text, err := ParseLine(line)
	if err != nil {
		return r.finish(ctx, start, Exchange{Command: line}, err)
	}

	if r.interp.Join(name) && r.recorder != nil {
		r.recorder.PlayerJoined(ctx)
	}

	x := Exchange{Player: name, Command: strings.TrimSpace(text)}
	if strings.EqualFold(x.Command, gamestateCommand) {
		x.Response = r.interp.Dump()
		return r.finish(ctx, start, x, nil)
	}

	x.Response, err = r.interp.Execute(name, text)
	return r.finish(ctx, start, x, err)
}

func (r *Router) finish(ctx context.Context, start time.Time, x Exchange, err error) string {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if kind, ok := command.KindOf(err); ok {
			outcome = kind.String()
		} else {
			r.logger.Error("unexpected interpreter failure", zap.String("player", x.Player), zap.Error(err))
		}
		x.Kind = outcome
		x.Response = ErrorPrefix + err.Error()
	}
	x.At = start

	if r.recorder != nil {
		r.recorder.CommandHandled(ctx, outcome, r.now().Sub(start))
	}
	if r.journal != nil {
		if jerr := r.journal.Record(ctx, x); jerr != nil {
			r.logger.Warn("journal record failed", zap.String("player", x.Player), zap.Error(jerr))
		}
	}
	return x.Response
}
