package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/stag/internal/game/action"
	"github.com/cory-johannsen/stag/internal/game/world"
)

// LoadFiles parses the entities and actions files concurrently.
//
// Precondition: both paths must point to readable files.
// Postcondition: Returns the world and catalogue, or the first error encountered.
func LoadFiles(ctx context.Context, entitiesPath, actionsPath string) (*world.World, *action.Catalogue, error) {
	var (
		w   *world.World
		cat *action.Catalogue
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		w, err = world.LoadFile(entitiesPath)
		return err
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		cat, err = action.LoadFile(actionsPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return w, cat, nil
}

// Load parses both files and builds an Interpreter over them.
//
// Postcondition: Returns a ready Interpreter or a non-nil error.
func Load(ctx context.Context, entitiesPath, actionsPath string, opts ...Option) (*Interpreter, error) {
	w, cat, err := LoadFiles(ctx, entitiesPath, actionsPath)
	if err != nil {
		return nil, err
	}
	return New(w, cat, opts...)
}
