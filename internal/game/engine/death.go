package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/stag/internal/game/world"
)

// die drops everything p carries where they stand, restores their health
// and sends them back to the start location.
//
// Precondition: p's health is zero.
// Postcondition: p is at the start location with full health and an empty inventory.
func (i *Interpreter) die(p *world.Player) string {
	deathPlace := p.Location
	for _, e := range p.Inventory() {
		i.mustMove(e.Name, world.AtLocation(deathPlace))
	}
	p.AdjustHealth(world.MaxHealth)
	if err := i.world.MovePlayer(p.Name, i.world.Start().Name); err != nil {
		panic(fmt.Sprintf("respawning %s: %v", p.Name, err))
	}
	i.logger.Info("player died",
		zap.String("player", p.Name),
		zap.String("location", deathPlace),
	)
	if strings.Contains(i.deathNarration, "%s") {
		return fmt.Sprintf(i.deathNarration, p.Name)
	}
	return i.deathNarration
}
