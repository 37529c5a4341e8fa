package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	hall := NewLocation("Hall", "A long hall")
	hall.Add(Entity{Name: "Lamp", Description: "A brass lamp", Kind: Artefact})
	hall.Add(Entity{Name: "bench", Description: "A wooden bench", Kind: Furniture})
	yard := NewLocation("yard", "An open yard")
	yard.Add(Entity{Name: "dog", Description: "A sleepy dog", Kind: Character})
	store := NewLocation("storeroom", "Storage")
	store.Add(Entity{Name: "bone", Description: "A juicy bone", Kind: Artefact})

	w, err := New([]*Location{hall, yard, store}, [][2]string{{"hall", "yard"}, {"yard", "storeroom"}})
	require.NoError(t, err)
	return w
}

func TestNew_RejectsEmpty(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestNew_RejectsStoreroomStart(t *testing.T) {
	_, err := New([]*Location{NewLocation("storeroom", "s")}, nil)
	assert.Error(t, err)
}

func TestNew_RejectsEntityNamedLikeLocation(t *testing.T) {
	hall := NewLocation("hall", "h")
	hall.Add(Entity{Name: "Yard", Kind: Artefact})
	_, err := New([]*Location{hall, NewLocation("yard", "y")}, nil)
	assert.Error(t, err)
}

func TestEnsurePlayer_CreatesAtStartOnce(t *testing.T) {
	w := newTestWorld(t)

	p, created := w.EnsurePlayer("Simon")
	require.True(t, created)
	assert.Equal(t, "Hall", p.Location)
	assert.Equal(t, MaxHealth, p.Health)
	assert.True(t, w.Start().HasPlayer("simon"))

	again, created := w.EnsurePlayer("SIMON")
	assert.False(t, created)
	assert.Same(t, p, again)
	assert.Len(t, w.Players(), 1)
}

func TestMoveEntity_BetweenContainers(t *testing.T) {
	w := newTestWorld(t)
	w.EnsurePlayer("simon")

	require.NoError(t, w.MoveEntity("lamp", InInventoryOf("simon")))
	p, _ := w.Player("simon")
	assert.True(t, p.Holds("LAMP"))
	_, ok := w.Start().Find("lamp")
	assert.False(t, ok)

	require.NoError(t, w.MoveEntity("lamp", AtLocation("yard")))
	assert.False(t, p.Holds("lamp"))
	_, c, ok := w.Find("lamp")
	require.True(t, ok)
	assert.Equal(t, AtLocation("yard"), c)
}

func TestMoveEntity_OnlyArtefactsIntoInventory(t *testing.T) {
	w := newTestWorld(t)
	w.EnsurePlayer("simon")
	assert.Error(t, w.MoveEntity("bench", InInventoryOf("simon")))
	_, c, _ := w.Find("bench")
	assert.Equal(t, AtLocation("Hall"), c)
}

func TestMoveEntity_Unknown(t *testing.T) {
	w := newTestWorld(t)
	assert.Error(t, w.MoveEntity("unicorn", AtLocation("hall")))
	assert.Error(t, w.MoveEntity("lamp", AtLocation("moon")))
	assert.Error(t, w.MoveEntity("lamp", InInventoryOf("nobody")))
}

func TestPaths_AddRemoveIdempotent(t *testing.T) {
	w := newTestWorld(t)

	w.AddPath("hall", "yard")
	assert.Equal(t, []string{"yard"}, w.Destinations("hall"))

	w.AddPath("yard", "hall")
	assert.True(t, w.HasPath("YARD", "HALL"))

	w.RemovePath("yard", "hall")
	w.RemovePath("yard", "hall")
	assert.False(t, w.HasPath("yard", "hall"))
}

func TestDestinations_HidesStoreroom(t *testing.T) {
	w := newTestWorld(t)
	assert.True(t, w.HasPath("yard", "storeroom"))
	assert.Empty(t, w.Destinations("yard"))
}

func TestPerspective(t *testing.T) {
	w := newTestWorld(t)
	w.EnsurePlayer("simon")
	w.EnsurePlayer("sion")

	got := w.Perspective("simon")
	assert.Equal(t, "You are in A long hall\n"+
		"You can see:\n"+
		"Lamp: A brass lamp\n"+
		"bench: A wooden bench\n"+
		"Player: sion\n"+
		"You can access from here:\n"+
		"yard", got)
}

func TestDump(t *testing.T) {
	w := newTestWorld(t)
	w.EnsurePlayer("simon")

	assert.Equal(t, "Hall: [artefacts]: Lamp,[furniture]: bench,[players]: simon,\n"+
		"storeroom: [artefacts]: bone,\n"+
		"yard: [characters]: dog,\n"+
		"Paths:\n"+
		"Hall-->yard\n"+
		"yard-->storeroom", w.Dump())
}

func TestClone_IsIndependent(t *testing.T) {
	w := newTestWorld(t)
	w.EnsurePlayer("simon")
	before := w.Dump()

	c := w.Clone()
	require.NoError(t, c.MoveEntity("lamp", InInventoryOf("simon")))
	c.AddPath("yard", "hall")
	cp, _ := c.Player("simon")
	cp.AdjustHealth(-2)
	require.NoError(t, c.MovePlayer("simon", "yard"))

	assert.Equal(t, before, w.Dump())
	p, _ := w.Player("simon")
	assert.Equal(t, MaxHealth, p.Health)
	assert.Equal(t, w, w.Clone())
}

func TestMovePlayer(t *testing.T) {
	w := newTestWorld(t)
	w.EnsurePlayer("simon")

	require.NoError(t, w.MovePlayer("simon", "YARD"))
	p, _ := w.Player("simon")
	assert.Equal(t, "yard", p.Location)
	assert.False(t, w.Start().HasPlayer("simon"))
	loc, _ := w.Location("yard")
	assert.Equal(t, []string{"simon"}, loc.Players())

	assert.Error(t, w.MovePlayer("simon", "moon"))
	assert.Error(t, w.MovePlayer("nobody", "yard"))
}

func TestProperty_AdjustHealthStaysInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := &Player{Name: "p", Health: MaxHealth}
		deltas := rapid.SliceOf(rapid.IntRange(-5, 5)).Draw(rt, "deltas")
		for _, d := range deltas {
			h := p.AdjustHealth(d)
			if h < 0 || h > MaxHealth {
				rt.Fatalf("health %d out of range after delta %d", h, d)
			}
		}
	})
}

func TestProperty_MoveKeepsEntityUnique(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		w := newTestWorld(t)
		w.EnsurePlayer("simon")
		names := []string{"lamp", "bone"}
		dests := []Container{AtLocation("hall"), AtLocation("yard"), AtLocation("storeroom"), InInventoryOf("simon")}

		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			name := rapid.SampledFrom(names).Draw(rt, "name")
			dst := rapid.SampledFrom(dests).Draw(rt, "dst")
			if err := w.MoveEntity(name, dst); err != nil {
				rt.Fatalf("move %s: %v", name, err)
			}
		}

		total := len(w.EntityNames())
		if total != 4 {
			rt.Fatalf("expected 4 entities, found %d", total)
		}
	})
}
