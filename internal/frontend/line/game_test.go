package line_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/stag/internal/config"
	"github.com/cory-johannsen/stag/internal/frontend/line"
	"github.com/cory-johannsen/stag/internal/game/engine"
	"github.com/cory-johannsen/stag/internal/game/session"
	"github.com/cory-johannsen/stag/internal/testutil"
)

func startGame(t *testing.T) string {
	t.Helper()
	logger := zaptest.NewLogger(t)
	interp, err := engine.Load(context.Background(),
		"../../../content/basic-entities.dot", "../../../content/basic-actions.xml",
		engine.WithLogger(logger))
	require.NoError(t, err)

	cfg := config.ListenerConfig{Host: "127.0.0.1", Port: 0, ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}
	acc := line.NewAcceptor(cfg, session.NewRouter(interp, logger), logger)
	go func() { _ = acc.ListenAndServe() }()
	t.Cleanup(acc.Stop)

	require.Eventually(t, func() bool { return acc.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	return acc.Addr()
}

func TestGameOverTCP(t *testing.T) {
	addr := startGame(t)

	look := testutil.Exchange(t, addr, "simon: look")
	assert.True(t, strings.HasPrefix(look, "You are in"), look)
	assert.Contains(t, look, "potion")

	assert.Equal(t, "simon picked up axe", testutil.Exchange(t, addr, "simon: get axe"))
	assert.Equal(t, "The player has\naxe", testutil.Exchange(t, addr, "simon: inv"))

	reply := testutil.Exchange(t, addr, "simon: dance wildly")
	assert.True(t, strings.HasPrefix(reply, session.ErrorPrefix), reply)

	reply = testutil.Exchange(t, addr, "no colon here")
	assert.True(t, strings.HasPrefix(reply, session.ErrorPrefix), reply)

	dump := testutil.Exchange(t, addr, "simon: gamestate")
	assert.Contains(t, dump, "Paths:")
}

func TestGameOverTCP_PlayersSeeEachOther(t *testing.T) {
	addr := startGame(t)

	testutil.Exchange(t, addr, "simon: look")
	look := testutil.Exchange(t, addr, "sion: look")
	assert.Contains(t, look, "Player: simon")
}
