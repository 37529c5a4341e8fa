// Package main is an interactive client for the stag game server. Each line
// typed is sent as one command for the named player.
//
// Usage:
//
//	stagclient [flags] PLAYER_NAME
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/cory-johannsen/stag/internal/client"
)

var (
	flagAddr    = pflag.StringP("addr", "a", "localhost:8888", "Server address in HOST:PORT form.")
	flagWidth   = pflag.IntP("width", "w", 80, "Wrap replies to this many columns; 0 disables wrapping.")
	flagTimeout = pflag.DurationP("timeout", "t", 10*time.Second, "Timeout for each command.")
)

func main() {
	pflag.Parse()
	if pflag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] PLAYER_NAME\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(pflag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(player string) error {
	c := client.New(*flagAddr, player, *flagTimeout)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          player + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("create readline config: %w", err)
	}
	defer rl.Close()

	for {
		text, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, client.HelpCommand) {
			fmt.Fprintln(rl.Stdout(), client.Help())
			continue
		}

		reply, err := c.Send(context.Background(), text)
		if err != nil {
			fmt.Fprintf(rl.Stderr(), "ERROR: %v\n", err)
			continue
		}
		fmt.Fprintln(rl.Stdout(), client.Wrap(reply, *flagWidth))
	}
}
