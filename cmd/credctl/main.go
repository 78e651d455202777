package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/avetisov/credkeeper/internal/client/cli"
	"github.com/avetisov/credkeeper/internal/client/config"
)

// command returns the first bare word in args, skipping flags and the
// value following a "-flag value" pair.
func command(args []string) string {
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			if !strings.Contains(args[i], "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
			}
			continue
		}
		return args[i]
	}
	return ""
}

func main() {

	args := os.Args[1:]
	cmd := command(args)
	if cmd == "" {
		fmt.Fprintln(os.Stderr, "usage: credctl [-s server-url] register|confirm|login|refresh")
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := config.LoadConfig(args)
	app := cli.NewApp(cfg)

	if err := app.Run(ctx, cmd); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

}
