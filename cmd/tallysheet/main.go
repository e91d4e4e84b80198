package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/andy/tallysheet/internal/app"
	"github.com/andy/tallysheet/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Help and completion never touch the database, which may prompt for a key
	if !skipInit(os.Args[1:]) {
		a, err := app.New(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize app: %v\n", err)
			return 1
		}
		defer a.Close()
		cli.SetApp(a)
	}

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return 0
}

func skipInit(args []string) bool {
	for _, a := range args {
		switch a {
		case "-h", "--help", "help", "completion", "__complete":
			return true
		}
	}
	return false
}
