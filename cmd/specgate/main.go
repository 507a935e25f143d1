// specgate - Trust boundary for generated component specifications
// Author: Ariel Frischer
// Source: https://github.com/ariel-frischer/specgate

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/ariel-frischer/specgate/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.ExecuteContext(ctx)
	stop()
	os.Exit(cli.ExitCode(err))
}
