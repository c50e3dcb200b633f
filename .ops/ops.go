package main

import (
	"context"
	"os"

	"labs.lesiw.io/ops/golang"
	"labs.lesiw.io/ops/golib"

	"lesiw.io/command"
	"lesiw.io/command/sys"
	"lesiw.io/ops"
)

type Ops struct{ golib.Ops }

var docker = command.Shell(sys.Machine(), "docker")

func main() {
	golang.GoModReplaceAllowed = true
	if len(os.Args) < 2 {
		os.Args = append(os.Args, "check")
	}
	ops.Handle(Ops{})
}

// ExampleUp runs the example against a fresh holiday database.
func (o Ops) ExampleUp(ctx context.Context) error {
	if err := o.ExampleDown(ctx); err != nil {
		return err
	}
	return compose(ctx, "up", "--remove-orphans", "--build",
		"--abort-on-container-exit", "--exit-code-from", "example")
}

func (Ops) ExampleDown(ctx context.Context) error {
	return compose(ctx, "down", "--remove-orphans", "--volumes")
}

func compose(ctx context.Context, args ...string) error {
	ctx = command.WithEnv(ctx,
		map[string]string{"PWD": "internal/example"},
	)
	return docker.Exec(ctx,
		append([]string{"docker", "compose"}, args...)...,
	)
}
