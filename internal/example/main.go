package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lesiw.io/cronsim"
	"lesiw.io/cronsim/explain"
)

var (
	count = flag.Int("n", 5, "number of fire times to print")
	zone  = flag.String("tz", "America/New_York", "time zone")
)

func main() {
	flag.Parse()
	expr := "eb eb * * lb"
	if flag.NArg() > 0 {
		expr = flag.Arg(0)
	}
	if err := run(expr); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run(expr string) (err error) {
	ctx := context.Background()
	var pool *pgxpool.Pool
	for n := range 3 {
		pool, err = pgxpool.New(ctx, "")
		if err == nil {
			err = pool.Ping(ctx)
		}
		if err != nil {
			time.Sleep(time.Duration(n) * time.Second)
			continue
		}
		break
	}
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	defer pool.Close()

	store, err := cronsim.NewPgxCalendar(pool, 17*time.Hour)
	if err != nil {
		return err
	}
	cal, err := store.Load(ctx)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(*zone)
	if err != nil {
		return err
	}
	opts := cronsim.Options{Calendar: cal}

	desc, err := explain.Explain(expr, opts)
	if err != nil {
		return err
	}
	slog.Info("schedule", "expr", expr, "desc", desc)

	it, err := cronsim.New(expr, time.Now().In(loc), opts)
	if err != nil {
		return err
	}
	n := 0
	for t := range it.All() {
		slog.Info("fire", "at", t.Format(time.RFC3339))
		if n++; n == *count {
			break
		}
	}
	return nil
}
