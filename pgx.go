package cronsim

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"lesiw.io/cronsim/internal/stmt"
)

// A PgxConn is a pgx.Conn or pgxpool.Pool.
type PgxConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (
		pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgxCalendar stores Holidays in postgres.
//
// Load reads the whole table once; the returned calendar answers
// iteration queries from memory.
type PgxCalendar struct {
	Log  io.Writer
	Conn PgxConn
	// CutOff is the close of business on dates without an early close.
	CutOff time.Duration
}

// NewPgxCalendar creates the holiday table if needed.
func NewPgxCalendar(conn PgxConn, cutOff time.Duration) (*PgxCalendar, error) {
	p := &PgxCalendar{Conn: conn, CutOff: cutOff}
	return p, p.Init(context.Background())
}

func (p *PgxCalendar) Init(ctx context.Context) (err error) {
	for n := range 3 {
		_, err = p.Conn.Exec(ctx, stmt.CreateHolidayTable)
		if err != nil {
			p.log(fmt.Errorf("create holiday table (attempt %d): %w",
				n+1, err))
			sleep(time.Duration(math.Pow(2, float64(n))) * time.Second)
			continue
		}
		break
	}
	if err != nil {
		return fmt.Errorf("could not create holiday table: %w", err)
	}
	return nil
}

// Load reads the stored holidays.
func (p *PgxCalendar) Load(ctx context.Context) (*Holidays, error) {
	rows, err := p.Conn.Query(ctx, stmt.SelectHolidays)
	if err != nil {
		return nil, fmt.Errorf("SelectHolidays: %w", err)
	}
	h := &Holidays{CutOff: p.CutOff}
	var day time.Time
	var cutOff *int32
	_, err = pgx.ForEachRow(rows, []any{&day, &cutOff}, func() error {
		if cutOff == nil {
			h.Close(day)
		} else {
			h.CloseEarly(day, time.Duration(*cutOff)*time.Minute)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("SelectHolidays: %w", err)
	}
	return h, nil
}

// Save replaces the stored holidays with those of h.
func (p *PgxCalendar) Save(ctx context.Context, h *Holidays) error {
	tx, err := p.Conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err = tx.Exec(ctx, stmt.DeleteHolidays); err != nil {
		return fmt.Errorf("DeleteHolidays: %w", err)
	}
	for _, d := range sortedDays(h.Closed) {
		if !h.Closed[d] {
			continue
		}
		if _, err = tx.Exec(ctx, stmt.InsertHoliday, d, nil); err != nil {
			return fmt.Errorf("InsertHoliday: %w", err)
		}
	}
	for _, d := range sortedDays(h.CutOffs) {
		if h.Closed[d] {
			// A closure outranks an early close on the same date.
			continue
		}
		minutes := int32(h.CutOffs[d] / time.Minute)
		if _, err = tx.Exec(ctx, stmt.InsertHoliday, d, minutes); err != nil {
			return fmt.Errorf("InsertHoliday: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (p *PgxCalendar) log(a any) {
	w := cmp.Or[io.Writer](p.Log, os.Stderr)
	_, _ = w.Write([]byte(fmt.Sprintf("lesiw.io/cronsim: %s\n", a)))
}
