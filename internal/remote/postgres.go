package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	kinzdb "github.com/diewo77/kinz/internal/db"
	"github.com/diewo77/kinz/internal/logger"
)

// NotifyChannel is the LISTEN channel the table triggers publish on.
// Payload: {"table": "<name>", "op": "insert|update|delete"}.
const NotifyChannel = "kinz_changes"

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresBackend stores each table as a postgres relation. CRUD goes
// through gorm; change notifications come from a dedicated pgx connection
// listening on NotifyChannel.
type PostgresBackend struct {
	db   *gorm.DB
	pool *pgxpool.Pool
	log  zerolog.Logger

	colMu   sync.Mutex
	columns map[string]map[string]bool

	subMu   sync.Mutex
	subs    map[string]map[int]func(Change)
	nextSub int
	stop    context.CancelFunc
	done    chan struct{}
}

var _ Backend = (*PostgresBackend)(nil)

// OpenPostgres connects gorm with the key=value dsn and a pgx pool with the
// URL form of the same database.
func OpenPostgres(ctx context.Context, dsn, url string, debug bool) (*PostgresBackend, error) {
	db, err := kinzdb.Connect(dsn, debug)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("connect remote listener: %w", err)
	}
	return NewPostgresBackend(db, pool), nil
}

func NewPostgresBackend(db *gorm.DB, pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{
		db:      db,
		pool:    pool,
		log:     logger.WithComponent("remote.postgres"),
		columns: make(map[string]map[string]bool),
		subs:    make(map[string]map[int]func(Change)),
	}
}

// Close stops the listener and closes both connections.
func (b *PostgresBackend) Close() error {
	b.subMu.Lock()
	stop, done := b.stop, b.done
	b.stop, b.done = nil, nil
	b.subMu.Unlock()
	if stop != nil {
		stop()
		<-done
	}
	b.pool.Close()
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (b *PostgresBackend) SelectAll(ctx context.Context, table string) ([]Record, error) {
	if err := CheckTable(table); err != nil {
		return nil, err
	}
	rows, err := b.db.WithContext(ctx).
		Raw(fmt.Sprintf(`SELECT row_to_json(t)::text FROM %s t`, quoteIdent(table))).
		Rows()
	if err != nil {
		return nil, describe(err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var r Record
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		out = append(out, r)
	}
	return out, describe(rows.Err())
}

func (b *PostgresBackend) Insert(ctx context.Context, table string, records ...Record) error {
	if err := CheckTable(table); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	doc, err := json.Marshal(records)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO %[1]s SELECT * FROM json_populate_recordset(NULL::%[1]s, ?::json)`, quoteIdent(table))
	return describe(b.db.WithContext(ctx).Exec(q, string(doc)).Error)
}

func (b *PostgresBackend) Update(ctx context.Context, table, id string, patch Record) error {
	if err := CheckTable(table); err != nil {
		return err
	}
	cols, err := b.writableColumns(ctx, table, patch)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}
	doc, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%[1]s = src.%[1]s", quoteIdent(c))
	}
	q := fmt.Sprintf(`UPDATE %[1]s AS dst SET %[2]s FROM json_populate_record(NULL::%[1]s, ?::json) AS src WHERE dst.id = ?`,
		quoteIdent(table), strings.Join(sets, ", "))
	return describe(b.db.WithContext(ctx).Exec(q, string(doc), id).Error)
}

func (b *PostgresBackend) Upsert(ctx context.Context, table string, record Record) error {
	if err := CheckTable(table); err != nil {
		return err
	}
	cols, err := b.writableColumns(ctx, table, record)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(record)
	if err != nil {
		return err
	}
	conflict := "DO NOTHING"
	if len(cols) > 0 {
		sets := make([]string, len(cols))
		for i, c := range cols {
			sets[i] = fmt.Sprintf("%[1]s = EXCLUDED.%[1]s", quoteIdent(c))
		}
		conflict = "DO UPDATE SET " + strings.Join(sets, ", ")
	}
	q := fmt.Sprintf(`INSERT INTO %[1]s SELECT * FROM json_populate_record(NULL::%[1]s, ?::json) ON CONFLICT (id) %[2]s`,
		quoteIdent(table), conflict)
	return describe(b.db.WithContext(ctx).Exec(q, string(doc)).Error)
}

func (b *PostgresBackend) Delete(ctx context.Context, table, id string) error {
	if err := CheckTable(table); err != nil {
		return err
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, quoteIdent(table))
	return describe(b.db.WithContext(ctx).Exec(q, id).Error)
}

func (b *PostgresBackend) DeleteAll(ctx context.Context, table string) error {
	if err := CheckTable(table); err != nil {
		return err
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE id <> '0'`, quoteIdent(table))
	return describe(b.db.WithContext(ctx).Exec(q).Error)
}

// Subscribe registers fn and starts the shared listener on first use.
func (b *PostgresBackend) Subscribe(_ context.Context, table string, fn func(Change)) (func(), error) {
	if err := CheckTable(table); err != nil {
		return nil, err
	}
	b.subMu.Lock()
	defer b.subMu.Unlock()
	if b.subs[table] == nil {
		b.subs[table] = make(map[int]func(Change))
	}
	id := b.nextSub
	b.nextSub++
	b.subs[table][id] = fn
	if b.stop == nil {
		ctx, cancel := context.WithCancel(context.Background())
		b.stop = cancel
		b.done = make(chan struct{})
		go b.listen(ctx, b.done)
	}
	return func() {
		b.subMu.Lock()
		delete(b.subs[table], id)
		b.subMu.Unlock()
	}, nil
}

// listen holds one pooled connection in LISTEN mode and reconnects after
// connection loss until ctx is cancelled.
func (b *PostgresBackend) listen(ctx context.Context, done chan struct{}) {
	defer close(done)
	for ctx.Err() == nil {
		if err := b.listenOnce(ctx); err != nil && ctx.Err() == nil {
			b.log.Warn().Err(err).Msg("change listener dropped, reconnecting")
			select {
			case <-ctx.Done():
			case <-time.After(2 * time.Second):
			}
		}
	}
}

func (b *PostgresBackend) listenOnce(ctx context.Context) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return err
	}
	b.log.Debug().Str("channel", NotifyChannel).Msg("listening for changes")
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		b.dispatch(n)
	}
}

func (b *PostgresBackend) dispatch(n *pgconn.Notification) {
	var ch Change
	if err := json.Unmarshal([]byte(n.Payload), &ch); err != nil {
		b.log.Warn().Err(err).Str("payload", n.Payload).Msg("ignoring malformed change payload")
		return
	}
	b.subMu.Lock()
	fns := make([]func(Change), 0, len(b.subs[ch.Table]))
	for _, fn := range b.subs[ch.Table] {
		fns = append(fns, fn)
	}
	b.subMu.Unlock()
	for _, fn := range fns {
		go fn(ch)
	}
}

// writableColumns returns the record keys that are real columns of table,
// excluding id, in stable order.
func (b *PostgresBackend) writableColumns(ctx context.Context, table string, r Record) ([]string, error) {
	known, err := b.tableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	cols := make([]string, 0, len(r))
	for k := range r {
		if k != "id" && known[k] && identRe.MatchString(k) {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return cols, nil
}

func (b *PostgresBackend) tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	b.colMu.Lock()
	defer b.colMu.Unlock()
	if cols, ok := b.columns[table]; ok {
		return cols, nil
	}
	var names []string
	err := b.db.WithContext(ctx).
		Raw(`SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ?`, table).
		Scan(&names).Error
	if err != nil {
		return nil, describe(err)
	}
	cols := make(map[string]bool, len(names))
	for _, n := range names {
		cols[n] = true
	}
	b.columns[table] = cols
	return cols, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// describe adds the SQLSTATE to postgres errors so logs carry it.
func describe(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s (sqlstate %s): %w", pgErr.Message, pgErr.Code, err)
	}
	return err
}
