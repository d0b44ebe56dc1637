package sheets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/lookboard/internal/common"
	"github.com/dmitrijs2005/lookboard/internal/dbx"
	"github.com/dmitrijs2005/lookboard/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Driver selects the SQL dialect of a SQLOpener.
type Driver string

const (
	DriverPostgres Driver = "pgx"
	DriverSQLite   Driver = "sqlite"
)

// OpenDB opens a database/sql handle for the driver. It does not connect;
// SQLOpener.Open pings before handing out a sheet.
func OpenDB(driver Driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", driver, common.ErrAuth, err)
	}
	if driver == DriverSQLite {
		// modernc sqlite serializes writers anyway; one connection keeps
		// ":memory:" databases shared.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema for driver.
func RunMigrations(ctx context.Context, db *sql.DB, driver Driver) error {
	goose.SetBaseFS(migrations.Migrations)

	dir := "postgres"
	dialect := "pgx"
	if driver == DriverSQLite {
		dir = "sqlite"
		dialect = "sqlite3"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", driver, err)
	}
	return nil
}

// SQLOpener stores every sheet in one sheet_rows table, ordered by id.
type SQLOpener struct {
	db     *sql.DB
	driver Driver
}

func NewSQLOpener(db *sql.DB, driver Driver) *SQLOpener {
	return &SQLOpener{db: db, driver: driver}
}

func (o *SQLOpener) Open(ctx context.Context, name string) (Sheet, error) {
	if err := o.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("open sheet %q: %w: %w", name, common.ErrAuth, err)
	}
	return &SQLSheet{db: o.db, driver: o.driver, name: name}, nil
}

// SQLSheet is a Sheet backed by rows of the sheet_rows table.
type SQLSheet struct {
	db     *sql.DB
	driver Driver
	name   string
}

func (s *SQLSheet) ReadAll(ctx context.Context) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT cells FROM sheet_rows WHERE sheet = ? ORDER BY id`), s.name)
	if err != nil {
		return nil, fmt.Errorf("failed to select rows: %w", err)
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		cells, err := decodeRow(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SQLSheet) AppendRow(ctx context.Context, row []string) error {
	raw, err := encodeRow(row)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.q(`INSERT INTO sheet_rows (sheet, cells) VALUES (?, ?)`), s.name, raw); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *SQLSheet) DeleteRow(ctx context.Context, index int) error {
	if index < 1 {
		return fmt.Errorf("row %d: %w", index, common.ErrorNotFound)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			s.q(`SELECT id FROM sheet_rows WHERE sheet = ? ORDER BY id LIMIT 1 OFFSET ?`), s.name, index-1).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("row %d: %w", index, common.ErrorNotFound)
		}
		if err != nil {
			return fmt.Errorf("locate row %d: %w", index, err)
		}

		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM sheet_rows WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected error: %w", err)
		}
		if n != 1 {
			return fmt.Errorf("unexpected rows affected: %d", n)
		}
		return nil
	})
}

func (s *SQLSheet) UpdateHeaderCell(ctx context.Context, col int, value string) error {
	if col < 1 {
		return fmt.Errorf("column %d: %w", col, common.ErrorNotFound)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var (
			id  int64
			raw string
		)
		err := tx.QueryRowContext(ctx,
			s.q(`SELECT id, cells FROM sheet_rows WHERE sheet = ? ORDER BY id LIMIT 1`), s.name).Scan(&id, &raw)
		if errors.Is(err, sql.ErrNoRows) {
			header, err := encodeRow(setCell(nil, col, value))
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, s.q(`INSERT INTO sheet_rows (sheet, cells) VALUES (?, ?)`), s.name, header)
			return err
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}

		cells, err := decodeRow(raw)
		if err != nil {
			return err
		}
		updated, err := encodeRow(setCell(cells, col, value))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.q(`UPDATE sheet_rows SET cells = ? WHERE id = ?`), updated, id); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

// q rewrites "?" placeholders to "$n" for PostgreSQL.
func (s *SQLSheet) q(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func encodeRow(row []string) (string, error) {
	if row == nil {
		row = []string{}
	}
	b, err := json.Marshal(row)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeRow(raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return cells, nil
}
