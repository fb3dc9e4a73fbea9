package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Postgres implements Client against a pgx connection pool. Remote
// procedures are SQL functions installed by the migrations.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Insert(ctx context.Context, table string, row Row) (string, error) {
	id := row.String("id")
	if id == "" {
		genID, err := uuid.NewV4()
		if err != nil {
			return "", fmt.Errorf("backend: failed to generate id for %s: %w", table, err)
		}
		id = genID.String()
		row = cloneRow(row)
		row["id"] = id
	}

	query, args := buildInsert(table, row)
	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		return "", fmt.Errorf("backend: failed to insert into %s: %w", table, mapPgError(err))
	}
	return id, nil
}

func (p *Postgres) BulkInsert(ctx context.Context, table string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		if row.String("id") == "" {
			genID, err := uuid.NewV4()
			if err != nil {
				return fmt.Errorf("backend: failed to generate id for %s: %w", table, err)
			}
			row = cloneRow(row)
			row["id"] = genID.String()
		}
		query, args := buildInsert(table, row)
		batch.Queue(query, args...)
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("backend: failed to batch insert into %s: %w", table, mapPgError(err))
		}
	}
	return nil
}

func (p *Postgres) Select(ctx context.Context, table string, filter Filter, columns ...string) ([]Row, error) {
	cols := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = pgx.Identifier{c}.Sanitize()
		}
		cols = strings.Join(quoted, ", ")
	}

	where, args := buildWhere(filter, 1)
	query := fmt.Sprintf("SELECT %s FROM %s%s", cols, pgx.Identifier{table}.Sanitize(), where)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("backend: failed to select from %s: %w", table, err)
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("backend: failed to scan rows from %s: %w", table, err)
	}

	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = Row(m)
	}
	return out, nil
}

func (p *Postgres) Update(ctx context.Context, table string, filter Filter, fields Row) error {
	if len(fields) == 0 {
		return nil
	}

	keys := sortedKeys(fields)
	set := make([]string, len(keys))
	args := make([]any, 0, len(fields)+len(filter))
	for i, k := range keys {
		set[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{k}.Sanitize(), i+1)
		args = append(args, fields[k])
	}

	where, whereArgs := buildWhere(filter, len(keys)+1)
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s%s", pgx.Identifier{table}.Sanitize(), strings.Join(set, ", "), where)

	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("backend: failed to update %s: %w", table, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, table string, filter Filter) error {
	where, args := buildWhere(filter, 1)
	query := fmt.Sprintf("DELETE FROM %s%s", pgx.Identifier{table}.Sanitize(), where)

	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("backend: failed to delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CallProcedure(ctx context.Context, name string, args map[string]any) error {
	keys := sortedKeys(Row(args))
	params := make([]string, len(keys))
	values := make([]any, len(keys))
	for i, k := range keys {
		params[i] = fmt.Sprintf("%s => $%d", pgx.Identifier{k}.Sanitize(), i+1)
		values[i] = args[k]
	}

	query := fmt.Sprintf("SELECT %s(%s)", pgx.Identifier{name}.Sanitize(), strings.Join(params, ", "))

	if _, err := p.pool.Exec(ctx, query, values...); err != nil {
		log.Warn().Err(err).Str("procedure", name).Msg("backend: procedure call failed")
		return fmt.Errorf("backend: procedure %s failed: %w", name, err)
	}
	return nil
}

func buildInsert(table string, row Row) (string, []any) {
	keys := sortedKeys(row)
	cols := make([]string, len(keys))
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		cols[i] = pgx.Identifier{k}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[k]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{table}.Sanitize(), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return query, args
}

func buildWhere(filter Filter, firstArg int) (string, []any) {
	if len(filter) == 0 {
		return "", nil
	}

	keys := sortedKeys(Row(filter))
	conds := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		conds[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{k}.Sanitize(), firstArg+i)
		args[i] = filter[k]
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func sortedKeys(row Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneRow(row Row) Row {
	out := make(Row, len(row)+1)
	for k, v := range row {
		out[k] = v
	}
	return out
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}
