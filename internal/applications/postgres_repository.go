package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Querier is the subset of pgxpool.Pool used by the repository.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const applicationsTable = "llc_applications"

var (
	selectColumns = strings.Join(recordColumns, ", ")
	// created_at and updated_at come from column defaults
	insertColumns = recordColumns[:len(recordColumns)-2]
)

// PostgresRepository stores applications in the relational database.
type PostgresRepository struct {
	db     Querier
	tracer trace.Tracer
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db Querier) *PostgresRepository {
	if db == nil {
		panic("applications: pgx pool required")
	}
	return &PostgresRepository{
		db:     db,
		tracer: otel.Tracer("llc.internal.applications.postgres"),
	}
}

// Insert writes a new row and returns it as stored.
func (r *PostgresRepository) Insert(ctx context.Context, app *Application) (*Application, error) {
	if app == nil {
		return nil, ErrNilApplication
	}
	ctx, span := r.tracer.Start(ctx, "applications.insert")
	defer span.End()

	rec := ToRecord(app)
	rec.ID = uuid.New().String()

	placeholders := make([]string, len(insertColumns))
	for i := range insertColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		applicationsTable,
		strings.Join(insertColumns, ", "),
		strings.Join(placeholders, ", "),
		selectColumns,
	)

	var stored Record
	if err := r.db.QueryRow(ctx, query,
		rec.ID,
		rec.CompanyName,
		rec.OwnerName,
		rec.Email,
		rec.Phone,
		rec.Address,
		rec.City,
		rec.State,
		rec.ZipCode,
		rec.Country,
		rec.BusinessType,
		rec.Members,
		rec.EINNeeded,
		rec.BankAccountNeeded,
		rec.AdditionalInfo,
		rec.Status,
	).Scan(stored.scanTargets()...); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("applications: insert failed: %w", err)
	}
	span.SetAttributes(attribute.String("application.id", stored.ID))
	return FromRecord(stored)
}

// List fetches every application, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Application, error) {
	ctx, span := r.tracer.Start(ctx, "applications.list")
	defer span.End()

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC", selectColumns, applicationsTable)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("applications: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Application{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(rec.scanTargets()...); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("applications: scan failed: %w", err)
		}
		app, err := FromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("applications: list failed: %w", err)
	}
	span.SetAttributes(attribute.Int("applications.count", len(out)))
	return out, nil
}

// Get fetches one application.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Application, error) {
	ctx, span := r.tracer.Start(ctx, "applications.get")
	defer span.End()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", selectColumns, applicationsTable)
	var rec Record
	if err := r.db.QueryRow(ctx, query, id).Scan(rec.scanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("applications: select failed: %w", err)
	}
	return FromRecord(rec)
}

// UpdateStatus sets the status and refreshes updated_at, guarded on the
// status the caller checked the transition against.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (*Application, error) {
	ctx, span := r.tracer.Start(ctx, "applications.update_status")
	defer span.End()
	span.SetAttributes(
		attribute.String("application.id", id),
		attribute.String("application.status.from", string(from)),
		attribute.String("application.status.to", string(to)),
	)

	query := fmt.Sprintf(
		"UPDATE %s SET status = $1, updated_at = now() WHERE id = $2 AND status = $3 RETURNING %s",
		applicationsTable, selectColumns,
	)
	var rec Record
	err := r.db.QueryRow(ctx, query, string(to), id, string(from)).Scan(rec.scanTargets()...)
	if err == nil {
		return FromRecord(rec)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		span.RecordError(err)
		return nil, fmt.Errorf("applications: update failed: %w", err)
	}

	// Either the row is gone or another writer moved it first.
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, &InvalidTransitionError{From: current.Status, To: to}
}
