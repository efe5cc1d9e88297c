package contacts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Querier is the subset of pgxpool.Pool used by the repository.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var selectColumns = strings.Join(recordColumns, ", ")

// PostgresRepository stores submissions in contact_submissions.
type PostgresRepository struct {
	db     Querier
	tracer trace.Tracer
}

func NewPostgresRepository(db Querier) *PostgresRepository {
	if db == nil {
		panic("contacts: pgx pool required")
	}
	return &PostgresRepository{db: db, tracer: otel.Tracer("llc.internal.contacts.postgres")}
}

func (r *PostgresRepository) Insert(ctx context.Context, s *Submission) (*Submission, error) {
	if s == nil {
		return nil, ErrNilSubmission
	}
	ctx, span := r.tracer.Start(ctx, "contacts.insert")
	defer span.End()

	rec := ToRecord(s)
	rec.ID = uuid.New().String()
	query := `
		INSERT INTO contact_submissions (id, name, email, phone, company, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + selectColumns

	var stored Record
	if err := r.db.QueryRow(ctx, query, rec.ID, rec.Name, rec.Email, rec.Phone, rec.Company, rec.Message).
		Scan(stored.scanTargets()...); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("contacts: insert failed: %w", err)
	}
	span.SetAttributes(attribute.String("contact.id", stored.ID))
	return FromRecord(stored), nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Submission, error) {
	ctx, span := r.tracer.Start(ctx, "contacts.list")
	defer span.End()

	rows, err := r.db.Query(ctx, "SELECT "+selectColumns+" FROM contact_submissions ORDER BY created_at DESC")
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("contacts: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Submission{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(rec.scanTargets()...); err != nil {
			return nil, fmt.Errorf("contacts: scan failed: %w", err)
		}
		out = append(out, FromRecord(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("contacts: list failed: %w", err)
	}
	return out, nil
}
