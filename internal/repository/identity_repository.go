package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/dealership/internal/domain"
)

// ErrEmailTaken is returned when an identity with the same email already exists.
var ErrEmailTaken = errors.New("email already registered")

// Credentials pairs an identity with its password hash. Only the auth
// service reads it; the hash never leaves that path.
type Credentials struct {
	Identity     domain.Identity
	PasswordHash string
}

// IdentityRepository is the credential store for storefront principals.
// Missing rows are reported as pgx.ErrNoRows.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity, passwordHash string) error
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
	GetCredentialsByID(ctx context.Context, id string) (*Credentials, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, filter IdentityFilter) ([]domain.Identity, error)
}

// IdentityFilter defines query params for identity listing.
type IdentityFilter struct {
	Roles  []domain.Role
	Active *bool
	Limit  int
	Offset int
}

type identityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &identityRepository{pool: pool}
}

const identityColumns = `id, email, name, role, active, created_at, updated_at`

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity, passwordHash string) error {
	const query = `
        INSERT INTO identities (email, name, role, active, password_hash)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		domain.NormalizeEmail(identity.Email),
		identity.Name,
		identity.Role,
		identity.Active,
		passwordHash,
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id=$1`

	var identity domain.Identity
	if err := scanIdentity(r.pool.QueryRow(ctx, query, id), &identity); err != nil {
		return nil, asNotFound(err)
	}
	return &identity, nil
}

func (r *identityRepository) GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error) {
	query := `SELECT ` + identityColumns + `, password_hash FROM identities WHERE lower(email)=$1`
	return r.getCredentials(ctx, query, domain.NormalizeEmail(email))
}

func (r *identityRepository) GetCredentialsByID(ctx context.Context, id string) (*Credentials, error) {
	query := `SELECT ` + identityColumns + `, password_hash FROM identities WHERE id=$1`
	return r.getCredentials(ctx, query, id)
}

func (r *identityRepository) getCredentials(ctx context.Context, query string, arg any) (*Credentials, error) {
	var creds Credentials
	id := &creds.Identity
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&id.ID,
		&id.Email,
		&id.Name,
		&id.Role,
		&id.Active,
		&id.CreatedAt,
		&id.UpdatedAt,
		&creds.PasswordHash,
	); err != nil {
		return nil, asNotFound(err)
	}
	return &creds, nil
}

func (r *identityRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, `UPDATE identities SET password_hash=$1, updated_at=NOW() WHERE id=$2`, passwordHash, id)
}

func (r *identityRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return r.exec(ctx, `UPDATE identities SET role=$1, updated_at=NOW() WHERE id=$2`, role, id)
}

func (r *identityRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, `UPDATE identities SET active=$1, updated_at=NOW() WHERE id=$2`, active, id)
}

func (r *identityRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return asNotFound(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *identityRepository) List(ctx context.Context, filter IdentityFilter) ([]domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities`
	args := []any{}
	clauses := []string{}

	if len(filter.Roles) > 0 {
		roles := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			roles = append(roles, string(role))
		}
		args = append(args, roles)
		clauses = append(clauses, fmt.Sprintf("role = ANY($%d)", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Identity
	for rows.Next() {
		var identity domain.Identity
		if err := scanIdentity(rows, &identity); err != nil {
			return nil, err
		}
		result = append(result, identity)
	}
	return result, rows.Err()
}

func scanIdentity(row pgx.Row, identity *domain.Identity) error {
	return row.Scan(
		&identity.ID,
		&identity.Email,
		&identity.Name,
		&identity.Role,
		&identity.Active,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// asNotFound treats an id the uuid column cannot parse as a missing row.
func asNotFound(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation {
		return pgx.ErrNoRows
	}
	return err
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
