package postgres

import (
	"context"

	"github.com/dishaagrawalcodes/eventmappr/db"
	"github.com/dishaagrawalcodes/eventmappr/internal/auth/domain"
	autherror "github.com/dishaagrawalcodes/eventmappr/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

var _ domain.UserRepository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db db.DBTX
}

func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const userColumns = `id, full_name, mobile_number, password_hash, refresh_token, created_at, updated_at`

// FindByIdentity matches on either identifier. Empty arguments never match;
// a mobile number hit wins over a full name hit, then the oldest record.
func (r *PostgresRepository) FindByIdentity(ctx context.Context, fullName, mobileNumber string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1 <> '' AND full_name = $1) OR ($2 <> '' AND mobile_number = $2)
		ORDER BY (mobile_number = $2) DESC, created_at
		LIMIT 1;
	`
	user, err := scanUser(r.db.QueryRow(ctx, query, fullName, mobileNumber))
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by identity")
	}
	return user, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
		LIMIT 1;
	`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user by id")
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, full_name, mobile_number, password_hash, refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.FullName, user.MobileNumber, user.PasswordHash, user.RefreshToken, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return autherror.Wrap(autherror.ErrUserAlreadyExists, err)
		}
		return errors.Wrap(err, "failed to create user")
	}
	return nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return errors.Wrap(err, "failed to update password")
	}
	if tag.RowsAffected() == 0 {
		return autherror.ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET refresh_token = $2, updated_at = now()
		WHERE id = $1
	`, id, token)
	if err != nil {
		return errors.Wrap(err, "failed to set refresh token")
	}
	return nil
}

func (r *PostgresRepository) RotateRefreshToken(ctx context.Context, id, expected, next string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET refresh_token = $3, updated_at = now()
		WHERE id = $1 AND refresh_token = $2 AND refresh_token <> ''
	`, id, expected, next)
	if err != nil {
		return false, errors.Wrap(err, "failed to rotate refresh token")
	}
	return tag.RowsAffected() == 1, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.MobileNumber,
		&user.PasswordHash,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
