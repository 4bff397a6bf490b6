package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/frahmantamala/vesta-ledger/internal/user"
	"github.com/jmoiron/sqlx"
)

const selectUser = `SELECT id, email, name, currency, is_active, created_at, updated_at FROM users`

type pgRepo struct {
	db *sqlx.DB
}

func NewPostgresRepo(db *sqlx.DB) user.Repository {
	return &pgRepo{db: db}
}

func (p *pgRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	query := p.db.Rebind(selectUser + ` WHERE id = ? AND is_active = ?`)
	if err := p.db.GetContext(ctx, &u, query, id, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (p *pgRepo) UpdateProfile(ctx context.Context, id string, profile user.Profile) (*user.User, error) {
	query := p.db.Rebind(`UPDATE users SET name = ?, currency = ?, updated_at = ? WHERE id = ? AND is_active = ?`)
	res, err := p.db.ExecContext(ctx, query, profile.Name, profile.Currency, time.Now().UTC(), id, true)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, user.ErrNotFound
	}
	return p.GetByID(ctx, id)
}
