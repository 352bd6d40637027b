package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/geocoder89/roster/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `
	u.id, u.name, u.password_hash, u.created_at, u.updated_at,
	ARRAY(
		SELECT r.name FROM role_user ru
		JOIN roles r ON r.id = ru.role_id
		WHERE ru.user_id = u.id
		ORDER BY r.name
	) AS roles,
	ARRAY(
		SELECT g.name FROM group_user gu
		JOIN groups g ON g.id = gu.group_id
		WHERE gu.user_id = u.id
		ORDER BY g.id
	) AS groups`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &u.Roles, &u.Groups)
	return u, err
}

func (r *UsersRepo) List(ctx context.Context) (users []user.User, err error) {
	var rows pgx.Rows

	err = r.prom.ObserveDB("users.list", func() error {
		rows, err = r.pool.Query(ctx, `SELECT `+userColumns+` FROM users u ORDER BY u.id`)
		return err
	})
	if err != nil {
		return
	}
	defer rows.Close()

	users = make([]user.User, 0)

	for rows.Next() {
		u, e := scanUser(rows)
		if e != nil {
			err = e
			return
		}
		users = append(users, u)
	}

	err = rows.Err()
	return
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_id", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByName(ctx context.Context, name string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_name", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.name = $1`, name))
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool

	err := r.prom.ObserveDB("users.name_exists", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE name = $1)`, name).Scan(&exists)
	})

	return exists, err
}

// Create inserts the user and its role edge in one transaction.
func (r *UsersRepo) Create(ctx context.Context, name, passwordHash, role string) (u user.User, err error) {
	err = withTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := r.prom.ObserveDB("users.create.insert", func() error {
			return tx.QueryRow(ctx, `
				INSERT INTO users (name, password_hash)
				VALUES ($1, $2)
				RETURNING id, name, password_hash, created_at, updated_at
			`, name, passwordHash).Scan(&u.ID, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
		})
		if err != nil {
			if isUniqueViolation(err, "users_name_key") {
				return user.ErrNameTaken
			}
			return err
		}

		var attached int64
		err = r.prom.ObserveDB("users.create.attach_role", func() error {
			tag, e := tx.Exec(ctx, `
				INSERT INTO role_user (user_id, role_id)
				SELECT $1, id FROM roles WHERE name = $2
			`, u.ID, role)
			attached = tag.RowsAffected()
			return e
		})
		if err != nil {
			return err
		}
		if attached != 1 {
			return fmt.Errorf("unknown role %q", role)
		}

		return nil
	})
	if err != nil {
		return user.User{}, err
	}

	u.Roles = []string{role}
	u.Groups = []string{}

	return u, nil
}

// DeleteUnlessRole locks the user row, refuses when the user holds
// protectedRole, and deletes it otherwise. Role, group and token rows go with
// it through ON DELETE CASCADE.
func (r *UsersRepo) DeleteUnlessRole(ctx context.Context, id int64, protectedRole string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var locked int64
		err := r.prom.ObserveDB("users.delete.lock", func() error {
			return tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return user.ErrNotFound
			}
			return err
		}

		var protected bool
		err = r.prom.ObserveDB("users.delete.role_check", func() error {
			return tx.QueryRow(ctx, `
				SELECT EXISTS(
					SELECT 1 FROM role_user ru
					JOIN roles r ON r.id = ru.role_id
					WHERE ru.user_id = $1 AND r.name = $2
				)`, id, protectedRole).Scan(&protected)
		})
		if err != nil {
			return err
		}
		if protected {
			return user.ErrProtected
		}

		return r.prom.ObserveDB("users.delete", func() error {
			_, e := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
			return e
		})
	})
}
