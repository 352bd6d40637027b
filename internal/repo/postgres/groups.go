package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/roster/internal/domain/group"
	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/geocoder89/roster/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GroupsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewGroupsRepo(pool *pgxpool.Pool, prom *observability.Prom) *GroupsRepo {
	return &GroupsRepo{pool: pool, prom: prom}
}

func (r *GroupsRepo) List(ctx context.Context) (groups []group.Group, err error) {
	var rows pgx.Rows

	err = r.prom.ObserveDB("groups.list", func() error {
		rows, err = r.pool.Query(ctx, `
			SELECT g.id, g.name, g.created_at, g.updated_at,
				ARRAY(
					SELECT u.name FROM group_user gu
					JOIN users u ON u.id = gu.user_id
					WHERE gu.group_id = g.id
					ORDER BY u.id
				) AS users
			FROM groups g
			ORDER BY g.id
		`)
		return err
	})
	if err != nil {
		return
	}
	defer rows.Close()

	groups = make([]group.Group, 0)

	for rows.Next() {
		var g group.Group
		if e := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt, &g.Users); e != nil {
			err = e
			return
		}
		groups = append(groups, g)
	}

	err = rows.Err()
	return
}

func (r *GroupsRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool

	err := r.prom.ObserveDB("groups.name_exists", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM groups WHERE name = $1)`, name).Scan(&exists)
	})

	return exists, err
}

func (r *GroupsRepo) Create(ctx context.Context, name string) (group.Group, error) {
	g := group.Group{Users: []string{}}

	err := r.prom.ObserveDB("groups.create", func() error {
		return r.pool.QueryRow(ctx, `
			INSERT INTO groups (name)
			VALUES ($1)
			RETURNING id, name, created_at, updated_at
		`, name).Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	})
	if err != nil {
		if isUniqueViolation(err, "groups_name_key") {
			return group.Group{}, group.ErrNameTaken
		}
		return group.Group{}, err
	}

	return g, nil
}

// lockPair takes the group row FOR UPDATE and the user row FOR SHARE, so a
// concurrent delete of either waits for this transaction.
func (r *GroupsRepo) lockPair(ctx context.Context, tx pgx.Tx, op string, groupID, userID int64) error {
	var id int64

	err := r.prom.ObserveDB(op+".lock_group", func() error {
		return tx.QueryRow(ctx, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, groupID).Scan(&id)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return group.ErrNotFound
		}
		return err
	}

	err = r.prom.ObserveDB(op+".lock_user", func() error {
		return tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR SHARE`, userID).Scan(&id)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrNotFound
		}
		return err
	}

	return nil
}

func (r *GroupsRepo) AddMember(ctx context.Context, groupID, userID int64) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := r.lockPair(ctx, tx, "groups.add_member", groupID, userID); err != nil {
			return err
		}

		var inserted int64
		err := r.prom.ObserveDB("groups.add_member.insert", func() error {
			tag, e := tx.Exec(ctx, `
				INSERT INTO group_user (group_id, user_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, groupID, userID)
			inserted = tag.RowsAffected()
			return e
		})
		if err != nil {
			return err
		}
		if inserted == 0 {
			return group.ErrAlreadyMember
		}

		return nil
	})
}

func (r *GroupsRepo) RemoveMember(ctx context.Context, groupID, userID int64) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := r.lockPair(ctx, tx, "groups.remove_member", groupID, userID); err != nil {
			return err
		}

		var deleted int64
		err := r.prom.ObserveDB("groups.remove_member.delete", func() error {
			tag, e := tx.Exec(ctx, `DELETE FROM group_user WHERE group_id = $1 AND user_id = $2`, groupID, userID)
			deleted = tag.RowsAffected()
			return e
		})
		if err != nil {
			return err
		}
		if deleted == 0 {
			return group.ErrNotMember
		}

		return nil
	})
}

func (r *GroupsRepo) DeleteIfEmpty(ctx context.Context, id int64) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var locked int64
		err := r.prom.ObserveDB("groups.delete.lock", func() error {
			return tx.QueryRow(ctx, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return group.ErrNotFound
			}
			return err
		}

		var hasMembers bool
		err = r.prom.ObserveDB("groups.delete.member_check", func() error {
			return tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM group_user WHERE group_id = $1)`, id).Scan(&hasMembers)
		})
		if err != nil {
			return err
		}
		if hasMembers {
			return group.ErrHasMembers
		}

		return r.prom.ObserveDB("groups.delete", func() error {
			_, e := tx.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
			return e
		})
	})
}
