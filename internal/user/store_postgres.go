// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/taibuivan/geopost/internal/platform/database/schema"
	"github.com/taibuivan/geopost/internal/platform/dberr"
)

// resourceName is the client-facing name used in NotFound and Conflict messages.
const resourceName = "User"

// PostgresRepository stores users in the social.user table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository over db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// selectColumns is the column list shared by every read, in scan order.
var selectColumns = strings.Join(schema.SocialUser.Columns(), ", ")

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	user := &User{}
	if err := row.Scan(&user.ID, &user.Name, &user.AvatarKey, &user.Email, &user.CreatedAt); err != nil {
		return nil, err
	}
	return user, nil
}

func (repository *PostgresRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5)`,
		schema.SocialUser.Table, selectColumns)

	_, err := repository.db.ExecContext(context, query,
		user.ID, user.Name, user.AvatarKey, user.Email, user.CreatedAt,
	)
	return dberr.Wrap(err, resourceName)
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns, schema.SocialUser.Table, schema.SocialUser.ID)

	user, err := scanUser(repository.db.QueryRowContext(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return user, nil
}

func (repository *PostgresRepository) UpdateByID(context context.Context, id string, patch Patch) (*User, error) {
	if patch.Empty() {
		return repository.FindByID(context, id)
	}

	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	add := func(column string, value string) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add(schema.SocialUser.Name, *patch.Name)
	}
	if patch.Email != nil {
		add(schema.SocialUser.Email, *patch.Email)
	}
	if patch.AvatarKey != nil {
		add(schema.SocialUser.AvatarKey, *patch.AvatarKey)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $%d RETURNING %s`,
		schema.SocialUser.Table, strings.Join(sets, ", "), schema.SocialUser.ID, len(args), selectColumns)

	user, err := scanUser(repository.db.QueryRowContext(context, query, args...))
	if err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return user, nil
}

func (repository *PostgresRepository) DeleteByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 RETURNING %s`,
		schema.SocialUser.Table, schema.SocialUser.ID, selectColumns)

	user, err := scanUser(repository.db.QueryRowContext(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return user, nil
}
