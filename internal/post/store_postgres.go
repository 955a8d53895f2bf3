// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taibuivan/geopost/internal/platform/database/schema"
	"github.com/taibuivan/geopost/internal/platform/dberr"
)

// resourceName is the client-facing name used in NotFound and Conflict messages.
const resourceName = "Post"

// PostgresRepository stores posts in the social.post table. Tags live in a JSONB array.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository over db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// selectColumns is the column list shared by every read, in scan order.
var selectColumns = strings.Join(schema.SocialPost.Columns(), ", ")

// columnFor maps a post field name onto its column.
var columnFor = map[string]string{
	FieldAuthorID:     schema.SocialPost.AuthorID,
	FieldBody:         schema.SocialPost.Body,
	FieldTitle:        schema.SocialPost.Title,
	FieldLocation:     schema.SocialPost.Location,
	FieldTrueLocation: schema.SocialPost.TrueLocation,
	FieldAccessKey:    schema.SocialPost.AccessKey,
	FieldImageKey:     schema.SocialPost.ImageKey,
	FieldAvatarKey:    schema.SocialPost.AvatarKey,
}

func scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	post := &Post{}
	var tags []byte

	err := row.Scan(
		&post.ID, &post.AuthorID, &post.Body, &tags, &post.Title, &post.ImageKey,
		&post.AvatarKey, &post.CreatedAt, &post.Location, &post.TrueLocation, &post.AccessKey,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tags, &post.Tags); err != nil {
		return nil, fmt.Errorf("post_tags_decode_failed: %w", err)
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return post, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("post_tags_encode_failed: %w", err)
	}
	return string(encoded), nil
}

func (repository *PostgresRepository) Create(context context.Context, post *Post) error {
	tags, err := encodeTags(post.Tags)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8, $9, $10, $11)`,
		schema.SocialPost.Table, selectColumns)

	_, err = repository.db.ExecContext(context, query,
		post.ID, post.AuthorID, post.Body, tags, post.Title, post.ImageKey,
		post.AvatarKey, post.CreatedAt, post.Location, post.TrueLocation, post.AccessKey,
	)
	return dberr.Wrap(err, resourceName)
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Post, error) {
	return repository.findOne(context, schema.SocialPost.ID, id)
}

func (repository *PostgresRepository) FindByAccessKey(context context.Context, accessKey string) (*Post, error) {
	return repository.findOne(context, schema.SocialPost.AccessKey, accessKey)
}

func (repository *PostgresRepository) findOne(context context.Context, column, value string) (*Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, schema.SocialPost.Table, column)

	post, err := scanPost(repository.db.QueryRowContext(context, query, value))
	if err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return post, nil
}

/*
FindMatching lists posts matching filter, newest first.

Tag inclusion uses JSONB containment (tags @> '["a","b"]'), served by the GIN index.
*/
func (repository *PostgresRepository) FindMatching(context context.Context, filter Filter, limit int) ([]*Post, error) {
	if filter.MatchNone() {
		return []*Post{}, nil
	}

	conditions := make([]string, 0, len(filter.Equals)+1)
	args := make([]any, 0, len(filter.Equals)+2)

	if len(filter.Tags) > 0 {
		tags, err := encodeTags(filter.Tags)
		if err != nil {
			return nil, err
		}
		args = append(args, tags)
		conditions = append(conditions, fmt.Sprintf("%s @> $%d::jsonb", schema.SocialPost.Tags, len(args)))
	}

	for _, field := range filter.Fields() {
		column, ok := columnFor[field]
		if !ok {
			return nil, fmt.Errorf("post_filter_unknown_field: %s", field)
		}
		args = append(args, filter.Equals[field])
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, limit)
	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY %s DESC LIMIT $%d`,
		selectColumns, schema.SocialPost.Table, where, schema.SocialPost.CreatedAt, len(args))

	rows, err := repository.db.QueryContext(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	defer rows.Close()

	posts := make([]*Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, dberr.Wrap(err, resourceName)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return posts, nil
}

func (repository *PostgresRepository) UpdateByID(context context.Context, id string, patch Patch) (*Post, error) {
	if patch.Empty() {
		return repository.FindByID(context, id)
	}

	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)
	add := func(column, placeholder string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d%s", column, len(args), placeholder))
	}

	if patch.AuthorID != nil {
		add(schema.SocialPost.AuthorID, "", *patch.AuthorID)
	}
	if patch.Body != nil {
		add(schema.SocialPost.Body, "", *patch.Body)
	}
	if patch.Tags != nil {
		tags, err := encodeTags(*patch.Tags)
		if err != nil {
			return nil, err
		}
		add(schema.SocialPost.Tags, "::jsonb", tags)
	}
	if patch.Title != nil {
		add(schema.SocialPost.Title, "", *patch.Title)
	}
	if patch.ImageKey != nil {
		add(schema.SocialPost.ImageKey, "", *patch.ImageKey)
	}
	if patch.AvatarKey != nil {
		add(schema.SocialPost.AvatarKey, "", *patch.AvatarKey)
	}
	if patch.Location != nil {
		add(schema.SocialPost.Location, "", *patch.Location)
	}
	if patch.TrueLocation != nil {
		add(schema.SocialPost.TrueLocation, "", *patch.TrueLocation)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $%d RETURNING %s`,
		schema.SocialPost.Table, strings.Join(sets, ", "), schema.SocialPost.ID, len(args), selectColumns)

	post, err := scanPost(repository.db.QueryRowContext(context, query, args...))
	if err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return post, nil
}

func (repository *PostgresRepository) DeleteByID(context context.Context, id string) (*Post, error) {
	return repository.deleteOne(context, schema.SocialPost.ID, id)
}

func (repository *PostgresRepository) DeleteByAccessKey(context context.Context, accessKey string) (*Post, error) {
	return repository.deleteOne(context, schema.SocialPost.AccessKey, accessKey)
}

func (repository *PostgresRepository) deleteOne(context context.Context, column, value string) (*Post, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 RETURNING %s`, schema.SocialPost.Table, column, selectColumns)

	post, err := scanPost(repository.db.QueryRowContext(context, query, value))
	if err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return post, nil
}
