// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geopost/internal/platform/apperr"
	"github.com/taibuivan/geopost/internal/post"
)

var postColumns = []string{
	"id", "authorid", "body", "tags", "title", "imagekey",
	"avatarkey", "createdat", "location", "truelocation", "accesskey",
}

func newPostgresRepository(t *testing.T) (*post.PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return post.NewPostgresRepository(db), mock
}

func postRow(rows *sqlmock.Rows, id, accessKey, tags string) *sqlmock.Rows {
	return rows.AddRow(id, authorID, "body", []byte(tags), "Title", imageKey,
		avatarKey, createdAt, "Lisbon", "38.7,-9.1", accessKey)
}

/*
TestPostgresRepository_Create encodes tags as JSONB.
*/
func TestPostgresRepository_Create(t *testing.T) {
	repository, mock := newPostgresRepository(t)
	entity := &post.Post{
		ID: "p1", AuthorID: authorID, Body: "b", Tags: []string{"beach", "sunset"}, Title: "t",
		ImageKey: imageKey, AvatarKey: avatarKey, CreatedAt: createdAt, AccessKey: "ak",
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO social.post (id, authorid, body, tags, title, imagekey, avatarkey, createdat, location, truelocation, accesskey) VALUES ($1, $2, $3, $4::jsonb`)).
		WithArgs("p1", authorID, "b", `["beach","sunset"]`, "t", imageKey, avatarKey, createdAt, "", "", "ak").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repository.Create(context.Background(), entity))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_Create_DuplicateAccessKey maps the unique violation to 409.
*/
func TestPostgresRepository_Create_DuplicateAccessKey(t *testing.T) {
	repository, mock := newPostgresRepository(t)

	mock.ExpectExec("INSERT INTO").WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	err := repository.Create(context.Background(), &post.Post{ID: "p1"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

/*
TestPostgresRepository_FindMatching builds containment and equality conditions in a stable order.
*/
func TestPostgresRepository_FindMatching(t *testing.T) {
	repository, mock := newPostgresRepository(t)
	filter := post.Filter{
		Tags:   []string{"beach", "sunset"},
		Equals: map[string]string{"title": "Title", "author_id": authorID},
	}

	mock.ExpectQuery(regexp.QuoteMeta(
		`FROM social.post WHERE tags @> $1::jsonb AND authorid = $2 AND title = $3 ORDER BY createdat DESC LIMIT $4`)).
		WithArgs(`["beach","sunset"]`, authorID, "Title", 100).
		WillReturnRows(postRow(sqlmock.NewRows(postColumns), "p1", "ak1", `["beach","sunset","pier"]`))

	posts, err := repository.FindMatching(context.Background(), filter, 100)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, []string{"beach", "sunset", "pier"}, posts[0].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_FindMatching_All omits the WHERE clause for an empty filter.
*/
func TestPostgresRepository_FindMatching_All(t *testing.T) {
	repository, mock := newPostgresRepository(t)

	rows := sqlmock.NewRows(postColumns)
	postRow(rows, "p2", "ak2", `[]`)
	postRow(rows, "p1", "ak1", `["a"]`)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM social.post ORDER BY createdat DESC LIMIT $1`)).
		WithArgs(100).
		WillReturnRows(rows)

	posts, err := repository.FindMatching(context.Background(), post.Filter{}, 100)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "p2", posts[0].ID)
	assert.Equal(t, []string{}, posts[0].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_UpdateByID sets only the patched columns.
*/
func TestPostgresRepository_UpdateByID(t *testing.T) {
	repository, mock := newPostgresRepository(t)
	title := "Renamed"
	tags := []string{"x"}

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE social.post SET tags = $1::jsonb, title = $2 WHERE id = $3 RETURNING`)).
		WithArgs(`["x"]`, "Renamed", "p1").
		WillReturnRows(postRow(sqlmock.NewRows(postColumns), "p1", "ak1", `["x"]`))

	updated, err := repository.UpdateByID(context.Background(), "p1", post.Patch{Title: &title, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, "p1", updated.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_DeleteByAccessKey returns the removed row, or NotFound.
*/
func TestPostgresRepository_DeleteByAccessKey(t *testing.T) {
	repository, mock := newPostgresRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM social.post WHERE accesskey = $1 RETURNING`)).
		WithArgs("ak1").
		WillReturnRows(postRow(sqlmock.NewRows(postColumns), "p1", "ak1", `[]`))
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM social.post WHERE accesskey = $1 RETURNING`)).
		WithArgs("ak1").
		WillReturnError(sql.ErrNoRows)

	removed, err := repository.DeleteByAccessKey(context.Background(), "ak1")
	require.NoError(t, err)
	assert.Equal(t, "ak1", removed.AccessKey)

	_, err = repository.DeleteByAccessKey(context.Background(), "ak1")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_DeleteByID addresses the row by primary key.
*/
func TestPostgresRepository_DeleteByID(t *testing.T) {
	repository, mock := newPostgresRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM social.post WHERE id = $1 RETURNING`)).
		WithArgs("p1").
		WillReturnRows(postRow(sqlmock.NewRows(postColumns), "p1", "ak1", `[]`))

	removed, err := repository.DeleteByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", removed.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
