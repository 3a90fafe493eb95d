package services

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raaf17/assesment-test-imp/internal/apperr"
	"github.com/raaf17/assesment-test-imp/internal/models"
)

func TestUserOwnsPost(t *testing.T) {
	t.Parallel()

	post := models.Post{ID: "p1", AuthorID: "author-1"}

	require.True(t, UserOwnsPost(post, "author-1"))
	require.False(t, UserOwnsPost(post, "author-2"))
	require.False(t, UserOwnsPost(post, ""))
}

func seedUser(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec("INSERT INTO users(id, name, email, password_hash) VALUES(?, ?, ?, ?)",
		id, "User "+id, id+"@x.com", "hash")
	require.NoError(t, err)
}

func TestCreateAndFindPost(t *testing.T) {
	t.Parallel()

	db := setupDB(t)
	seedUser(t, db, "author-1")
	svc := NewPostService(db)

	post, err := svc.CreatePost("Hello", "This is long enough content", "author-1")
	require.NoError(t, err)
	require.NotEmpty(t, post.ID)
	require.Equal(t, "author-1", post.AuthorID)
	require.NotNil(t, post.Author)
	require.Equal(t, "author-1@x.com", post.Author.Email)

	found, err := svc.FindPost(post.ID)
	require.NoError(t, err)
	require.Equal(t, post.ID, found.ID)
	require.Equal(t, "Hello", found.Title)
}

func TestCreatePost_Validation(t *testing.T) {
	t.Parallel()

	db := setupDB(t)
	seedUser(t, db, "author-1")
	svc := NewPostService(db)

	tests := []struct {
		name    string
		title   string
		content string
		field   string
	}{
		{"missing title", "", "This is long enough content", "title"},
		{"long title", strings.Repeat("x", 256), "This is long enough content", "title"},
		{"missing content", "Hello", "", "content"},
		{"short content", "Hello", "too short", "content"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePost(tc.title, tc.content, "author-1")
			require.Error(t, err)
			require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			require.Contains(t, apperr.FieldsOf(err), tc.field)
		})
	}
}

func TestFindPost_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewPostService(setupDB(t))

	_, err := svc.FindPost("999")
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateAndDeletePost(t *testing.T) {
	t.Parallel()

	db := setupDB(t)
	seedUser(t, db, "author-1")
	svc := NewPostService(db)

	post, err := svc.CreatePost("Before", "This is long enough content", "author-1")
	require.NoError(t, err)

	updated, err := svc.UpdatePost(post.ID, "After", "Completely different content")
	require.NoError(t, err)
	require.Equal(t, "After", updated.Title)
	require.Equal(t, post.AuthorID, updated.AuthorID)

	require.NoError(t, svc.DeletePost(post.ID))

	_, err = svc.FindPost(post.ID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGetPaginatedPosts(t *testing.T) {
	t.Parallel()

	db := setupDB(t)
	seedUser(t, db, "author-1")
	svc := NewPostService(db)

	for i := 0; i < 25; i++ {
		_, err := svc.CreatePost(fmt.Sprintf("Post %d", i), "This is long enough content", "author-1")
		require.NoError(t, err)
	}

	posts, meta, err := svc.GetPaginatedPosts(1, 10)
	require.NoError(t, err)
	require.Len(t, posts, 10)
	require.Equal(t, Pagination{CurrentPage: 1, LastPage: 3, PerPage: 10, Total: 25}, meta)

	posts, meta, err = svc.GetPaginatedPosts(3, 10)
	require.NoError(t, err)
	require.Len(t, posts, 5)
	require.Equal(t, 3, meta.CurrentPage)

	// Out-of-range and nonsense values fall back to defaults.
	posts, meta, err = svc.GetPaginatedPosts(0, -1)
	require.NoError(t, err)
	require.Len(t, posts, 10)
	require.Equal(t, 1, meta.CurrentPage)
	require.Equal(t, 10, meta.PerPage)
}

func TestEventService(t *testing.T) {
	t.Parallel()

	db := setupDB(t)
	seedUser(t, db, "user-1")
	svc := NewEventService(db)

	userID := "user-1"
	require.NoError(t, svc.Record("user.login", "info", "User logged in", &userID))
	require.NoError(t, svc.Record("post.create", "info", "Post created", &userID))

	other := "user-2"
	require.NoError(t, svc.Record("user.login", "info", "User logged in", &other))

	events, err := svc.RecentForUser("user-1", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		require.Equal(t, "user-1", *e.UserID)
	}
}
