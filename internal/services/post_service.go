package services

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/raaf17/assesment-test-imp/internal/apperr"
	"github.com/raaf17/assesment-test-imp/internal/models"
)

// Pagination describes the page window of a post listing.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	GetPaginatedPosts(page, perPage int) ([]models.Post, Pagination, error)
	FindPost(id string) (models.Post, error)
	CreatePost(title, content, authorID string) (models.Post, error)
	UpdatePost(id, title, content string) (models.Post, error)
	DeletePost(id string) error
}

// UserOwnsPost is the ownership predicate: a subject may mutate a post
// iff it is the post's author. It is pure; the server-side evaluation
// in the handlers is the sole authority, the client may use it only to
// decide whether to show mutation controls.
func UserOwnsPost(post models.Post, subject string) bool {
	return subject != "" && post.AuthorID == subject
}

// PostService provides business logic for post management.
type PostService struct {
	db *sql.DB
}

// NewPostService creates a new PostService.
func NewPostService(db *sql.DB) *PostService {
	return &PostService{db: db}
}

const postColumns = `p.id, p.title, p.content, p.author_id, p.created_at, p.updated_at,
	u.id, u.name, u.email, u.created_at`

func scanPost(row interface{ Scan(...interface{}) error }) (models.Post, error) {
	var post models.Post
	var author models.User
	err := row.Scan(&post.ID, &post.Title, &post.Content, &post.AuthorID,
		&post.CreatedAt, &post.UpdatedAt,
		&author.ID, &author.Name, &author.Email, &author.CreatedAt)
	if err != nil {
		return models.Post{}, err
	}
	post.Author = &author
	return post, nil
}

// GetPaginatedPosts returns the requested page of posts, newest first,
// with author information and page metadata.
func (s *PostService) GetPaginatedPosts(page, perPage int) ([]models.Post, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM posts").Scan(&total); err != nil {
		return nil, Pagination{}, apperr.Internal("Failed to count posts", err)
	}

	rows, err := s.db.Query(`SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, Pagination{}, apperr.Internal("Failed to list posts", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, Pagination{}, apperr.Internal("Failed to scan post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, Pagination{}, apperr.Internal("Failed to list posts", err)
	}

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	return posts, Pagination{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}, nil
}

// FindPost retrieves a single post with its author.
func (s *PostService) FindPost(id string) (models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.author_id WHERE p.id = ?`, id)
	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Post{}, apperr.NotFound("Post not found")
		}
		return models.Post{}, apperr.Internal("Failed to load post", err)
	}
	return post, nil
}

func validatePostInput(title, content string) error {
	fields := map[string]string{}
	if title == "" {
		fields["title"] = "Post title is required"
	} else if len(title) > 255 {
		fields["title"] = "Title must not exceed 255 characters"
	}
	if content == "" {
		fields["content"] = "Post content is required"
	} else if len(content) < 10 {
		fields["content"] = "Content must be at least 10 characters"
	}
	if len(fields) > 0 {
		return apperr.Validation("Validation failed", fields)
	}
	return nil
}

// CreatePost validates and stores a new post owned by authorID.
func (s *PostService) CreatePost(title, content, authorID string) (models.Post, error) {
	if err := validatePostInput(title, content); err != nil {
		return models.Post{}, err
	}

	id := uuid.New().String()
	stmt, err := s.db.Prepare("INSERT INTO posts(id, title, content, author_id) VALUES(?, ?, ?, ?)")
	if err != nil {
		return models.Post{}, apperr.Internal("Failed to create post", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(id, title, content, authorID); err != nil {
		return models.Post{}, apperr.Internal("Failed to create post", err)
	}
	return s.FindPost(id)
}

// UpdatePost validates and applies new content to an existing post.
// Ownership is decided by the caller before this runs.
func (s *PostService) UpdatePost(id, title, content string) (models.Post, error) {
	if err := validatePostInput(title, content); err != nil {
		return models.Post{}, err
	}

	_, err := s.db.Exec("UPDATE posts SET title = ?, content = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		title, content, id)
	if err != nil {
		return models.Post{}, apperr.Internal("Failed to update post", err)
	}
	return s.FindPost(id)
}

// DeletePost removes a post from the database.
func (s *PostService) DeletePost(id string) error {
	if _, err := s.db.Exec("DELETE FROM posts WHERE id = ?", id); err != nil {
		return apperr.Internal("Failed to delete post", err)
	}
	return nil
}
