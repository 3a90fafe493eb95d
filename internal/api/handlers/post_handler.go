package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/raaf17/assesment-test-imp/internal/auth"
	"github.com/raaf17/assesment-test-imp/internal/services"
)

// PostHandler handles HTTP requests for posts.
type PostHandler struct {
	posts  services.PostServiceProvider
	events services.EventServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts services.PostServiceProvider, events services.EventServiceProvider) *PostHandler {
	return &PostHandler{posts: posts, events: events}
}

// PostPayload defines the structure for create and update requests.
type PostPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// List returns a page of posts, newest first.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	posts, meta, err := h.posts.GetPaginatedPosts(page, perPage)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondList(w, posts, meta)
}

// Get returns a single post by ID.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.FindPost(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, "", post)
}

// Create stores a new post owned by the authenticated user.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Missing auth token"})
		return
	}

	var payload PostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	post, err := h.posts.CreatePost(payload.Title, payload.Content, session.Subject)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.record("post.create", "Post created: "+post.ID, session.Subject)

	respondData(w, http.StatusCreated, "Post created successfully", post)
}

// Update replaces the title and content of a post the authenticated
// user owns. Existence is checked before ownership: a missing post is
// 404 for every requester, 403 is reserved for existing posts owned by
// someone else.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Missing auth token"})
		return
	}

	post, err := h.posts.FindPost(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	if !services.UserOwnsPost(post, session.Subject) {
		h.record("auth.denied", "Update denied on post "+post.ID, session.Subject)
		writeJSON(w, http.StatusForbidden, envelope{Success: false, Message: "Unauthorized to update this post"})
		return
	}

	var payload PostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	updated, err := h.posts.UpdatePost(post.ID, payload.Title, payload.Content)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, "Post updated successfully", updated)
}

// Delete removes a post the authenticated user owns. Same evaluation
// order as Update: existence first, then ownership.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Missing auth token"})
		return
	}

	post, err := h.posts.FindPost(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	if !services.UserOwnsPost(post, session.Subject) {
		h.record("auth.denied", "Delete denied on post "+post.ID, session.Subject)
		writeJSON(w, http.StatusForbidden, envelope{Success: false, Message: "Unauthorized to delete this post"})
		return
	}

	if err := h.posts.DeletePost(post.ID); err != nil {
		respondError(w, r, err)
		return
	}

	h.record("post.delete", "Post deleted: "+post.ID, session.Subject)

	respondData(w, http.StatusOK, "Post deleted successfully", nil)
}

func (h *PostHandler) record(eventType, message, userID string) {
	if h.events == nil {
		return
	}
	level := "info"
	if eventType == "auth.denied" {
		level = "warn"
	}
	if err := h.events.Record(eventType, level, message, &userID); err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}
