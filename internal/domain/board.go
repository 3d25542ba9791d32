package domain

import (
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength  = 200
	MaxAuthorLength = 50
)

// Post owns its comments by id. The reverse direction lives in the board
// repository index, never on Comment.
type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	CommentIDs []int64   `json:"commentIds"`
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PostSummary struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	CommentCount int       `json:"commentCount"`
}

type PostDetail struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Comments  []Comment `json:"comments"`
}

type PostPage struct {
	Posts         []PostSummary `json:"posts"`
	TotalElements int64         `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
	CurrentPage   int           `json:"currentPage"`
	Size          int           `json:"size"`
}

func (p Post) Summary() PostSummary {
	return PostSummary{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Author:       p.Author,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		CommentCount: len(p.CommentIDs),
	}
}

func ValidateTitle(title string) error {
	if title == "" {
		return ValidationError{Field: "title", Reason: "is required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ValidationError{Field: "title", Reason: "must be at most 200 characters"}
	}
	return nil
}

func ValidateContent(content string) error {
	if content == "" {
		return ValidationError{Field: "content", Reason: "is required"}
	}
	return nil
}

func ValidateAuthor(author string) error {
	if author == "" {
		return ValidationError{Field: "author", Reason: "is required"}
	}
	if utf8.RuneCountInString(author) > MaxAuthorLength {
		return ValidationError{Field: "author", Reason: "must be at most 50 characters"}
	}
	return nil
}
