package usecase

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/totegamma/orderdemo/internal/domain"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	SortByCreatedAt = "createdAt"
	SortByUpdatedAt = "updatedAt"
	SortByID        = "id"
	SortByTitle     = "title"
)

type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

type CommentInput struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

type PageRequest struct {
	Page      int
	Size      int
	SortBy    string
	Direction string
}

func (p PageRequest) normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	// keeps Page*Size from overflowing
	if p.Page > math.MaxInt/p.Size {
		p.Page = math.MaxInt / p.Size
	}
	switch p.SortBy {
	case SortByCreatedAt, SortByUpdatedAt, SortByID, SortByTitle:
	default:
		p.SortBy = SortByCreatedAt
	}
	if strings.EqualFold(p.Direction, "ASC") {
		p.Direction = "ASC"
	} else {
		p.Direction = "DESC"
	}
	return p
}

type BoardUsecase struct {
	repo BoardRepository
}

func NewBoardUsecase(repo BoardRepository) *BoardUsecase {
	return &BoardUsecase{repo: repo}
}

func (uc *BoardUsecase) ListPosts(ctx context.Context, req PageRequest) (domain.PostPage, error) {
	posts, err := uc.repo.ListPosts(ctx)
	if err != nil {
		return domain.PostPage{}, err
	}
	return paginate(posts, req.normalize()), nil
}

// SearchPosts matches keyword against title and content, newest first.
func (uc *BoardUsecase) SearchPosts(ctx context.Context, keyword string, page, size int) (domain.PostPage, error) {
	posts, err := uc.repo.ListPosts(ctx)
	if err != nil {
		return domain.PostPage{}, err
	}

	keyword = strings.ToLower(strings.TrimSpace(keyword))
	matched := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if keyword == "" ||
			strings.Contains(strings.ToLower(p.Title), keyword) ||
			strings.Contains(strings.ToLower(p.Content), keyword) {
			matched = append(matched, p)
		}
	}

	req := PageRequest{Page: page, Size: size, SortBy: SortByCreatedAt, Direction: "DESC"}
	return paginate(matched, req.normalize()), nil
}

func (uc *BoardUsecase) GetPost(ctx context.Context, id int64) (domain.PostDetail, error) {
	post, err := uc.repo.GetPost(ctx, id)
	if err != nil {
		return domain.PostDetail{}, err
	}

	comments, err := uc.repo.ListComments(ctx, id)
	if err != nil {
		return domain.PostDetail{}, err
	}

	return domain.PostDetail{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Author:    post.Author,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
		Comments:  comments,
	}, nil
}

func (uc *BoardUsecase) CreatePost(ctx context.Context, in PostInput) (domain.PostSummary, error) {
	if err := firstError(
		domain.ValidateTitle(in.Title),
		domain.ValidateContent(in.Content),
		domain.ValidateAuthor(in.Author),
	); err != nil {
		return domain.PostSummary{}, err
	}

	post, err := uc.repo.CreatePost(ctx, domain.Post{
		Title:   in.Title,
		Content: in.Content,
		Author:  in.Author,
	})
	if err != nil {
		return domain.PostSummary{}, err
	}

	slog.InfoContext(ctx, "post created", slog.Int64("postId", post.ID), slog.String("module", "board"))
	return post.Summary(), nil
}

func (uc *BoardUsecase) UpdatePost(ctx context.Context, id int64, title, content string) (domain.PostSummary, error) {
	if err := firstError(domain.ValidateTitle(title), domain.ValidateContent(content)); err != nil {
		return domain.PostSummary{}, err
	}

	post, err := uc.repo.UpdatePost(ctx, id, title, content)
	if err != nil {
		return domain.PostSummary{}, err
	}
	return post.Summary(), nil
}

// DeletePost removes the post together with every comment it owns.
func (uc *BoardUsecase) DeletePost(ctx context.Context, id int64) error {
	return uc.repo.DeletePost(ctx, id)
}

// ListComments returns the comments of postID in insertion order. An
// unknown post has no comments.
func (uc *BoardUsecase) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	return uc.repo.ListComments(ctx, postID)
}

func (uc *BoardUsecase) CreateComment(ctx context.Context, postID int64, in CommentInput) (domain.Comment, error) {
	if err := firstError(domain.ValidateContent(in.Content), domain.ValidateAuthor(in.Author)); err != nil {
		return domain.Comment{}, err
	}

	return uc.repo.AddComment(ctx, postID, domain.Comment{
		Content: in.Content,
		Author:  in.Author,
	})
}

// UpdateComment rewrites a comment of postID. A comment owned by another
// post is reported as not found.
func (uc *BoardUsecase) UpdateComment(ctx context.Context, postID, commentID int64, content string) (domain.Comment, error) {
	if err := domain.ValidateContent(content); err != nil {
		return domain.Comment{}, err
	}
	if err := uc.checkOwner(ctx, postID, commentID); err != nil {
		return domain.Comment{}, err
	}
	return uc.repo.UpdateComment(ctx, commentID, content)
}

func (uc *BoardUsecase) DeleteComment(ctx context.Context, postID, commentID int64) error {
	if err := uc.checkOwner(ctx, postID, commentID); err != nil {
		return err
	}
	return uc.repo.RemoveComment(ctx, commentID)
}

func (uc *BoardUsecase) checkOwner(ctx context.Context, postID, commentID int64) error {
	comment, err := uc.repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.PostID != postID {
		return domain.NotFoundError{Resource: "comment", ID: commentID}
	}
	return nil
}

func paginate(posts []domain.Post, req PageRequest) domain.PostPage {
	sorted := make([]domain.Post, len(posts))
	copy(sorted, posts)

	less := func(a, b domain.Post) bool {
		switch req.SortBy {
		case SortByID:
			return a.ID < b.ID
		case SortByTitle:
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		case SortByUpdatedAt:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if req.Direction == "ASC" {
			return less(sorted[i], sorted[j])
		}
		return less(sorted[j], sorted[i])
	})

	total := len(sorted)
	totalPages := (total + req.Size - 1) / req.Size

	from := req.Page * req.Size
	if from > total {
		from = total
	}
	to := from + req.Size
	if to > total {
		to = total
	}

	summaries := make([]domain.PostSummary, 0, to-from)
	for _, p := range sorted[from:to] {
		summaries = append(summaries, p.Summary())
	}

	return domain.PostPage{
		Posts:         summaries,
		TotalElements: int64(total),
		TotalPages:    totalPages,
		CurrentPage:   req.Page,
		Size:          req.Size,
	}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
