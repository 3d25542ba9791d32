package repository

import (
	"context"
	"sync"
	"time"

	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/usecase"
)

// BoardRepository holds posts and comments in memory. A post owns the ids
// of its comments and commentPost maps each comment back to its post. Both
// sides change under the same lock.
type BoardRepository struct {
	mu          sync.RWMutex
	posts       map[int64]domain.Post
	comments    map[int64]domain.Comment
	commentPost map[int64]int64
	nextPostID  int64
	nextComment int64
	now         func() time.Time
}

var _ usecase.BoardRepository = (*BoardRepository)(nil)

func NewBoardRepository() *BoardRepository {
	return &BoardRepository{
		posts:       map[int64]domain.Post{},
		comments:    map[int64]domain.Comment{},
		commentPost: map[int64]int64{},
		now:         time.Now,
	}
}

func clonePost(p domain.Post) domain.Post {
	ids := make([]int64, len(p.CommentIDs))
	copy(ids, p.CommentIDs)
	p.CommentIDs = ids
	return p
}

func (r *BoardRepository) CreatePost(ctx context.Context, post domain.Post) (domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextPostID++
	now := r.now()
	post.ID = r.nextPostID
	post.CreatedAt = now
	post.UpdatedAt = now
	post.CommentIDs = []int64{}
	r.posts[post.ID] = post

	return clonePost(post), nil
}

func (r *BoardRepository) GetPost(ctx context.Context, id int64) (domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return domain.Post{}, domain.NotFoundError{Resource: "post", ID: id}
	}
	return clonePost(post), nil
}

func (r *BoardRepository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		result = append(result, clonePost(p))
	}
	return result, nil
}

func (r *BoardRepository) UpdatePost(ctx context.Context, id int64, title, content string) (domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return domain.Post{}, domain.NotFoundError{Resource: "post", ID: id}
	}
	post.Title = title
	post.Content = content
	post.UpdatedAt = r.now()
	r.posts[id] = post

	return clonePost(post), nil
}

// DeletePost removes the post, its comments and their index entries.
func (r *BoardRepository) DeletePost(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return domain.NotFoundError{Resource: "post", ID: id}
	}
	for _, cid := range post.CommentIDs {
		delete(r.comments, cid)
		delete(r.commentPost, cid)
	}
	delete(r.posts, id)
	return nil
}

func (r *BoardRepository) AddComment(ctx context.Context, postID int64, comment domain.Comment) (domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[postID]
	if !ok {
		return domain.Comment{}, domain.NotFoundError{Resource: "post", ID: postID}
	}

	r.nextComment++
	now := r.now()
	comment.ID = r.nextComment
	comment.PostID = postID
	comment.CreatedAt = now
	comment.UpdatedAt = now

	r.comments[comment.ID] = comment
	r.commentPost[comment.ID] = postID
	post.CommentIDs = append(post.CommentIDs, comment.ID)
	r.posts[postID] = post

	return comment, nil
}

func (r *BoardRepository) GetComment(ctx context.Context, id int64) (domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comment, ok := r.comments[id]
	if !ok {
		return domain.Comment{}, domain.NotFoundError{Resource: "comment", ID: id}
	}
	return comment, nil
}

// ListComments follows the ownership list of the post, so comments come
// back in the order they were added.
func (r *BoardRepository) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Comment{}
	post, ok := r.posts[postID]
	if !ok {
		return result, nil
	}
	for _, cid := range post.CommentIDs {
		result = append(result, r.comments[cid])
	}
	return result, nil
}

func (r *BoardRepository) UpdateComment(ctx context.Context, id int64, content string) (domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment, ok := r.comments[id]
	if !ok {
		return domain.Comment{}, domain.NotFoundError{Resource: "comment", ID: id}
	}
	comment.Content = content
	comment.UpdatedAt = r.now()
	r.comments[id] = comment
	return comment, nil
}

func (r *BoardRepository) RemoveComment(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	postID, ok := r.commentPost[id]
	if !ok {
		return domain.NotFoundError{Resource: "comment", ID: id}
	}

	if post, ok := r.posts[postID]; ok {
		ids := post.CommentIDs[:0:0]
		for _, cid := range post.CommentIDs {
			if cid != id {
				ids = append(ids, cid)
			}
		}
		post.CommentIDs = ids
		r.posts[postID] = post
	}
	delete(r.comments, id)
	delete(r.commentPost, id)
	return nil
}

// CommentOwner reports the post that owns comment id.
func (r *BoardRepository) CommentOwner(id int64) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	postID, ok := r.commentPost[id]
	return postID, ok
}
