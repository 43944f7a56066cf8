package services

import (
	"context"
	"sort"
	"sync"

	"github.com/AnshRaj112/emotional-diary-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InMemoryPostStore provides an in-memory implementation of PostStore for
// local development (STORE_DRIVER=memory) and tests. Nothing is persisted.
type InMemoryPostStore struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]*models.Post
}

// NewInMemoryPostStore creates an empty in-memory post store
func NewInMemoryPostStore() *InMemoryPostStore {
	return &InMemoryPostStore{posts: make(map[primitive.ObjectID]*models.Post)}
}

func (s *InMemoryPostStore) Insert(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts[post.ID] = clonePost(post)
	return nil
}

func (s *InMemoryPostStore) List(ctx context.Context) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, *clonePost(p))
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *InMemoryPostStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	return clonePost(p), nil
}

func (s *InMemoryPostStore) IncrementLikes(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	p.Likes++
	return nil
}

func (s *InMemoryPostStore) AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	p.Comments = append(p.Comments, comment)
	return nil
}

func (s *InMemoryPostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *InMemoryPostStore) DeleteComment(ctx context.Context, id primitive.ObjectID, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	for i, c := range p.Comments {
		if c.ID == commentID {
			p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
			return nil
		}
	}
	return ErrCommentNotFound
}

func clonePost(p *models.Post) *models.Post {
	cp := *p
	cp.Comments = make([]models.Comment, len(p.Comments))
	copy(cp.Comments, p.Comments)
	return &cp
}
