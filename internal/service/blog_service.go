package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"javinity/internal/content"
	"javinity/internal/domain"
	"javinity/internal/repository"
)

// BlogService manages the blog-reading view instances of visitor sessions.
type BlogService interface {
	// Mount starts a fresh view from the seed, replacing the session's previous one.
	Mount(ctx context.Context, sessionID string) (*domain.BlogView, error)
	Get(ctx context.Context, sessionID, viewID string) (*domain.BlogView, error)
	ToggleLike(ctx context.Context, sessionID, viewID string) (*domain.BlogView, error)
	UpdateDraft(ctx context.Context, sessionID, viewID, text string) (*domain.BlogView, error)
	// SubmitComment reports whether a comment was appended.
	SubmitComment(ctx context.Context, sessionID, viewID, text string) (*domain.BlogView, bool, error)
	Unmount(ctx context.Context, sessionID, viewID string) error
}

type blogService struct {
	store viewStore
	blog  content.Blog
	newID func() string

	mu sync.Mutex
}

func NewBlogService(views repository.ViewRepository, blog content.Blog) BlogService {
	return &blogService{
		store: viewStore{repo: views, now: time.Now},
		blog:  blog,
		newID: uuid.NewString,
	}
}

func (s *blogService) Mount(ctx context.Context, sessionID string) (*domain.BlogView, error) {
	view := domain.NewBlogView(s.newID(), s.blog.Likes, s.blog.SeedComments())

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.save(ctx, sessionID, domain.ViewKindBlog, view.ID, view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *blogService) Get(ctx context.Context, sessionID, viewID string) (*domain.BlogView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var view domain.BlogView
	if err := s.store.load(ctx, sessionID, domain.ViewKindBlog, viewID, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *blogService) ToggleLike(ctx context.Context, sessionID, viewID string) (*domain.BlogView, error) {
	return s.update(ctx, sessionID, viewID, func(v domain.BlogView) domain.BlogView {
		return v.ToggleLike()
	})
}

func (s *blogService) UpdateDraft(ctx context.Context, sessionID, viewID, text string) (*domain.BlogView, error) {
	return s.update(ctx, sessionID, viewID, func(v domain.BlogView) domain.BlogView {
		return v.UpdateDraft(text)
	})
}

func (s *blogService) SubmitComment(ctx context.Context, sessionID, viewID, text string) (*domain.BlogView, bool, error) {
	var appended bool
	view, err := s.update(ctx, sessionID, viewID, func(v domain.BlogView) domain.BlogView {
		next, ok := v.SubmitComment(text, s.store.now())
		appended = ok
		return next
	})
	if err != nil {
		return nil, false, err
	}
	return view, appended, nil
}

func (s *blogService) Unmount(ctx context.Context, sessionID, viewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.unmount(ctx, sessionID, domain.ViewKindBlog, viewID)
}

func (s *blogService) update(ctx context.Context, sessionID, viewID string, fn func(domain.BlogView) domain.BlogView) (*domain.BlogView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var view domain.BlogView
	if err := s.store.load(ctx, sessionID, domain.ViewKindBlog, viewID, &view); err != nil {
		return nil, err
	}
	next := fn(view)
	if err := s.store.save(ctx, sessionID, domain.ViewKindBlog, next.ID, next); err != nil {
		return nil, err
	}
	return &next, nil
}
