package mapview

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var ErrViewNotFound = errors.New("view not found")

// Registry keeps the mounted views. A view that is not touched for the TTL is
// evicted and closed, the same as an explicit Delete.
type Registry struct {
	views    *cache.Cache
	loader   Loader
	logger   *zap.Logger
	recorder Recorder
}

func NewRegistry(loader Loader, ttl time.Duration, logger *zap.Logger, recorder Recorder) *Registry {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	r := &Registry{
		views:    cache.New(ttl, ttl/2),
		loader:   loader,
		logger:   logger,
		recorder: recorder,
	}
	r.views.OnEvicted(func(id string, item interface{}) {
		if view, ok := item.(*View); ok {
			view.Close()
			r.recorder.ViewClosed()
			r.logger.Debug("View evicted", zap.String("view", id))
		}
	})
	return r
}

// Create mounts a new view and loads its locations.
func (r *Registry) Create(ctx context.Context) *View {
	view := NewView(uuid.NewString(), r.logger, r.recorder)
	view.Load(ctx, r.loader)
	r.views.Set(view.ID(), view, cache.DefaultExpiration)
	r.recorder.ViewOpened()
	return view
}

// Get returns the view and extends its lifetime. Replace only succeeds while
// the entry is still live, so a view the janitor has expired is never put
// back.
func (r *Registry) Get(id string) (*View, error) {
	item, found := r.views.Get(id)
	if !found {
		return nil, ErrViewNotFound
	}
	view := item.(*View)
	if err := r.touch(id, view); err != nil {
		return nil, err
	}
	return view, nil
}

func (r *Registry) touch(id string, view *View) error {
	if err := r.views.Replace(id, view, cache.DefaultExpiration); err != nil {
		return ErrViewNotFound
	}
	return nil
}

// Delete unmounts the view, releasing its overlay.
func (r *Registry) Delete(id string) error {
	if _, found := r.views.Get(id); !found {
		return ErrViewNotFound
	}
	r.views.Delete(id)
	return nil
}

func (r *Registry) Len() int {
	return r.views.ItemCount()
}

// Close unmounts every view.
func (r *Registry) Close() {
	for id := range r.views.Items() {
		r.views.Delete(id)
	}
}
