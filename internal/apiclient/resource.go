package apiclient

import (
	"context"
	"fmt"
	"net/http"
)

// Resource is a REST collection exposed by a DRF ModelViewSet.
type Resource[T any] struct {
	c    *Client
	name string
}

func NewResource[T any](c *Client, name string) *Resource[T] {
	return &Resource[T]{c: c, name: name}
}

func (r *Resource[T]) collection() string { return "/" + r.name + "/" }

func (r *Resource[T]) item(id int64) string { return fmt.Sprintf("/%s/%d/", r.name, id) }

// List fetches the whole collection.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.c.list(ctx, r.collection(), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	var out T
	if err := r.c.do(ctx, http.MethodGet, r.item(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Create(ctx context.Context, body any) (*T, error) {
	var out T
	if err := r.c.do(ctx, http.MethodPost, r.collection(), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the item (PUT), as the admin forms do.
func (r *Resource[T]) Update(ctx context.Context, id int64, body any) (*T, error) {
	var out T
	if err := r.c.do(ctx, http.MethodPut, r.item(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.c.do(ctx, http.MethodDelete, r.item(id), nil, nil)
}
