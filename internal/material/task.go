package material

import (
	"context"

	"github.com/google/uuid"

	"github.com/Faultbox/primgltf/internal/texture"
)

// Task is a pending texture fetch. It completes exactly once.
type Task struct {
	ID   uuid.UUID
	done chan struct{}
	img  texture.Image
	err  error
}

func newTask(id uuid.UUID) *Task {
	return &Task{ID: id, done: make(chan struct{})}
}

func (t *Task) complete(img texture.Image, err error) {
	t.img, t.err = img, err
	close(t.done)
}

// Done is closed once the fetch finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Await blocks until the fetch finished or ctx is cancelled.
func (t *Task) Await(ctx context.Context) (texture.Image, error) {
	select {
	case <-t.done:
		return t.img, t.err
	case <-ctx.Done():
		return texture.Image{}, ctx.Err()
	}
}
