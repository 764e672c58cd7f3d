// ABOUTME: Entity service contract shared by the hosted and mock variants
// ABOUTME: Declares Store and the service-level sentinel errors
package service

import (
	"context"
	"errors"

	"github.com/harperreed/dealdesk/models"
)

var (
	// ErrUnavailable is wrapped when a read could not reach the backend. The
	// read still returns a usable empty result alongside it.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrWriteFailed is wrapped when a create or update had no accepted item.
	ErrWriteFailed = errors.New("write failed")

	// ErrNotFound is wrapped by stores that treat a missing id as an error.
	ErrNotFound = errors.New("not found")
)

// Store is the CRUD surface for one entity kind.
type Store[T, In any] interface {
	// GetAll returns every entity. The slice is never nil.
	GetAll(ctx context.Context) ([]T, error)
	// GetByID reports a missing entity either as nil or as an error
	// wrapping ErrNotFound. Use Missing to check both.
	GetByID(ctx context.Context, id int) (*T, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id int, in In) (T, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type (
	ContactStore = Store[models.Contact, models.ContactInput]
	DealStore    = Store[models.Deal, models.DealInput]
)

// Missing reports whether a GetByID result means the entity does not exist.
func Missing[T any](v *T, err error) bool {
	if err != nil {
		return errors.Is(err, ErrNotFound)
	}
	return v == nil
}
