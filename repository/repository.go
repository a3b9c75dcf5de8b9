package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

var (
	ErrAlreadyExists  = errors.New("exists already")
	ErrIDMismatch     = errors.New("id mismatch")
	ErrMissingIDField = errors.New("missing id field")
)

// DuplicateIDError is returned, if an entity would be added,
// while another entity with the same ID exists already.
// It matches ErrAlreadyExists with errors.Is.
type DuplicateIDError[ID id] struct {
	ID ID
}

func (e *DuplicateIDError[ID]) Error() string {
	return fmt.Sprintf("entity with id %v %s", e.ID, ErrAlreadyExists)
}

func (e *DuplicateIDError[ID]) Is(target error) bool {
	return target == ErrAlreadyExists
}

// IDMismatchError is returned by Update, if the ID of the new entity
// is not the ID of the entity to be replaced.
// It matches ErrIDMismatch with errors.Is.
type IDMismatchError[ID id] struct {
	ID       ID
	EntityID ID
}

func (e *IDMismatchError[ID]) Error() string {
	return fmt.Sprintf("%s: cannot update id %v with entity of id %v", ErrIDMismatch, e.ID, e.EntityID)
}

func (e *IDMismatchError[ID]) Is(target error) bool {
	return target == ErrIDMismatch
}

// Option configures a MemoryRepository.
type Option func(config *repoConfig)

// WithIDField set's the name of the field that is used as an id or primary key.
// If not set, it is assumed that the entity struct has a field with the name "ID".
func WithIDField(idFieldName string) Option { //nolint:revive // unexported-return is OK for this option
	return func(config *repoConfig) {
		config.idFieldName = idFieldName
	}
}

type repoConfig struct {
	idFieldName string
}

// Repository is a general purpose interface documenting which methods are available by the generic MemoryRepository.
// ID is the primary key and needs to be of one of the underlying types.
// If your repository needs additional methods, you can extend your own repository easily to tune it to your use case.
// See the examples in the test files.
type Repository[E any, ID id] interface { //nolint:interfacebloat // showcase of all methods that are possible
	NextID(ctx context.Context) (ID, error)

	Add(ctx context.Context, entity E) error
	Create(ctx context.Context, entity E) error
	Update(ctx context.Context, id ID, entity E) (bool, error)
	Remove(ctx context.Context, id ID) bool

	Find(ctx context.Context, predicate func(E) bool) (E, bool)
	FindAll(ctx context.Context, predicate func(E) bool) []E
	FindByID(ctx context.Context, id ID) (E, bool)
	Contains(ctx context.Context, id ID) bool

	All(ctx context.Context) []E
	Iter(ctx context.Context) iter.Seq[E]
	Count(ctx context.Context) int

	Clear(ctx context.Context)
}

// id are the types allowed as a primary key used in the generic Repository.
type id interface {
	~string |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}
