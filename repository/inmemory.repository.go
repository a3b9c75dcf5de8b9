package repository

import (
	"context"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryRepository returns an implementation of Repository for the given entity E,
// holding a copy of entities in the same order.
// It is expected that E has a field called `ID`, that is used as the primary key and can
// be overwritten by WithIDField.
// If your repository needs additional methods, you can embed this repo into our own implementation to extend
// your own repository easily to your use case. See the examples in the test files.
//
// If two of the given entities share an ID, no repository is returned and the error is a DuplicateIDError.
func NewMemoryRepository[E any, ID id](entities []E, opts ...Option) (*MemoryRepository[E, ID], error) {
	repo := &MemoryRepository[E, ID]{
		mu:       sync.RWMutex{},
		entities: make([]E, 0, len(entities)),
		ids:      make([]ID, 0, len(entities)),
		index:    make(map[ID]int, len(entities)),
		maxID:    *new(ID),
		mutable:  isMutable[E](),
		repoConfig: repoConfig{
			idFieldName: "ID",
		},
	}

	for _, opt := range opts {
		opt(&repo.repoConfig)
	}

	if err := validateIDField[E, ID](repo.idFieldName); err != nil {
		return nil, err
	}

	for _, e := range entities {
		id, err := repo.getID(e)
		if err != nil {
			return nil, err
		}

		if _, found := repo.index[id]; found {
			return nil, &DuplicateIDError[ID]{ID: id}
		}

		repo.append(id, e)
	}

	return repo, nil
}

// MemoryRepository implements Repository in a generic way.
// The entities are kept in a slice, so the insertion order is preserved,
// and an index from ID to position makes the lookups by ID O(1).
//
// It is safe for concurrent use. Predicates are called without holding the lock,
// on a snapshot of the entities.
//
// If E is a pointer or an interface, the ID of a stored entity can change from the outside.
// The IDs are then read again from the entities before each change and verified on lookups,
// so FindByID always returns the same entity as Find with a predicate on the ID would.
type MemoryRepository[E any, ID id] struct {
	mu sync.RWMutex

	entities []E
	// ids[i] is the ID entities[i] had when it was last read.
	ids   []ID
	index map[ID]int

	// maxID is the highest ID ever stored, NextID continues from it.
	maxID ID

	// mutable is true if the IDs of stored entities can be changed by the caller.
	mutable bool

	repoConfig
}

var _ Repository[struct{ ID int }, int] = (*MemoryRepository[struct{ ID int }, int])(nil)

const panicIDNotSupported = "type of ID is not supported: "

type idKind int

const (
	unsupportedKind idKind = iota
	stringKind
	intKind
	uintKind
)

func kindOf(kind reflect.Kind) idKind {
	switch kind { //nolint:exhaustive // all other kinds are not supported
	case reflect.String:
		return stringKind
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intKind
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return uintKind
	default:
		return unsupportedKind
	}
}

func isMutable[E any]() bool {
	kind := reflect.TypeOf((*E)(nil)).Elem().Kind()

	return kind == reflect.Pointer || kind == reflect.Interface
}

// fits reports if all values of an integer field of type field can be stored in an ID of type id.
func fits(field reflect.Type, id reflect.Type) bool {
	if kindOf(field.Kind()) == stringKind {
		return true
	}

	return field.Size() <= id.Size()
}

// validateIDField ensures E has an exported field idFieldName,
// that can be converted into ID.
// If E is an interface type, the check is deferred to the first entity.
func validateIDField[E any, ID id](idFieldName string) error {
	typ := reflect.TypeOf((*E)(nil)).Elem()
	if typ.Kind() == reflect.Interface {
		return nil
	}

	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s is not a struct", ErrMissingIDField, typ)
	}

	field, found := typ.FieldByName(idFieldName)
	if !found || !field.IsExported() {
		return fmt.Errorf("%w: %s does not have the field with name: %s", ErrMissingIDField, typ, idFieldName)
	}

	idType := reflect.TypeOf(*new(ID))
	if kindOf(field.Type.Kind()) != kindOf(idType.Kind()) {
		return fmt.Errorf("%w: field %s of %s is a %s, not a %s",
			ErrMissingIDField, idFieldName, typ, field.Type.Kind(), idType.Kind())
	}

	if !fits(field.Type, idType) {
		return fmt.Errorf("%w: field %s of %s is a %s, too large for a %s",
			ErrMissingIDField, idFieldName, typ, field.Type.Kind(), idType.Kind())
	}

	return nil
}

func (repo *MemoryRepository[E, ID]) getID(entity E) (ID, error) { //nolint:ireturn,lll // needs access to the type ID and fp, as it is not recognised even with "generic" setting
	val := reflect.Indirect(reflect.ValueOf(entity))
	if !val.IsValid() {
		return *new(ID), fmt.Errorf("%w: entity is nil", ErrMissingIDField)
	}

	if val.Kind() != reflect.Struct {
		return *new(ID), fmt.Errorf("%w: %s is not a struct", ErrMissingIDField, val.Type())
	}

	idField := val.FieldByName(repo.idFieldName)
	if !idField.IsValid() {
		return *new(ID), fmt.Errorf("%w: entity does not have the field with name: %s", ErrMissingIDField, repo.idFieldName)
	}

	var id ID

	kind := kindOf(idField.Kind())
	if kind == unsupportedKind || kind != kindOf(reflect.TypeOf(id).Kind()) {
		return *new(ID), fmt.Errorf("%w: field %s of kind %s cannot be used as id",
			ErrMissingIDField, repo.idFieldName, idField.Kind())
	}

	target := reflect.ValueOf(&id).Elem()
	overflow := false

	switch kind {
	case stringKind:
		target.SetString(idField.String())
	case intKind:
		overflow = target.OverflowInt(idField.Int())
		target.SetInt(idField.Int())
	case uintKind:
		overflow = target.OverflowUint(idField.Uint())
		target.SetUint(idField.Uint())
	case unsupportedKind:
	}

	if overflow {
		return *new(ID), fmt.Errorf("%w: value of field %s does not fit into a %s",
			ErrMissingIDField, repo.idFieldName, target.Kind())
	}

	return id, nil
}

// append adds the entity to the end. The caller has to hold the lock.
func (repo *MemoryRepository[E, ID]) append(id ID, entity E) {
	repo.index[id] = len(repo.entities)
	repo.entities = append(repo.entities, entity)
	repo.ids = append(repo.ids, id)

	if id > repo.maxID {
		repo.maxID = id
	}
}

// reindex rebuilds the index from the stored ids.
// If ids are not unique, the first entity in order is indexed. The caller has to hold the lock.
func (repo *MemoryRepository[E, ID]) reindex() {
	clear(repo.index)

	for i, id := range repo.ids {
		if _, found := repo.index[id]; !found {
			repo.index[id] = i
		}
	}
}

// refresh reads the ids of mutable entities again, as they can be changed from the outside.
// The caller has to hold the write lock.
func (repo *MemoryRepository[E, ID]) refresh() {
	if !repo.mutable {
		return
	}

	for i, e := range repo.entities {
		// an id that no longer fits into ID keeps its previous value
		if id, err := repo.getID(e); err == nil {
			repo.ids[i] = id
		}

		if repo.ids[i] > repo.maxID {
			repo.maxID = repo.ids[i]
		}
	}

	repo.reindex()
}

// lookup returns the position of the first entity with the given id.
// The caller has to hold the lock.
func (repo *MemoryRepository[E, ID]) lookup(id ID) (int, bool) {
	pos, found := repo.index[id]
	if !repo.mutable {
		return pos, found
	}

	if found && repo.currentID(pos) == id {
		return pos, true
	}

	// the index is outdated, as an id has been changed from the outside
	for i := range repo.entities {
		if repo.currentID(i) == id {
			return i, true
		}
	}

	return 0, false
}

func (repo *MemoryRepository[E, ID]) currentID(pos int) ID { //nolint:ireturn // fp
	id, err := repo.getID(repo.entities[pos])
	if err != nil {
		return repo.ids[pos]
	}

	return id
}

// snapshot returns a copy of the entities. The caller has to hold the lock.
func (repo *MemoryRepository[E, ID]) snapshot() []E {
	all := make([]E, len(repo.entities))
	copy(all, repo.entities)

	return all
}

// NextID returns a new ID. It can be of the underlying type of string or integer.
// Integer IDs continue after the highest ID the repository has seen, string IDs are random UUIDs.
func (repo *MemoryRepository[E, ID]) NextID(_ context.Context) (ID, error) { //nolint:ireturn,lll // fp, as it is not recognised even with "generic" setting
	var id ID

	switch kindOf(reflect.TypeOf(id).Kind()) {
	case stringKind:
		reflect.ValueOf(&id).Elem().SetString(uuid.New().String())
	case intKind:
		repo.mu.Lock()
		defer repo.mu.Unlock()

		repo.refresh()

		// increment the ID: the generic does not know which type it is,
		// so that is why reflection is used.
		newID := reflect.ValueOf(&repo.maxID).Elem().Int() + 1
		reflect.ValueOf(&id).Elem().SetInt(newID)
		repo.maxID = id
	case uintKind:
		repo.mu.Lock()
		defer repo.mu.Unlock()

		repo.refresh()

		newID := reflect.ValueOf(&repo.maxID).Elem().Uint() + 1
		reflect.ValueOf(&id).Elem().SetUint(newID)
		repo.maxID = id
	case unsupportedKind:
		panic(panicIDNotSupported + reflect.TypeOf(id).Kind().String())
	}

	return id, nil
}

// Add appends the entity to the end of the repository.
// If an entity with the same ID exists already, the error is a DuplicateIDError.
func (repo *MemoryRepository[E, ID]) Add(_ context.Context, entity E) error {
	id, err := repo.getID(entity)
	if err != nil {
		return err
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.refresh()

	if _, found := repo.index[id]; found {
		return &DuplicateIDError[ID]{ID: id}
	}

	repo.append(id, entity)

	return nil
}

func (repo *MemoryRepository[E, ID]) Create(ctx context.Context, entity E) error {
	return repo.Add(ctx, entity)
}

// Update replaces the entity with the given id in place.
// It returns false, if no entity has that id.
// The ID of entity has to be id, otherwise the error is an IDMismatchError
// and no lookup happens.
func (repo *MemoryRepository[E, ID]) Update(_ context.Context, id ID, entity E) (bool, error) {
	entityID, err := repo.getID(entity)
	if err != nil {
		return false, err
	}

	if entityID != id {
		return false, &IDMismatchError[ID]{ID: id, EntityID: entityID}
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.refresh()

	pos, found := repo.index[id]
	if !found {
		return false, nil
	}

	repo.entities[pos] = entity
	repo.ids[pos] = id

	return true, nil
}

// Remove deletes the entity with the given id and keeps the order of the others.
// It returns false, if no entity has that id.
func (repo *MemoryRepository[E, ID]) Remove(_ context.Context, id ID) bool {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.refresh()

	pos, found := repo.index[id]
	if !found {
		return false
	}

	repo.entities = slices.Delete(repo.entities, pos, pos+1)
	repo.ids = slices.Delete(repo.ids, pos, pos+1)

	// all entities after the removed one moved one position forward
	repo.reindex()

	return true
}

// Find returns the first entity in order, for which predicate returns true.
func (repo *MemoryRepository[E, ID]) Find(_ context.Context, predicate func(E) bool) (E, bool) { //nolint:ireturn,lll // valid use of generics
	repo.mu.RLock()
	all := repo.snapshot()
	repo.mu.RUnlock()

	for _, e := range all {
		if predicate(e) {
			return e, true
		}
	}

	return *new(E), false
}

// FindAll returns all entities in order, for which predicate returns true.
func (repo *MemoryRepository[E, ID]) FindAll(_ context.Context, predicate func(E) bool) []E {
	repo.mu.RLock()
	all := repo.snapshot()
	repo.mu.RUnlock()

	result := []E{}

	for _, e := range all {
		if predicate(e) {
			result = append(result, e)
		}
	}

	return result
}

// FindByID returns the entity with the given id.
// As IDs are unique, the index gives the same result as a scan in order would.
func (repo *MemoryRepository[E, ID]) FindByID(_ context.Context, id ID) (E, bool) { //nolint:ireturn,lll // valid use of generics
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if pos, ok := repo.lookup(id); ok {
		return repo.entities[pos], true
	}

	return *new(E), false
}

func (repo *MemoryRepository[E, ID]) Contains(_ context.Context, id ID) bool {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	_, ok := repo.lookup(id)

	return ok
}

// All returns a snapshot of all entities in order.
// The returned slice is never shared with the repository.
func (repo *MemoryRepository[E, ID]) All(_ context.Context) []E {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	return repo.snapshot()
}

// Iter iterates over a snapshot of all entities, taken when Iter is called.
func (repo *MemoryRepository[E, ID]) Iter(ctx context.Context) iter.Seq[E] {
	return slices.Values(repo.All(ctx))
}

func (repo *MemoryRepository[E, ID]) Count(_ context.Context) int {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	return len(repo.entities)
}

// Clear removes all entities. NextID still continues after the highest ID seen before.
func (repo *MemoryRepository[E, ID]) Clear(_ context.Context) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.entities = []E{}
	repo.ids = []ID{}
	clear(repo.index)
}
