// Package repository keeps an ordered, in-memory collection of entities,
// each identified by a unique ID field.
//
// A MemoryRepository offers a whole set of methods already out of the box. That might not be enough, though.
// It is possible to overwrite an existing method to change the behaviour as well as extend the Repository
// with new methods. There are examples for both.
//
// The entities are kept in insertion order. Updates replace an entity in place and removals close the gap,
// so All always returns the entities in the order they have been added.
// All returns a snapshot: changing the returned slice never changes the repository.
//
// Absence of an entity is not an error: Remove and Update report it with a bool,
// Find and FindByID with the comma-ok idiom.
// Errors are only returned, if an operation would break the uniqueness of the IDs.
// A failing operation never changes the repository.
//
// The MemoryRepository itself does not log. Wrap it with NewObservedRepository to get
// logs, traces, and metrics for each operation.
package repository
