package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/datarepo/repository/testdata"
)

// TestSuite verifies that a Repository implementation behaves like the MemoryRepository.
// newUserRepo has to return a new and independent repository holding the given users in order.
func TestSuite(
	t *testing.T,
	newUserRepo func(users []testdata.User) (Repository[testdata.User, int], error),
) { //nolint:tparallel // t.Parallel can only be called ones! The caller decides
	t.Helper()

	if newUserRepo == nil {
		t.Fatal("user repository constructor is nil")
	}

	ctx := context.Background()

	mustNew := func(t *testing.T, users ...testdata.User) Repository[testdata.User, int] {
		t.Helper()

		repo, err := newUserRepo(users)
		if err != nil {
			t.Fatal("could not create repository:", err)
		}

		return repo
	}

	t.Run("new", func(t *testing.T) {
		t.Parallel()

		repo := mustNew(t)
		assert.NotNil(t, repo)
		assert.Equal(t, 0, repo.Count(ctx))
		assert.NotNil(t, repo.All(ctx))
		assert.Empty(t, repo.All(ctx))
	})

	t.Run("new with entities keeps order", func(t *testing.T) {
		t.Parallel()

		users := []testdata.User{testdata.TestUser(3), testdata.TestUser(1), testdata.TestUser(2)}
		repo := mustNew(t, users...)

		assert.Equal(t, users, repo.All(ctx))

		users[0].Name = gofakeit.Name()
		assert.NotEqual(t, users[0], repo.All(ctx)[0], "repository has to copy the initial entities")
	})

	t.Run("new with duplicate ids", func(t *testing.T) {
		t.Parallel()

		repo, err := newUserRepo([]testdata.User{testdata.TestUser(1), testdata.TestUser(2), testdata.TestUser(1)})
		assert.ErrorIs(t, err, ErrAlreadyExists)
		assert.Nil(t, repo)

		var dup *DuplicateIDError[int]
		if assert.True(t, errors.As(err, &dup)) {
			assert.Equal(t, 1, dup.ID)
		}
	})

	t.Run("Add", func(t *testing.T) {
		t.Parallel()

		repo := mustNew(t)

		u0, u1 := testdata.TestUser(1), testdata.TestUser(2)
		assert.NoError(t, repo.Add(ctx, u0))
		assert.NoError(t, repo.Create(ctx, u1))

		assert.Equal(t, []testdata.User{u0, u1}, repo.All(ctx))
	})

	t.Run("Add duplicate", func(t *testing.T) {
		t.Parallel()

		repo := mustNew(t, testdata.TestUser(1), testdata.TestUser(2))
		before := repo.All(ctx)

		err := repo.Add(ctx, testdata.TestUser(2))
		assert.ErrorIs(t, err, ErrAlreadyExists)

		var dup *DuplicateIDError[int]
		if assert.True(t, errors.As(err, &dup)) {
			assert.Equal(t, 2, dup.ID)
		}

		assert.Equal(t, 2, repo.Count(ctx))
		assert.Equal(t, before, repo.All(ctx), "failed add must not change the repository")
	})

	t.Run("Add then Remove round-trip", func(t *testing.T) {
		t.Parallel()

		repo := mustNew(t, testdata.TestUser(1), testdata.TestUser(2))
		before, count := repo.All(ctx), repo.Count(ctx)

		assert.NoError(t, repo.Add(ctx, testdata.TestUser(3)))
		assert.True(t, repo.Remove(ctx, 3))

		assert.Equal(t, count, repo.Count(ctx))
		assert.Equal(t, before, repo.All(ctx))
	})

	t.Run("Remove", func(t *testing.T) {
		t.Parallel()

		a, b, c := testdata.TestUser(1), testdata.TestUser(2), testdata.TestUser(3)
		repo := mustNew(t, a, b, c)

		assert.True(t, repo.Remove(ctx, 2))
		assert.Equal(t, []testdata.User{a, c}, repo.All(ctx), "gap has to be closed")

		assert.False(t, repo.Remove(ctx, 2), "already removed")
		assert.False(t, repo.Remove(ctx, 1337))
		assert.Equal(t, 2, repo.Count(ctx))

		// the lookup has to work after the positions moved
		got, found := repo.FindByID(ctx, 3)
		assert.True(t, found)
		assert.Equal(t, c, got)
	})

	t.Run("Update keeps position", func(t *testing.T) {
		t.Parallel()

		a, b, c := testdata.TestUser(1), testdata.TestUser(2), testdata.TestUser(3)
		repo := mustNew(t, a, b, c)

		b2 := testdata.User{ID: 2, Name: gofakeit.Name(), Email: gofakeit.Email()}
		updated, err := repo.Update(ctx, 2, b2)
		assert.NoError(t, err)
		assert.True(t, updated)

		assert.Equal(t, []testdata.User{a, b2, c}, repo.All(ctx))
	})

	t.Run("Update missing", func(t *testing.T) {
		t.Parallel()

		repo := mustNew(t, testdata.TestUser(1))
		before := repo.All(ctx)

		updated, err := repo.Update(ctx, 2, testdata.TestUser(2))
		assert.NoError(t, err)
		assert.False(t, updated)
		assert.Equal(t, before, repo.All(ctx))
	})

	t.Run("Update mismatch", func(t *testing.T) {
		t.Parallel()

		u := testdata.TestUser(1)
		repo := mustNew(t, u, testdata.TestUser(2))

		updated, err := repo.Update(ctx, 1, testdata.TestUser(2))
		assert.ErrorIs(t, err, ErrIDMismatch)
		assert.False(t, updated)

		var mismatch *IDMismatchError[int]
		if assert.True(t, errors.As(err, &mismatch)) {
			assert.Equal(t, 1, mismatch.ID)
			assert.Equal(t, 2, mismatch.EntityID)
		}

		got, _ := repo.FindByID(ctx, 1)
		assert.Equal(t, u, got, "entity must be unchanged")

		_, err = repo.Update(ctx, 1337, testdata.TestUser(1))
		assert.ErrorIs(t, err, ErrIDMismatch, "mismatch is checked before the lookup")
	})

	t.Run("Find", func(t *testing.T) {
		t.Parallel()

		a := testdata.User{ID: 1, Name: "John"}
		b := testdata.User{ID: 2, Name: "Midun"}
		c := testdata.User{ID: 3, Name: "John"}
		repo := mustNew(t, a, b, c)

		got, found := repo.Find(ctx, func(u testdata.User) bool { return u.Name == "John" })
		assert.True(t, found)
		assert.Equal(t, a, got, "first match in order")

		got, found = repo.Find(ctx, func(u testdata.User) bool { return u.Name == "Jane" })
		assert.False(t, found)
		assert.Empty(t, got)

		assert.Equal(t, []testdata.User{a, c}, repo.FindAll(ctx, func(u testdata.User) bool { return u.Name == "John" }))
		assert.Empty(t, repo.FindAll(ctx, func(testdata.User) bool { return false }))
	})

	t.Run("Find propagates panic of predicate", func(t *testing.T) {
		t.Parallel()

		repo := mustNew(t, testdata.TestUser(1))

		assert.PanicsWithValue(t, "predicate failed", func() {
			repo.Find(ctx, func(testdata.User) bool { panic("predicate failed") })
		})

		assert.Equal(t, 1, repo.Count(ctx), "repository is usable after a predicate panicked")
	})

	t.Run("Find with predicate calling the repository", func(t *testing.T) {
		t.Parallel()

		repo := mustNew(t, testdata.TestUser(1), testdata.TestUser(2))

		_, found := repo.Find(ctx, func(u testdata.User) bool {
			return repo.Count(ctx) == 2 && u.ID == 2
		})
		assert.True(t, found)
	})

	t.Run("FindByID", func(t *testing.T) {
		t.Parallel()

		u := testdata.TestUser(7)
		repo := mustNew(t, testdata.TestUser(1), u)

		got, found := repo.FindByID(ctx, 7)
		assert.True(t, found)
		assert.Equal(t, u, got)

		byScan, _ := repo.Find(ctx, func(e testdata.User) bool { return e.ID == 7 })
		assert.Equal(t, byScan, got)

		got, found = repo.FindByID(ctx, 1337)
		assert.False(t, found)
		assert.Empty(t, got)

		assert.True(t, repo.Contains(ctx, 7))
		assert.False(t, repo.Contains(ctx, 1337))
	})

	t.Run("All is a snapshot", func(t *testing.T) {
		t.Parallel()

		u := testdata.TestUser(1)
		repo := mustNew(t, u, testdata.TestUser(2))

		all := repo.All(ctx)
		all[0] = testdata.TestUser(1337)
		_ = append(all, testdata.TestUser(3))

		assert.Equal(t, 2, repo.Count(ctx))
		assert.Len(t, repo.All(ctx), 2)
		assert.Equal(t, u, repo.All(ctx)[0])
	})

	t.Run("Iter", func(t *testing.T) {
		t.Parallel()

		users := []testdata.User{testdata.TestUser(1), testdata.TestUser(2), testdata.TestUser(3)}
		repo := mustNew(t, users...)

		got := []testdata.User{}
		for u := range repo.Iter(ctx) {
			got = append(got, u)

			repo.Remove(ctx, u.ID) // changing the repository does not change the iteration
		}

		assert.Equal(t, users, got)
		assert.Equal(t, 0, repo.Count(ctx))

		for range repo.Iter(ctx) {
			t.Fatal("empty repository has nothing to iterate")
		}
	})

	t.Run("Count", func(t *testing.T) {
		t.Parallel()

		repo := mustNew(t)

		for i := range 10 {
			assert.NoError(t, repo.Add(ctx, testdata.TestUser(i+1)))
			assert.Equal(t, i+1, repo.Count(ctx))
			assert.Len(t, repo.All(ctx), repo.Count(ctx))
		}
	})

	t.Run("Clear", func(t *testing.T) {
		t.Parallel()

		repo := mustNew(t, testdata.TestUser(1), testdata.TestUser(2))

		repo.Clear(ctx)
		assert.Equal(t, 0, repo.Count(ctx))
		assert.Empty(t, repo.All(ctx))

		repo.Clear(ctx)
		assert.Equal(t, 0, repo.Count(ctx), "clear is idempotent")

		assert.NoError(t, repo.Add(ctx, testdata.TestUser(1)), "ids can be used again")
	})

	t.Run("NextID", func(t *testing.T) {
		t.Parallel()

		repo := mustNew(t, testdata.TestUser(3), testdata.TestUser(1))

		id, err := repo.NextID(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 4, id)

		id, err = repo.NextID(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 5, id)

		assert.NoError(t, repo.Add(ctx, testdata.TestUser(10)))

		id, _ = repo.NextID(ctx)
		assert.Equal(t, 11, id)
	})

	t.Run("ids stay unique", func(t *testing.T) {
		t.Parallel()

		repo := mustNew(t)

		for range 100 {
			id := gofakeit.Number(1, 20)

			switch gofakeit.Number(0, 2) {
			case 0:
				_ = repo.Add(ctx, testdata.TestUser(id))
			case 1:
				_, _ = repo.Update(ctx, id, testdata.TestUser(id))
			default:
				repo.Remove(ctx, id)
			}

			seen := map[int]struct{}{}
			for _, u := range repo.All(ctx) {
				_, dup := seen[u.ID]
				assert.False(t, dup, "id %d is not unique", u.ID)

				seen[u.ID] = struct{}{}
			}
		}
	})

	t.Run("end-to-end", func(t *testing.T) {
		t.Parallel()

		repo := mustNew(t)

		assert.NoError(t, repo.Add(ctx, testdata.User{ID: 1, Name: "John"}))
		assert.NoError(t, repo.Add(ctx, testdata.User{ID: 2, Name: "Midun"}))

		u, found := repo.Find(ctx, func(u testdata.User) bool { return u.Name == "John" })
		assert.True(t, found)
		assert.Equal(t, 1, u.ID)

		updated, err := repo.Update(ctx, 1, testdata.User{ID: 1, Name: "John Doe", Email: "john@example.com"})
		assert.NoError(t, err)
		assert.True(t, updated)

		assert.True(t, repo.Remove(ctx, 1))
		assert.Equal(t, []testdata.User{{ID: 2, Name: "Midun"}}, repo.All(ctx))
		assert.Equal(t, 1, repo.Count(ctx))

		err = repo.Add(ctx, testdata.User{ID: 2, Name: "Another Midun"})
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})
}
