package repository_test

import (
	"context"

	"github.com/go-arrower/datarepo/repository"
	"github.com/go-arrower/datarepo/repository/testdata"
)

var ctx = context.Background()

func newUserRepository(users []testdata.User) (repository.Repository[testdata.User, int], error) {
	repo, err := repository.NewMemoryRepository[testdata.User, int](users)
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func mustUserRepository(users ...testdata.User) *repository.MemoryRepository[testdata.User, int] {
	repo, err := repository.NewMemoryRepository[testdata.User, int](users)
	if err != nil {
		panic(err)
	}

	return repo
}
