package internal_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/datarepo/datarepo/internal"
)

func TestLoadUsers(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in    string
		users []internal.User
		err   error
	}{
		"empty": {
			"",
			[]internal.User{},
			nil,
		},
		"no users": {
			"users: []",
			[]internal.User{},
			nil,
		},
		"keeps order": {
			`
users:
  - id: 2
    name: Midun
  - id: 1
    name: John
    email: john@example.com
`,
			[]internal.User{{ID: 2, Name: "Midun"}, {ID: 1, Name: "John", Email: "john@example.com"}},
			nil,
		},
		"duplicates are loaded": {
			`
users:
  - id: 1
    name: John
  - id: 1
    name: Midun
`,
			[]internal.User{{ID: 1, Name: "John"}, {ID: 1, Name: "Midun"}},
			nil,
		},
		"unknown field": {
			`
users:
  - id: 1
    nmae: John
`,
			nil,
			internal.ErrInvalidSeed,
		},
		"invalid id": {
			`
users:
  - id: one
`,
			nil,
			internal.ErrInvalidSeed,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			users, err := internal.LoadUsers(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.users, users)
		})
	}
}

func TestUser_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{id: 2, name: "Midun"}`, internal.User{ID: 2, Name: "Midun"}.String())
	assert.Equal(t, `{id: 1, name: "John Doe", email: "john@example.com"}`,
		internal.User{ID: 1, Name: "John Doe", Email: "john@example.com"}.String())
}
