// Package internal contains the records the datarepo cli works with.
package internal

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// User is the record managed by the cli.
type User struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email,omitempty"`
}

func (u User) String() string {
	if u.Email == "" {
		return fmt.Sprintf("{id: %d, name: %q}", u.ID, u.Name)
	}

	return fmt.Sprintf("{id: %d, name: %q, email: %q}", u.ID, u.Name, u.Email)
}

var ErrInvalidSeed = errors.New("invalid seed")

type seedFile struct {
	Users []User `yaml:"users"`
}

// LoadUsers reads the users of a seed file in the order they are listed.
// Unknown keys are rejected, so typos do not silently create empty records.
//
// Example:
//
//	users:
//	  - id: 1
//	    name: John
func LoadUsers(r io.Reader) ([]User, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed seedFile

	err := dec.Decode(&seed)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err) //nolint:errorlint // do not expose yaml errors
	}

	if seed.Users == nil {
		return []User{}, nil
	}

	return seed.Users, nil
}
