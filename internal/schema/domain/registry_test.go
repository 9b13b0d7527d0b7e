package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Validate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r := &Registry{Entries: []Entry{{Name: "workspaces"}, {Name: "users"}}}
		assert.NoError(t, r.Validate())
		assert.Equal(t, []string{"workspaces", "users"}, r.Names())
	})

	t.Run("Success_Empty", func(t *testing.T) {
		assert.NoError(t, (&Registry{}).Validate())
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		r := &Registry{Entries: []Entry{{Name: "users"}, {Name: "workspaces"}, {Name: "users"}}}
		assert.ErrorIs(t, r.Validate(), ErrDuplicateCollection)
	})

	t.Run("Error_InvalidName", func(t *testing.T) {
		for _, name := range []string{"", "a$b", "system.users", "a\x00"} {
			r := &Registry{Entries: []Entry{{Name: name}}}
			assert.ErrorIs(t, r.Validate(), ErrInvalidRegistry, name)
		}
	})
}
