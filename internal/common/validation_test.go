package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlank(t *testing.T) {
	assert.False(t, Blank("a", "b"))
	assert.True(t, Blank("a", ""))
	assert.True(t, Blank("   "))
	assert.False(t, Blank())
}

func TestValidateEmail(t *testing.T) {
	for _, ok := range []string{"alice@example.com", "Alice.Smith@Example.COM", " bob+tag@mail.io "} {
		assert.NoError(t, ValidateEmail(ok), ok)
	}
	for _, bad := range []string{"", "alice", "alice@", "@example.com", "a@b"} {
		assert.Error(t, ValidateEmail(bad), bad)
	}
}
