package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Only shapes that never reach DNS; resolving real domains is not something
// a unit test should depend on.
func TestIsEmailDomainValidWithoutLookups(t *testing.T) {
	assert.True(t, IsEmailDomainValid(""), "email is optional")

	assert.False(t, IsEmailDomainValid("no-at-sign"))
	assert.False(t, IsEmailDomainValid("dangling@"))
}
