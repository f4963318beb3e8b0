package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextError(t *testing.T) {
	err := &ContextError{Code: CodeNoBizAccess, Message: "sin negocio", Diagnostics: map[string]any{"roles_found": 0}}
	wrapped := fmt.Errorf("resolver: %w", err)

	code, ok := ContextCode(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeNoBizAccess, code)
	assert.True(t, IsContextCode(wrapped, CodeNoBizAccess))
	assert.False(t, IsContextCode(wrapped, CodeNotAuthenticated))
	assert.Equal(t, "NO_BIZ_ACCESS: sin negocio", err.Error())

	_, ok = ContextCode(ErrNotFound)
	assert.False(t, ok)
	assert.Equal(t, CodeNotAuthenticated, NewContextError(CodeNotAuthenticated, "").Error())
}
