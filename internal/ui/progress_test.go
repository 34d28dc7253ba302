package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinner(t *testing.T) {
	t.Run("disabled spinner writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		s := NewSpinner(&buf, "extracting", false)

		assert.False(t, s.IsEnabled())
		s.Step("a.vsix")
		assert.NoError(t, s.Finish())
		assert.Empty(t, buf.String())
	})

	t.Run("nil spinner is safe", func(t *testing.T) {
		var s *Spinner
		assert.False(t, s.IsEnabled())
		s.Step("a.vsix")
		assert.NoError(t, s.Finish())
	})

	t.Run("enabled spinner renders description", func(t *testing.T) {
		var buf bytes.Buffer
		s := NewSpinner(&buf, "extracting", true)

		assert.True(t, s.IsEnabled())
		s.Step("pkg.vsix")
		assert.NoError(t, s.Finish())
		assert.NotEmpty(t, buf.String())
	})
}
