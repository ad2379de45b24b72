package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()

	assert.True(t, IsUUID(a))
	assert.NotEqual(t, a, b)
	assert.False(t, IsUUID("not-a-uuid"))
}

func TestNDJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)

	require.NoError(t, w.Write(map[string]string{"street": "Main St & 1st"}))
	require.NoError(t, w.Write([]int{1, 2}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{`{"street":"Main St & 1st"}`, `[1,2]`}, lines)
}
