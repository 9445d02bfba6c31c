package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContent_ValueAndScan(t *testing.T) {
	v, err := Content{Text: "Dear [Name],\n"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"Dear [Name],\n"}`, string(v.([]byte)))

	var c Content
	require.NoError(t, c.Scan(v))
	assert.Equal(t, "Dear [Name],\n", c.Text)

	require.NoError(t, c.Scan(`{"text":"from string"}`))
	assert.Equal(t, "from string", c.Text)

	require.NoError(t, c.Scan(nil))
	assert.Equal(t, Content{}, c)

	assert.Error(t, c.Scan([]byte(`[1,2]`)))
	assert.Error(t, c.Scan(42))
}
