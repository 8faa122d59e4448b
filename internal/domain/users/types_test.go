package users

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalUID(t *testing.T) {
	assert.Equal(t, LocalUID("demo"), LocalUID("demo"))
	assert.NotEqual(t, LocalUID("demo"), LocalUID("demo2"))
	assert.Len(t, LocalUID("demo"), 36)
}

func TestPassword(t *testing.T) {
	var u User
	assert.ErrorIs(t, u.Password.Compare("anything"), ErrNoPassword)

	require.NoError(t, u.Password.Set("demo1234"))
	assert.NoError(t, u.Password.Compare("demo1234"))
	assert.Error(t, u.Password.Compare("demo12345"))
	assert.NotEmpty(t, u.Password.Hash())
}

func TestUserJSONOmitsPassword(t *testing.T) {
	u := User{UID: "u1", Username: "demo", DisplayName: "Demo"}
	require.NoError(t, u.Password.Set("demo1234"))

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "demo1234")
	assert.NotContains(t, string(b), "password")
	assert.Contains(t, string(b), `"id":"u1"`)
}
