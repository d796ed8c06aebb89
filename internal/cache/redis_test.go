package cache

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	t.Run("plain address", func(t *testing.T) {
		InitRedis(mr.Addr())
		require.NotNil(t, GetClient())
	})

	t.Run("redis URL", func(t *testing.T) {
		InitRedis("redis://" + mr.Addr())
		require.NotNil(t, GetClient())
	})

	t.Run("invalid URL degrades to no cache", func(t *testing.T) {
		InitRedis("http://not-redis")
		assert.Nil(t, GetClient())
	})

	t.Run("unreachable server degrades to no cache", func(t *testing.T) {
		InitRedis("127.0.0.1:1")
		assert.Nil(t, GetClient())
	})
}
