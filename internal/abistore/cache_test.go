package abistore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanged(t *testing.T) {
	base := Cache{"A": []byte("1"), "B": []byte("2")}

	assert.False(t, Changed(base, Cache{"A": []byte("1"), "B": []byte("2")}))
	assert.True(t, Changed(base, Cache{"A": []byte("1")}))
	assert.True(t, Changed(base, Cache{"A": []byte("1"), "B": []byte("3")}))
	assert.True(t, Changed(base, Cache{"A": []byte("1"), "C": []byte("2")}))
	assert.True(t, Changed(Cache{}, base))
	assert.False(t, Changed(Cache{}, nil))
}

func TestLoadAndCacheStore(t *testing.T) {
	cache, err := Load(NewBuiltinStore())
	require.NoError(t, err)
	assert.True(t, cache.NameSet().Has(ERC20))

	data, err := cache.Read(ERC20)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = cache.Read("Nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPollerRefresh(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Token.sol", "Token.json"), `[]`)

	var notified []Cache
	p := NewPoller(NewFolderStore(root), 0, nil, func(c Cache) { notified = append(notified, c) })

	swapped, err := p.Refresh()
	require.NoError(t, err)
	assert.True(t, swapped)
	assert.Len(t, p.Current(), 1)

	swapped, err = p.Refresh()
	require.NoError(t, err)
	assert.False(t, swapped)

	writeFile(t, filepath.Join(root, "Token.sol", "Token.json"), `{"abi":[]}`)
	swapped, err = p.Refresh()
	require.NoError(t, err)
	assert.True(t, swapped)
	assert.Equal(t, `{"abi":[]}`, string(p.Current()["Token"]))
	assert.Len(t, notified, 2)
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Vault.json"), `[]`)

	p := NewPoller(NewFolderStore(root), 10*time.Millisecond, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return len(p.Current()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestPollerRunWithoutInterval(t *testing.T) {
	p := NewPoller(NewBuiltinStore(), 0, nil, nil)
	require.NoError(t, p.Run(context.Background()))
	assert.Len(t, p.Current(), 1)
}
