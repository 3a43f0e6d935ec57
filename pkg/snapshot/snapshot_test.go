package snapshot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/pebble/pkg/pebble"
)

func newManager(t *testing.T) *pebble.Manager {
	t.Helper()
	b := pebble.NewRoot(pebble.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(b.Dispose)
	return b.Manager()
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	count := pebble.NewPebble(0, pebble.WithName("count"))
	name := pebble.NewPebble("anon", pebble.WithName("name"))
	title := pebble.NewComputed(func(ctx pebble.Context, _ string) string {
		return pebble.Get(ctx, name)
	}, pebble.WithName("title"))

	store := NewMemoryStore()

	src := newManager(t)
	pebble.Set(src, count, 12)
	pebble.Set(src, name, "ada")
	require.NoError(t, Save(ctx, store, "session", src))

	dst := newManager(t)
	require.NoError(t, Load(ctx, store, "session", dst))

	assert.Equal(t, 12, pebble.Get(dst, count))
	assert.Equal(t, "ada", pebble.Get(dst, title))
}

func TestLoad_Missing(t *testing.T) {
	err := Load(context.Background(), NewMemoryStore(), "nope", newManager(t))
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"valid", `{"version":1,"cells":{"count":3}}`, false},
		{"bad json", `{`, true},
		{"wrong version", `{"version":2,"cells":{}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "3", string(doc.Cells["count"]))
		})
	}
}

func TestEncode_Document(t *testing.T) {
	count := pebble.NewPebble(5, pebble.WithName("count"))
	m := newManager(t)
	pebble.Get(m, count)

	data, err := Encode(m)
	require.NoError(t, err)

	doc, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, m.ID(), doc.Manager)
	assert.False(t, doc.SavedAt.IsZero())
	assert.Equal(t, "5", string(doc.Cells["count"]))
}
