package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_ReadWriteList(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "user_input/b.txt", []byte("b"), "text/plain"))
	require.NoError(t, s.Write(ctx, "user_input/a.txt", []byte("a"), "text/plain"))
	require.NoError(t, s.Write(ctx, "user_input/a.txt", []byte("a2"), "text/plain"))

	data, err := s.Read(ctx, "user_input/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a2", string(data))

	names, err := s.List(ctx, "user_input")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)

	names, err = s.List(ctx, "final_report/")
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = s.Read(ctx, "user_input/missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocal(filepath.Join(root, "base"))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Write(ctx, "user_input/../../escape.txt", []byte("x"), ""), ErrInvalidKey)
	assert.ErrorIs(t, s.Write(ctx, "", []byte("x"), ""), ErrEmptyKey)
	_, err = s.Read(ctx, "/etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, statErr := os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestOpener_Open(t *testing.T) {
	ctx := context.Background()
	o := &Opener{}
	dir := t.TempDir()

	s, err := o.Open(ctx, dir)
	require.NoError(t, err)
	assert.IsType(t, &Local{}, s)

	s, err = o.Open(ctx, "file://"+filepath.ToSlash(dir))
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(dir), s.URI())

	_, err = o.Open(ctx, "gs://bucket/prefix")
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	_, err = o.Open(ctx, "s3://bucket")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestOpener_ProvisionLocal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	o := &Opener{ProvisionScheme: SchemeFile, LocalRoot: root}

	s, err := o.Provision(ctx, "acme-25-01-02-abc123")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, "acme-25-01-02-abc123"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	require.NoError(t, s.Write(ctx, "user_input/x.txt", []byte("x"), "text/plain"))
}

func TestLocal_ListKeepsDotfiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocal(root)
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "user_input/.env", []byte("KEY=1"), "text/plain"))
	require.NoError(t, s.Write(ctx, "user_input/deck.pdf", []byte("%PDF"), "application/pdf"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "user_input", tempPrefix+"123"), []byte("partial"), 0o644))

	names, err := s.List(ctx, "user_input")
	require.NoError(t, err)
	assert.Equal(t, []string{".env", "deck.pdf"}, names)
}

func TestChildName(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		object string
		want   string
		ok     bool
	}{
		{"plain object", "user_input/", "user_input/deck.pdf", "deck.pdf", true},
		{"under base prefix", "acme/user_input/", "acme/user_input/a.txt", "a.txt", true},
		{"dotfile", "user_input/", "user_input/.env", ".env", true},
		{"folder placeholder", "user_input/", "user_input/", "", false},
		{"synthetic prefix entry", "user_input/", "", "", false},
		{"nested folder", "user_input/", "user_input/old/a.txt", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := childName(tt.prefix, tt.object)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
