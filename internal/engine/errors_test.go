package engine

import (
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"self", &Error{Kind: KindSelfSubdirectory, Op: "copy", Path: "/a/b", Err: ErrSelfSubdirectory}, "ESELF"},
		{"enoent", newError("stat", "/x", &os.PathError{Op: "lstat", Path: "/x", Err: syscall.ENOENT}), "ENOENT"},
		{"einval", newError("readlink", "/x", syscall.EINVAL), "EINVAL"},
		{"eperm", newError("chmod", "/x", syscall.EPERM), "EPERM"},
		{"plain", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := newError("create", "/dst/file", syscall.EACCES)
	assert.Equal(t, "create /dst/file: permission denied", err.Error())

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindIO, e.Kind)
	assert.Equal(t, "/dst/file", e.Path)
	assert.ErrorIs(t, err, syscall.EACCES)
}

func TestCheckPaths(t *testing.T) {
	tests := []struct {
		src, dst string
		same     bool
		self     bool
	}{
		{"/a/b", "/a/b", true, false},
		{"/a/b", "/a/b/c", false, true},
		{"/a/b", "/a/bc", false, false},
		{"/a/b", "/a", false, false},
		{"/", "/x", false, true},
	}
	for _, tt := range tests {
		same, err := checkPaths(tt.src, tt.dst)
		assert.Equal(t, tt.same, same, "%s -> %s", tt.src, tt.dst)
		if tt.self {
			assert.ErrorIs(t, err, ErrSelfSubdirectory, "%s -> %s", tt.src, tt.dst)
		} else {
			assert.NoError(t, err, "%s -> %s", tt.src, tt.dst)
		}
	}
}

func TestErrorList(t *testing.T) {
	var l ErrorList
	assert.Equal(t, "no errors", l.Error())

	first := errors.New("first")
	l.Record(first)
	assert.Equal(t, "first", l.Error())

	l.Record(errors.New("second"))
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, "2 errors: first; second", l.Error())
	assert.ErrorIs(t, &l, first)
}

func TestErrorWriter(t *testing.T) {
	var out strings.Builder
	w := NewErrorWriter(&out)
	w.Record(newError("open", "/src/a", syscall.ENOENT))
	w.Record(newError("open", "/src/b", syscall.ENOENT))

	assert.Equal(t, 2, w.Len())
	assert.Equal(t, "2 errors written to error log", w.Error())
	assert.Contains(t, out.String(), "open /src/a: no such file or directory")
	assert.Contains(t, out.String(), "open /src/b: no such file or directory")
	assert.NoError(t, w.WriteErr())
}
