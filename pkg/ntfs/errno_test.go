package ntfs

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrnoConstructorsWrapExpectedErrno(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want syscall.Errno
	}{
		{errEexist("x"), syscall.EEXIST},
		{errEnoent("x"), syscall.ENOENT},
		{errEacces("x"), syscall.EACCES},
		{errEperm("x"), syscall.EPERM},
		{errEio("x"), syscall.EIO},
		{errEnomem("x"), syscall.ENOMEM},
		{errEinval("x"), syscall.EINVAL},
		{errEnotdir("x"), syscall.ENOTDIR},
		{errEisdir("x"), syscall.EISDIR},
	}
	for _, tc := range cases {
		require.ErrorIs(t, tc.err, tc.want)
	}
}

func TestToErrnoTranslatesStatusCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code codes.Code
		want syscall.Errno
	}{
		{codes.AlreadyExists, syscall.EEXIST},
		{codes.NotFound, syscall.ENOENT},
		{codes.PermissionDenied, syscall.EACCES},
		{codes.InvalidArgument, syscall.EINVAL},
		{codes.FailedPrecondition, syscall.ENOTDIR},
		{codes.OutOfRange, syscall.EISDIR},
		{codes.ResourceExhausted, syscall.ENOMEM},
	}
	for _, tc := range cases {
		err := toErrno(status.Error(tc.code, "boom"))
		require.ErrorIs(t, err, tc.want)
	}
}

func TestToErrnoNilIsNil(t *testing.T) {
	t.Parallel()
	require.NoError(t, toErrno(nil))
}

func TestToErrnoPassesThroughExistingErrno(t *testing.T) {
	t.Parallel()
	wrapped := errEnoent("already translated")
	require.Same(t, wrapped, toErrno(wrapped))
}

func TestToErrnoFallsBackToEIOForUnknownErrors(t *testing.T) {
	t.Parallel()
	err := toErrno(errors.New("something else"))
	require.ErrorIs(t, err, syscall.EIO)
}
