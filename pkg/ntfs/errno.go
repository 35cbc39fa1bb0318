package ntfs

import (
	"errors"
	"fmt"
	"syscall"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LRN/libntlink/pkg/util"
)

// toErrno translates an internal status error (as built by pkg/path with
// google.golang.org/grpc/codes) into one of the POSIX-style sentinel
// errors named by the design's public contract (§6.1): EEXIST, ENOENT,
// EACCES, EPERM, EIO, ENOMEM, EINVAL, ENOTDIR, EISDIR. Every exported
// pkg/ntfs function that can return a pkg/path error routes it through
// here before returning, so that callers can rely on errors.Is(err,
// syscall.ENOENT) and friends against anything this package returns.
//
// A nil input returns nil. An input that already wraps a syscall.Errno
// (built by errEexist and friends below) is returned unchanged - it is
// already in the public contract's shape, and re-wrapping it would lose
// its message. Anything else that isn't a status error at all is
// reported as EIO, since by the time it reaches this boundary it is an
// unexpected, presumably transient, failure.
func toErrno(err error) error {
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return err
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %s", syscall.EIO, err.Error())
	}
	switch st.Code() {
	case codes.OK:
		return nil
	case codes.AlreadyExists:
		return fmt.Errorf("%s: %w", st.Message(), syscall.EEXIST)
	case codes.NotFound:
		return fmt.Errorf("%s: %w", st.Message(), syscall.ENOENT)
	case codes.PermissionDenied:
		return fmt.Errorf("%s: %w", st.Message(), syscall.EACCES)
	case codes.Unauthenticated:
		return fmt.Errorf("%s: %w", st.Message(), syscall.EPERM)
	case codes.ResourceExhausted:
		return fmt.Errorf("%s: %w", st.Message(), syscall.ENOMEM)
	case codes.InvalidArgument:
		return fmt.Errorf("%s: %w", st.Message(), syscall.EINVAL)
	case codes.FailedPrecondition:
		return fmt.Errorf("%s: %w", st.Message(), syscall.ENOTDIR)
	case codes.OutOfRange:
		return fmt.Errorf("%s: %w", st.Message(), syscall.EISDIR)
	case codes.Unimplemented:
		return fmt.Errorf("%s: %w", st.Message(), syscall.EINVAL)
	default:
		return fmt.Errorf("%s: %w", st.Message(), syscall.EIO)
	}
}

// wrapOSError attaches msg as context to a lower-level OS error using
// the same StatusWrap idiom every internal caller in this module uses
// to add context to an error it's propagating, then immediately
// translates the result to the POSIX sentinel errno family (§6.1) via
// toErrno. This keeps the internal status-error layer and the public
// syscall.Errno boundary consistent even for errors that originate deep
// inside a Windows API call, where the caller wants both the OS
// failure's detail and a stable sentinel a caller can match on.
func wrapOSError(err error, code codes.Code, msg string) error {
	return toErrno(util.StatusWrapWithCode(err, code, msg))
}

// errEexist, errEnoent, etc. build a POSIX sentinel error directly,
// wrapping the relevant syscall.Errno with %w so that errors.Is(err,
// syscall.ENOENT) succeeds against the result while msg is preserved
// for logging. Every exported pkg/ntfs function originates its errors
// this way (or via toErrno, for errors that started as a pkg/path
// status error), so nothing crossing the package boundary is a bare
// grpc status error.
func errEexist(msg string) error  { return fmt.Errorf("%s: %w", msg, syscall.EEXIST) }
func errEnoent(msg string) error  { return fmt.Errorf("%s: %w", msg, syscall.ENOENT) }
func errEacces(msg string) error  { return fmt.Errorf("%s: %w", msg, syscall.EACCES) }
func errEperm(msg string) error   { return fmt.Errorf("%s: %w", msg, syscall.EPERM) }
func errEio(msg string) error     { return fmt.Errorf("%s: %w", msg, syscall.EIO) }
func errEnomem(msg string) error  { return fmt.Errorf("%s: %w", msg, syscall.ENOMEM) }
func errEinval(msg string) error  { return fmt.Errorf("%s: %w", msg, syscall.EINVAL) }
func errEnotdir(msg string) error { return fmt.Errorf("%s: %w", msg, syscall.ENOTDIR) }
func errEisdir(msg string) error  { return fmt.Errorf("%s: %w", msg, syscall.EISDIR) }
