package gpu

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoAdapterFound           = errors.New("no compatible GPU adapter found")
	ErrDeviceRequestFailed      = errors.New("GPU device request failed")
	ErrUnsupportedSurfaceFormat = errors.New("no supported surface format")
	ErrImageDecode              = errors.New("image decode failed")
	ErrShaderCompile            = errors.New("shader compile failed")
)

// SurfaceErrorKind enumerates the ways acquiring a surface texture can fail.
type SurfaceErrorKind int

const (
	// SurfaceLost: the surface must be reconfigured before the next frame.
	SurfaceLost SurfaceErrorKind = iota + 1
	// SurfaceOutOfMemory is fatal.
	SurfaceOutOfMemory
	// SurfaceOutdated and SurfaceTimeout resolve on their own; skip the frame.
	SurfaceOutdated
	SurfaceTimeout
)

func (k SurfaceErrorKind) String() string {
	switch k {
	case SurfaceLost:
		return "lost"
	case SurfaceOutOfMemory:
		return "out of memory"
	case SurfaceOutdated:
		return "outdated"
	case SurfaceTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("SurfaceErrorKind(%d)", int(k))
	}
}

type SurfaceError struct {
	Kind SurfaceErrorKind
	Err  error
}

func (e *SurfaceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("surface %s: %v", e.Kind, e.Err)
	}
	return "surface " + e.Kind.String()
}

func (e *SurfaceError) Unwrap() error {
	return e.Err
}

// SurfaceErrorKindOf reports the kind of a *SurfaceError anywhere in err's chain.
func SurfaceErrorKindOf(err error) (SurfaceErrorKind, bool) {
	var se *SurfaceError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// classifySurfaceError turns a driver error from acquiring the current
// surface texture into a *SurfaceError. The binding only reports the status
// in the message ("surface status lost", "surface status out-of-memory"),
// so the match is textual. A lost device is handled like a lost surface,
// and anything unrecognised is treated as outdated and the frame is skipped.
func classifySurfaceError(err error) *SurfaceError {
	var se *SurfaceError
	if errors.As(err, &se) {
		return se
	}
	msg := strings.ToLower(err.Error())
	msg = strings.NewReplacer("_", "", " ", "", "-", "").Replace(msg)
	kind := SurfaceOutdated
	switch {
	case strings.Contains(msg, "outofmemory"):
		kind = SurfaceOutOfMemory
	case strings.Contains(msg, "lost"):
		kind = SurfaceLost
	case strings.Contains(msg, "timeout"):
		kind = SurfaceTimeout
	case strings.Contains(msg, "outdated"):
		kind = SurfaceOutdated
	}
	return &SurfaceError{Kind: kind, Err: err}
}
