package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidMetadata marks a required track field (duration, compression
	// mode) that is missing or unparsable. Fatal for the file.
	ErrInvalidMetadata = errors.New("invalid metadata")
	// ErrInvalidTrackMetadata marks a compression mode that is present but not
	// recognized. Fatal for that track's export only.
	ErrInvalidTrackMetadata = errors.New("invalid track metadata")
	// ErrProbeUnavailable marks a metadata probe binary missing from PATH.
	ErrProbeUnavailable = errors.New("probe unavailable")
	// ErrProbeFailed marks a probe invocation that exited non-zero or produced
	// unparsable output.
	ErrProbeFailed = errors.New("probe failed")
	// ErrTranscoderUnavailable marks a transcoder binary missing from PATH.
	ErrTranscoderUnavailable = errors.New("transcoder unavailable")
	// ErrTranscodeFailed marks a transcoder invocation that exited non-zero.
	ErrTranscodeFailed = errors.New("transcode failed")
	// ErrNoMediaFound marks an input path that resolves to no container files.
	ErrNoMediaFound = errors.New("no media found")
	// ErrOutputDirectory marks a custom output directory that cannot be created.
	ErrOutputDirectory = errors.New("output directory error")
	// ErrRunLocked marks a run refused because another run holds the lock.
	ErrRunLocked     = errors.New("run locked")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTranscodeFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err must stop the whole run rather than a single
// file or track.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrProbeUnavailable),
		errors.Is(err, ErrTranscoderUnavailable),
		errors.Is(err, ErrNoMediaFound),
		errors.Is(err, ErrOutputDirectory),
		errors.Is(err, ErrRunLocked),
		errors.Is(err, ErrConfiguration):
		return true
	default:
		return false
	}
}

// IsFileFatal reports whether err aborts the remaining tracks of the current
// file. Run-fatal errors are file-fatal too.
func IsFileFatal(err error) bool {
	if IsFatal(err) {
		return true
	}
	return errors.Is(err, ErrInvalidMetadata)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
