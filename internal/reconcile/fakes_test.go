package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"mkvaudur/internal/media/ffprobe"
	"mkvaudur/internal/media/mediainfo"
	"mkvaudur/internal/services"
)

type fakeMetadata struct {
	media map[string]mediainfo.Media
	errs  map[string]error
	calls []string
}

func (f *fakeMetadata) Inspect(_ context.Context, path string) (mediainfo.Media, error) {
	f.calls = append(f.calls, path)
	if err, ok := f.errs[path]; ok {
		return mediainfo.Media{}, err
	}
	media, ok := f.media[path]
	if !ok {
		return mediainfo.Media{}, services.Wrap(services.ErrProbeFailed, "fake", "inspect", path, nil)
	}
	return media, nil
}

type fakeStreams struct {
	format     ffprobe.AudioFormat
	formatErr  error
	result     ffprobe.Result
	inspectErr error
	indices    []int
	inspected  []string
}

func (f *fakeStreams) AudioFormat(_ context.Context, _ string, audioIndex int) (ffprobe.AudioFormat, error) {
	f.indices = append(f.indices, audioIndex)
	return f.format, f.formatErr
}

func (f *fakeStreams) Inspect(_ context.Context, path string) (ffprobe.Result, error) {
	f.inspected = append(f.inspected, path)
	return f.result, f.inspectErr
}

type call struct {
	op         string
	source     string
	audioIndex int
	duration   float64
	codecArgs  []string
	dest       string
	sampleRate int
	layout     string
	listPath   string
	parts      []string
	dirExisted bool
}

type recordingTranscoder struct {
	calls []call
	fail  map[string]error
}

func (r *recordingTranscoder) add(c call) error {
	c.dirExisted = dirExists(filepath.Dir(c.dest))
	r.calls = append(r.calls, c)
	if err, ok := r.fail[c.op]; ok {
		return err
	}
	return nil
}

func (r *recordingTranscoder) ExportStream(_ context.Context, source string, audioIndex int, codecArgs []string, dest string) error {
	return r.add(call{op: "export", source: source, audioIndex: audioIndex, codecArgs: codecArgs, dest: dest})
}

func (r *recordingTranscoder) Trim(_ context.Context, source string, audioIndex int, duration float64, codecArgs []string, dest string) error {
	return r.add(call{op: "trim", source: source, audioIndex: audioIndex, duration: duration, codecArgs: codecArgs, dest: dest})
}

func (r *recordingTranscoder) Pad(_ context.Context, source string, audioIndex int, padDuration float64, codecArgs []string, dest string) error {
	return r.add(call{op: "pad", source: source, audioIndex: audioIndex, duration: padDuration, codecArgs: codecArgs, dest: dest})
}

func (r *recordingTranscoder) GenerateSilence(_ context.Context, sampleRate int, channelLayout string, duration float64, dest string) error {
	return r.add(call{op: "silence", sampleRate: sampleRate, layout: channelLayout, duration: duration, dest: dest})
}

func (r *recordingTranscoder) Concat(_ context.Context, listPath string, parts []string, dest string) error {
	return r.add(call{op: "concat", listPath: listPath, parts: parts, dest: dest})
}

func (r *recordingTranscoder) ops() []string {
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.op)
	}
	return out
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func audioTrack(typeOrder int, duration float64, language string, mode mediainfo.CompressionMode) mediainfo.Track {
	return mediainfo.Track{
		Kind:        mediainfo.KindAudio,
		ID:          typeOrder + 1,
		TypeOrder:   typeOrder,
		Duration:    duration,
		Language:    language,
		Format:      "AC-3",
		Compression: mode,
	}
}

func videoTrack(duration float64) mediainfo.Track {
	return mediainfo.Track{Kind: mediainfo.KindVideo, ID: 1, TypeOrder: 1, Duration: duration}
}

func newMedia(ref string, tracks ...mediainfo.Track) mediainfo.Media {
	return mediainfo.Media{Ref: ref, Tracks: tracks}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func requireMarker(t *testing.T, err, marker error) {
	t.Helper()
	if !errors.Is(err, marker) {
		t.Fatalf("expected %v, got %v", marker, err)
	}
}

var errTranscode = fmt.Errorf("%w: ffmpeg exited 1", services.ErrTranscodeFailed)
