package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"mkvaudur/internal/services"
)

func TestNewTranscoderOptions(t *testing.T) {
	if got := NewTranscoder().Binary(); got != "ffmpeg" {
		t.Fatalf("expected default binary ffmpeg, got %q", got)
	}
	if got := NewTranscoder(WithBinary("/opt/ffmpeg")).Binary(); got != "/opt/ffmpeg" {
		t.Fatalf("expected binary override, got %q", got)
	}
	if got := NewTranscoder(WithBinary("  ")).Binary(); got != "ffmpeg" {
		t.Fatalf("expected blank override to be ignored, got %q", got)
	}
}

func TestCommandArguments(t *testing.T) {
	tests := []struct {
		name string
		run  func(*Transcoder) error
		want string
	}{
		{
			name: "export lossy",
			run: func(tr *Transcoder) error {
				return tr.ExportStream(context.Background(), "/in/movie.mkv", 1, []string{"-c:a", "copy"}, "/out/movie_Audio02.DE.ac3")
			},
			want: "ffmpeg -y -i /in/movie.mkv -map 0:a:1 -map_chapters -1 -c:a copy /out/movie_Audio02.DE.ac3",
		},
		{
			name: "trim lossless",
			run: func(tr *Transcoder) error {
				return tr.Trim(context.Background(), "/in/movie.mkv", 0, 5400, nil, "/out/movie_Audio01.EN.flac")
			},
			want: "ffmpeg -y -t 5400 -i /in/movie.mkv -map 0:a:0 -map_chapters -1 /out/movie_Audio01.EN.flac",
		},
		{
			name: "pad",
			run: func(tr *Transcoder) error {
				return tr.Pad(context.Background(), "/in/movie.mkv", 2, 0.75, nil, "/out/movie_Audio03.UND.wav")
			},
			want: "ffmpeg -y -i /in/movie.mkv -map 0:a:2 -map_chapters -1 -af apad=pad_dur=0.75 /out/movie_Audio03.UND.wav",
		},
		{
			name: "silence",
			run: func(tr *Transcoder) error {
				return tr.GenerateSilence(context.Background(), 44100, "5.1(side)", 1.5, "/tmp/x/movie_Audio01.EN.silence.ac3")
			},
			want: "ffmpeg -f lavfi -i anullsrc=sample_rate=44100:channel_layout=5.1(side) -t 1.5 /tmp/x/movie_Audio01.EN.silence.ac3",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured []string
			setHelperCommand(t, "success", &captured)
			if err := tc.run(NewTranscoder()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := strings.Join(captured, " "); got != tc.want {
				t.Fatalf("unexpected command:\n got %s\nwant %s", got, tc.want)
			}
		})
	}
}

func TestGenerateSilenceValidatesFormat(t *testing.T) {
	tr := NewTranscoder()
	if err := tr.GenerateSilence(context.Background(), 0, "stereo", 1, "/tmp/out.ac3"); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if err := tr.GenerateSilence(context.Background(), 48000, " ", 1, "/tmp/out.ac3"); err == nil {
		t.Fatal("expected error for empty layout")
	}
}

func TestConcatWritesCanonicalList(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "movie_Audio01.EN.ac3")
	second := filepath.Join(dir, "it's.silence.ac3")
	for _, path := range []string{first, second} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	listPath := filepath.Join(dir, "concat.txt")

	var captured []string
	setHelperCommand(t, "success", &captured)
	if err := NewTranscoder().Concat(context.Background(), listPath, []string{first, second}, "/out/final.ac3"); err != nil {
		t.Fatalf("Concat returned error: %v", err)
	}

	want := "ffmpeg -y -f concat -safe 0 -i " + listPath + " -c copy /out/final.ac3"
	if got := strings.Join(captured, " "); got != want {
		t.Fatalf("unexpected command:\n got %s\nwant %s", got, want)
	}

	data, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	resolvedFirst, _ := filepath.EvalSymlinks(first)
	resolvedSecond, _ := filepath.EvalSymlinks(second)
	escaped := strings.ReplaceAll(resolvedSecond, "'", `'\''`)
	wantList := fmt.Sprintf("file '%s'\nfile '%s'\n", resolvedFirst, escaped)
	if string(data) != wantList {
		t.Fatalf("unexpected list contents:\n%s", data)
	}
}

func TestConcatRequiresParts(t *testing.T) {
	if err := NewTranscoder().Concat(context.Background(), filepath.Join(t.TempDir(), "l.txt"), nil, "/out/x"); err == nil {
		t.Fatal("expected error for empty part list")
	}
}

func TestConcatMissingPartFailsBeforeRunning(t *testing.T) {
	called := false
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		called = true
		return exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
	}
	t.Cleanup(func() { commandContext = original })

	dir := t.TempDir()
	err := NewTranscoder().Concat(context.Background(), filepath.Join(dir, "l.txt"), []string{filepath.Join(dir, "absent.ac3")}, "/out/x")
	if err == nil {
		t.Fatal("expected error for missing part")
	}
	if called {
		t.Fatal("ffmpeg should not run when the list cannot be written")
	}
}

func TestFailureIsTranscodeFailed(t *testing.T) {
	setHelperCommand(t, "failure", nil)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := NewTranscoder(WithLogger(logger)).ExportStream(context.Background(), "/in/a.mkv", 0, nil, "/out/a.flac")
	if !errors.Is(err, services.ErrTranscodeFailed) {
		t.Fatalf("expected ErrTranscodeFailed, got %v", err)
	}
	if services.IsFatal(err) {
		t.Fatal("transcode failures should not be run fatal")
	}
	out := buf.String()
	if !strings.Contains(out, "executing command") {
		t.Fatalf("expected command to be logged, got %s", out)
	}
	if !strings.Contains(out, "Conversion failed") {
		t.Fatalf("expected stderr at debug level, got %s", out)
	}
}

func TestMissingBinaryIsUnavailable(t *testing.T) {
	tr := NewTranscoder(WithBinary(filepath.Join(t.TempDir(), "ffmpeg")))
	err := tr.Trim(context.Background(), "/in/a.mkv", 0, 1, nil, "/out/a.flac")
	if !errors.Is(err, services.ErrTranscoderUnavailable) {
		t.Fatalf("expected ErrTranscoderUnavailable, got %v", err)
	}
	if !services.IsFatal(err) {
		t.Fatal("missing transcoder should be run fatal")
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := map[float64]string{
		5400:      "5400",
		0.5:       "0.5",
		1234.567:  "1234.567",
		0.1 + 0.2: "0.30000000000000004",
	}
	for input, want := range cases {
		if got := FormatSeconds(input); got != want {
			t.Fatalf("FormatSeconds(%v) = %q, want %q", input, got, want)
		}
	}
}

func setHelperCommand(t *testing.T, mode string, captured *[]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append([]string{name}, args...)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("FFMPEG_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "failure":
		fmt.Fprintln(os.Stderr, "Conversion failed!")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
