package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mkvaudur/internal/config"
	"mkvaudur/internal/testsupport"
)

const fakeMediaInfoJSON = `{"media":{"track":[
{"@type":"General","Duration":"100.200"},
{"@type":"Video","@typeorder":"1","ID":"1","Duration":"100.000"},
{"@type":"Audio","@typeorder":"1","ID":"2","Duration":"100.500","Language":"en","Format":"AC-3","Compression_Mode":"Lossy"},
{"@type":"Audio","@typeorder":"2","ID":"3","Duration":"99.000","Language":"de","Format":"PCM","Compression_Mode":"Lossless"},
{"@type":"Audio","@typeorder":"3","ID":"4","Duration":"100.000","Language":"fr","Format":"AAC","Compression_Mode":"Lossy"}
]}}`

// fakeFFmpegScript touches its final argument so exports leave a file behind.
const fakeFFmpegScript = `for arg in "$@"; do last="$arg"; done
: > "$last"
exit 0`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	mediaDir   string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := []testsupport.ConfigOption{
		testsupport.WithScript("mediainfo", "cat <<'JSON'\n"+fakeMediaInfoJSON+"\nJSON"),
		testsupport.WithScript("ffmpeg", fakeFFmpegScript),
	}
	cfg := testsupport.NewConfig(t, append(base, opts...)...)
	baseDir := testsupport.BaseDir(cfg)
	cfg.Tools.FFprobe = filepath.Join(baseDir, "bin", "absent-ffprobe")

	configPath := filepath.Join(baseDir, "config.toml")
	writeTestConfig(t, configPath, cfg)

	mediaDir := filepath.Join(baseDir, "media")
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		t.Fatalf("mkdir media: %v", err)
	}

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    baseDir,
		mediaDir:   mediaDir,
	}
}

func (e *cliTestEnv) addMedia(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.mediaDir, name)
	if err := os.WriteFile(path, []byte("matroska"), 0o644); err != nil {
		t.Fatalf("write media %s: %v", name, err)
	}
	return path
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
