package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"mkvaudur/internal/deps"
	"mkvaudur/internal/services"
)

var commandContext = exec.CommandContext

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`
	CodecType     string `json:"codec_type"`
	Duration      string `json:"duration"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
	ChannelLayout string `json:"channel_layout"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// AudioFormat is the sample rate and channel layout of one audio stream.
type AudioFormat struct {
	SampleRate    int
	ChannelLayout string
}

// Prober runs the ffprobe binary.
type Prober struct {
	binary string
}

// NewProber constructs a prober for the given binary, defaulting to "ffprobe".
func NewProber(binary string) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// Binary returns the configured executable.
func (p *Prober) Binary() string {
	return p.binary
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func (p *Prober) Inspect(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	output, err := p.run(ctx, "inspect", path, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return Result{}, err
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, services.Wrap(services.ErrProbeFailed, "ffprobe", "inspect", path, err)
	}
	return result, nil
}

// AudioFormat reports the sample rate and channel layout of the audio stream
// at audioIndex (0-based among audio streams).
func (p *Prober) AudioFormat(ctx context.Context, path string, audioIndex int) (AudioFormat, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return AudioFormat{}, errors.New("ffprobe audio format: empty path")
	}
	if audioIndex < 0 {
		return AudioFormat{}, fmt.Errorf("ffprobe audio format: negative stream index %d", audioIndex)
	}

	output, err := p.run(ctx, "audio format", path,
		"-v", "error",
		"-select_streams", fmt.Sprintf("a:%d", audioIndex),
		"-show_entries", "stream=sample_rate,channel_layout",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		return AudioFormat{}, err
	}
	format, err := ParseAudioFormat(string(output))
	if err != nil {
		return AudioFormat{}, services.Wrap(services.ErrProbeFailed, "ffprobe", "audio format",
			fmt.Sprintf("%s a:%d", path, audioIndex), err)
	}
	return format, nil
}

// ParseAudioFormat decodes the "sample_rate,channel_layout" csv line ffprobe
// prints for a single selected stream.
func ParseAudioFormat(output string) (AudioFormat, error) {
	line := strings.TrimSpace(output)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	if line == "" {
		return AudioFormat{}, errors.New("empty output")
	}
	rate, layout, found := strings.Cut(line, ",")
	if !found {
		return AudioFormat{}, fmt.Errorf("unexpected output %q", line)
	}
	sampleRate, err := strconv.Atoi(strings.TrimSpace(rate))
	if err != nil || sampleRate <= 0 {
		return AudioFormat{}, fmt.Errorf("invalid sample rate %q", rate)
	}
	layout = strings.TrimSpace(layout)
	if layout == "" || layout == "unknown" {
		return AudioFormat{}, fmt.Errorf("missing channel layout in %q", line)
	}
	return AudioFormat{SampleRate: sampleRate, ChannelLayout: layout}, nil
}

func (p *Prober) run(ctx context.Context, op, path string, args ...string) ([]byte, error) {
	cmd := commandContext(ctx, p.binary, args...) //nolint:gosec
	output, err := cmd.Output()
	if err == nil {
		return output, nil
	}
	if deps.IsMissingBinary(err) {
		return nil, services.Wrap(services.ErrProbeUnavailable, "ffprobe", op,
			fmt.Sprintf("binary %q not found", p.binary), err)
	}
	detail := path
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		detail = fmt.Sprintf("%s: %s", path, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return nil, services.Wrap(services.ErrProbeFailed, "ffprobe", op, detail, err)
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
// When the container omits it, the longest stream duration is used.
func (r Result) DurationSeconds() float64 {
	if duration := parseFloat(r.Format.Duration); duration > 0 {
		return duration
	}
	longest := 0.0
	for _, stream := range r.Streams {
		if duration := parseFloat(stream.Duration); duration > longest {
			longest = duration
		}
	}
	return longest
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}
