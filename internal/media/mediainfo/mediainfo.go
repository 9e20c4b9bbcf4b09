package mediainfo

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

// Kind is the track category reported by mediainfo's @type field.
type Kind string

const (
	KindGeneral Kind = "General"
	KindVideo   Kind = "Video"
	KindAudio   Kind = "Audio"
	KindText    Kind = "Text"
	KindMenu    Kind = "Menu"
	KindOther   Kind = "Other"
)

// CompressionMode is the closed set of compression modes the repair
// strategies understand.
type CompressionMode int

const (
	CompressionUnspecified CompressionMode = iota
	CompressionLossy
	CompressionLossless
	// CompressionOther means mediainfo reported a value that is neither
	// Lossy nor Lossless; Track.CompressionRaw keeps the original string.
	CompressionOther
)

func (m CompressionMode) String() string {
	switch m {
	case CompressionLossy:
		return "Lossy"
	case CompressionLossless:
		return "Lossless"
	case CompressionOther:
		return "Other"
	default:
		return "Unspecified"
	}
}

// ParseCompressionMode maps mediainfo's Compression_Mode value onto the enum.
func ParseCompressionMode(value string) CompressionMode {
	switch strings.TrimSpace(value) {
	case "":
		return CompressionUnspecified
	case "Lossy":
		return CompressionLossy
	case "Lossless":
		return CompressionLossless
	default:
		return CompressionOther
	}
}

// Track describes a single stream in the container.
type Track struct {
	Kind Kind
	// ID is the container stream identifier, 0 when mediainfo omits it.
	ID int
	// TypeOrder is the 1-based position among tracks of the same kind.
	TypeOrder int
	Duration  float64
	// DurationIssue explains why Duration could not be read; empty when it
	// is valid.
	DurationIssue  string
	Language       string
	Format         string
	Compression    CompressionMode
	CompressionRaw string
	SampleRate     int
	Channels       int
	ChannelLayout  string
}

// CheckDuration returns ErrInvalidMetadata when the track's duration is
// missing or unusable.
func (t Track) CheckDuration() error {
	if t.DurationIssue == "" {
		return nil
	}
	return services.Wrap(services.ErrInvalidMetadata, "mediainfo", "duration",
		fmt.Sprintf("%s track %d duration: %s", t.Kind, t.TypeOrder, t.DurationIssue), nil)
}

// Media captures the parsed tracks of one container.
type Media struct {
	Ref    string
	Tracks []Track
}

// AudioTracks returns the audio tracks in container order.
func (m Media) AudioTracks() []Track {
	return m.tracksOfKind(KindAudio)
}

// VideoTracks returns the video tracks in container order.
func (m Media) VideoTracks() []Track {
	return m.tracksOfKind(KindVideo)
}

func (m Media) tracksOfKind(kind Kind) []Track {
	out := make([]Track, 0, len(m.Tracks))
	for _, track := range m.Tracks {
		if track.Kind == kind {
			out = append(out, track)
		}
	}
	return out
}

// Prober runs the mediainfo binary.
type Prober struct {
	binary string
}

// NewProber constructs a prober for the given binary, defaulting to "mediainfo".
func NewProber(binary string) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "mediainfo"
	}
	return &Prober{binary: binary}
}

// Binary returns the configured executable.
func (p *Prober) Binary() string {
	return p.binary
}

// Inspect executes mediainfo against the provided path and parses the JSON response.
func (p *Prober) Inspect(ctx context.Context, path string) (Media, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Media{}, errors.New("mediainfo inspect: empty path")
	}

	cmd := commandContext(ctx, p.binary, "--Output=JSON", path) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		if deps.IsMissingBinary(err) {
			return Media{}, services.Wrap(services.ErrProbeUnavailable, "mediainfo", "inspect",
				fmt.Sprintf("binary %q not found; is MediaInfo installed to PATH?", p.binary), err)
		}
		detail := path
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			detail = fmt.Sprintf("%s: %s", path, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Media{}, services.Wrap(services.ErrProbeFailed, "mediainfo", "inspect", detail, err)
	}

	media, err := Parse(output)
	if err != nil {
		return Media{}, fmt.Errorf("%s: %w", path, err)
	}
	if media.Ref == "" {
		media.Ref = path
	}
	return media, nil
}

type rawTrack struct {
	Type            string `json:"@type"`
	TypeOrder       string `json:"@typeorder"`
	ID              string `json:"ID"`
	Duration        string `json:"Duration"`
	Language        string `json:"Language"`
	Format          string `json:"Format"`
	CompressionMode string `json:"Compression_Mode"`
	SamplingRate    string `json:"SamplingRate"`
	Channels        string `json:"Channels"`
	ChannelLayout   string `json:"ChannelLayout"`
}

type rawOutput struct {
	Media *struct {
		Ref    string     `json:"@ref"`
		Tracks []rawTrack `json:"track"`
	} `json:"media"`
}

// Parse decodes mediainfo JSON output. A missing or invalid audio or video
// duration is recorded on the track rather than rejected; see CheckDuration.
func Parse(data []byte) (Media, error) {
	var raw rawOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Media{}, services.Wrap(services.ErrProbeFailed, "mediainfo", "parse", "decode json", err)
	}
	if raw.Media == nil {
		return Media{}, services.Wrap(services.ErrProbeFailed, "mediainfo", "parse", "missing media object", nil)
	}

	media := Media{Ref: raw.Media.Ref, Tracks: make([]Track, 0, len(raw.Media.Tracks))}
	seen := make(map[Kind]int)
	for _, rt := range raw.Media.Tracks {
		kind := parseKind(rt.Type)
		seen[kind]++

		track := Track{
			Kind:           kind,
			ID:             leadingInt(rt.ID),
			TypeOrder:      seen[kind],
			Language:       strings.TrimSpace(rt.Language),
			Format:         strings.TrimSpace(rt.Format),
			CompressionRaw: strings.TrimSpace(rt.CompressionMode),
			Compression:    ParseCompressionMode(rt.CompressionMode),
			SampleRate:     leadingInt(rt.SamplingRate),
			Channels:       leadingInt(rt.Channels),
			ChannelLayout:  strings.TrimSpace(rt.ChannelLayout),
		}
		if order := strings.TrimSpace(rt.TypeOrder); order != "" {
			value, err := strconv.Atoi(order)
			if err != nil || value <= 0 {
				return Media{}, services.Wrap(services.ErrInvalidMetadata, "mediainfo", "parse",
					fmt.Sprintf("%s track has invalid @typeorder %q", kind, rt.TypeOrder), err)
			}
			track.TypeOrder = value
		}

		if kind == KindAudio || kind == KindVideo {
			duration, err := parseDuration(rt.Duration)
			if err != nil {
				track.DurationIssue = err.Error()
			} else {
				track.Duration = duration
			}
		}
		media.Tracks = append(media.Tracks, track)
	}
	return media, nil
}

func parseKind(value string) Kind {
	switch Kind(strings.TrimSpace(value)) {
	case KindGeneral:
		return KindGeneral
	case KindVideo:
		return KindVideo
	case KindAudio:
		return KindAudio
	case KindText:
		return KindText
	case KindMenu:
		return KindMenu
	default:
		return KindOther
	}
}

func parseDuration(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, errors.New("missing")
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable value %q", value)
	}
	if parsed < 0 || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, fmt.Errorf("invalid value %q", value)
	}
	return parsed, nil
}

// leadingInt parses the leading decimal digits of value, returning 0 when
// there are none. mediainfo reports IDs like "2-CC1" and rates like "48000 / 44100".
func leadingInt(value string) int {
	cleaned := strings.TrimSpace(value)
	end := 0
	for end < len(cleaned) && cleaned[end] >= '0' && cleaned[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	parsed, err := strconv.Atoi(cleaned[:end])
	if err != nil {
		return 0
	}
	return parsed
}
