// Package trackpath names the audio files written for a source container.
package trackpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mkvaudur/internal/media/mediainfo"
	"mkvaudur/internal/services"
)

var upper = cases.Upper(language.Und)

// Builder resolves output locations. An empty OutputDir writes next to the
// source file.
type Builder struct {
	OutputDir string

	dirReady bool
}

// NewBuilder constructs a Builder for the given output directory.
func NewBuilder(outputDir string) *Builder {
	return &Builder{OutputDir: strings.TrimSpace(outputDir)}
}

// Stem returns "{source stem}_Audio{NN}.{LANG}" where NN is the zero-padded
// audio type-order and LANG is the upper-cased language or UND.
func Stem(source string, track mediainfo.Track) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	lang := "UND"
	if track.Language != "" {
		lang = upper.String(track.Language)
	}
	return fmt.Sprintf("%s_Audio%02d.%s", stem, track.TypeOrder, lang)
}

// Extension returns the output extension for a track's audio format,
// including the leading dot. PCM is written as WAV.
func Extension(track mediainfo.Track) string {
	format := strings.ToLower(strings.TrimSpace(track.Format))
	if format == "pcm" {
		return ".wav"
	}
	return "." + format
}

// Filename returns the output file name without a directory.
func Filename(source string, track mediainfo.Track) string {
	return Stem(source, track) + Extension(track)
}

// Path returns the full output path for track, creating the custom output
// directory on first use.
func (b *Builder) Path(source string, track mediainfo.Track) (string, error) {
	dir, err := b.dir(source)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, Filename(source, track)), nil
}

func (b *Builder) dir(source string) (string, error) {
	if b == nil || b.OutputDir == "" {
		return filepath.Dir(source), nil
	}
	if !b.dirReady {
		if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
			return "", services.Wrap(services.ErrOutputDirectory, "trackpath", "create output dir", b.OutputDir, err)
		}
		b.dirReady = true
	}
	return b.OutputDir, nil
}
