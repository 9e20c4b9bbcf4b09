// Package reconcile aligns the audio tracks of a container with a reference
// video duration.
//
// For every audio track the signed difference against the reference is
// computed and turned into an Action: leave the track alone, copy it out
// unchanged, trim its tail, or append silence. Engine carries out those
// actions through a Transcoder and Runner drives an engine over a batch of
// source/reference pairs, producing either a display report or exported
// track files.
//
// Key types:
//   - TrackFilter: threshold, language restriction and process-all switch
//   - Action: decided repair for one track
//   - FileReport: reference duration plus the planned action per audio track
//   - Engine: probes files and repairs tracks
//   - Runner: batch driver with per-file and per-track error isolation
package reconcile
