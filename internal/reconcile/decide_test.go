package reconcile

import (
	"testing"

	"mkvaudur/internal/media/mediainfo"
)

func TestDecide(t *testing.T) {
	const reference = 100.0
	tests := []struct {
		name     string
		language string
		diff     float64
		filter   TrackFilter
		want     Action
	}{
		{name: "longer trims to reference", language: "en", diff: 0.5, want: Action{Kind: ActionTrim, Duration: reference}},
		{name: "shorter appends difference", language: "en", diff: -0.75, want: Action{Kind: ActionAppend, Duration: 0.75}},
		{name: "equal skips at zero threshold", language: "en", diff: 0, want: Action{Kind: ActionSkip}},
		{name: "threshold is strict", language: "en", diff: 0.5, filter: TrackFilter{Threshold: 0.5}, want: Action{Kind: ActionSkip}},
		{name: "negative threshold is strict", language: "en", diff: -0.5, filter: TrackFilter{Threshold: 0.5}, want: Action{Kind: ActionSkip}},
		{name: "over threshold", language: "en", diff: -0.51, filter: TrackFilter{Threshold: 0.5}, want: Action{Kind: ActionAppend, Duration: 0.51}},
		{name: "language match", language: "de", diff: 2, filter: TrackFilter{Language: "de"}, want: Action{Kind: ActionTrim, Duration: reference}},
		{name: "language mismatch skips", language: "en", diff: 2, filter: TrackFilter{Language: "de"}, want: Action{Kind: ActionSkip}},
		{name: "language is case sensitive", language: "DE", diff: 2, filter: TrackFilter{Language: "de"}, want: Action{Kind: ActionSkip}},
		{name: "missing language never matches filter", language: "", diff: 2, filter: TrackFilter{Language: "de"}, want: Action{Kind: ActionSkip}},
		{name: "process all copies ineligible", language: "en", diff: 0.1, filter: TrackFilter{Threshold: 1, ProcessAll: true}, want: Action{Kind: ActionCopy}},
		{name: "process all copies language mismatch", language: "en", diff: 5, filter: TrackFilter{Language: "de", ProcessAll: true}, want: Action{Kind: ActionCopy}},
		{name: "process all copies exact match", language: "en", diff: 0, filter: TrackFilter{ProcessAll: true}, want: Action{Kind: ActionCopy}},
		{name: "process all still repairs eligible", language: "en", diff: 3, filter: TrackFilter{ProcessAll: true}, want: Action{Kind: ActionTrim, Duration: reference}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			delta := TrackDelta{
				Track:      audioTrack(1, reference+tc.diff, tc.language, mediainfo.CompressionLossy),
				Difference: tc.diff,
			}
			got := Decide(delta, reference, tc.filter)
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDecideAppendNeverNegative(t *testing.T) {
	for _, diff := range []float64{-0.001, -1, -3600} {
		action := Decide(TrackDelta{Difference: diff}, 10, TrackFilter{})
		if action.Kind != ActionAppend || action.Duration <= 0 {
			t.Fatalf("diff %v: expected positive append, got %+v", diff, action)
		}
	}
}

func TestPlanKeepsReasons(t *testing.T) {
	deltas := []TrackDelta{
		{Track: audioTrack(1, 101, "en", mediainfo.CompressionLossy), Difference: 1},
		{Track: audioTrack(2, 100, "fr", mediainfo.CompressionLossy), Difference: 0},
	}
	plans := Plan(deltas, 100, TrackFilter{Language: "en"})
	if len(plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(plans))
	}
	if plans[0].Action.Kind != ActionTrim || plans[0].Reason == "" {
		t.Fatalf("unexpected first plan %+v", plans[0])
	}
	if plans[1].Action.Kind != ActionSkip || plans[1].Reason != `language "fr" does not match filter` {
		t.Fatalf("unexpected second plan %+v", plans[1])
	}
}

func TestActionKindString(t *testing.T) {
	cases := map[ActionKind]string{
		ActionSkip:   "skip",
		ActionCopy:   "copy",
		ActionTrim:   "trim",
		ActionAppend: "append",
	}
	for kind, want := range cases {
		if kind.String() != want {
			t.Fatalf("got %q, want %q", kind.String(), want)
		}
	}
}

func TestCorrectedOutputIsNotRepairedAgain(t *testing.T) {
	const reference = 100.0
	filter := TrackFilter{Threshold: 0.1}
	for _, original := range []float64{101.5, 98.25} {
		media := newMedia("/m/movie.mkv", videoTrack(reference), audioTrack(1, original, "en", mediainfo.CompressionLossy))
		deltas, err := AudioDeltas(media, reference)
		if err != nil {
			t.Fatalf("AudioDeltas returned error: %v", err)
		}
		first := Plan(deltas, reference, filter)
		if first[0].Action.Kind == ActionSkip {
			t.Fatalf("expected %v to need a repair", original)
		}

		corrected := audioTrack(1, reference, "en", mediainfo.CompressionLossy)
		deltas, err = AudioDeltas(newMedia("/m/movie_Audio01.EN.ac-3", videoTrack(reference), corrected), reference)
		if err != nil {
			t.Fatalf("AudioDeltas returned error: %v", err)
		}
		second := Plan(deltas, reference, filter)
		if second[0].Action.Kind != ActionSkip {
			t.Fatalf("corrected output from %v should skip, got %s", original, second[0].Action.Kind)
		}
	}
}
