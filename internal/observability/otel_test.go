package observability

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" x-api-key = abc ,bad, =v, k= ,x-team=tour")
	want := map[string]string{"x-api-key": "abc", "x-team": "tour"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("parseHeaders mismatch (-want +got):\n%s", diff)
	}
	if parseHeaders("") != nil {
		t.Fatalf("parseHeaders(empty): want nil")
	}
}

func TestOtelSampleRatioClamps(t *testing.T) {
	cases := map[string]float64{"": 0.1, "junk": 0.1, "-1": 0, "2": 1, "0.25": 0.25}
	for raw, want := range cases {
		t.Setenv("OTEL_SAMPLER_RATIO", raw)
		if got := otelSampleRatio(); got != want {
			t.Fatalf("otelSampleRatio(%q): want=%v got=%v", raw, want, got)
		}
	}
}
