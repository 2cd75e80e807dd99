package version

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"1.2.0.0": "1.2",
		"1.0.0.0": "1",
		"2.3.4":   "2.3.4",
		"1.0":     "1",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTimestampFormat(t *testing.T) {
	ts := Timestamp()
	// YYYY.MM.DD.HHMM is always 15 characters long.
	if len(ts) != len("2006.01.02.1504") {
		t.Errorf("Timestamp() = %q, want length %d", ts, len("2006.01.02.1504"))
	}
}
