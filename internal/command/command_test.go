package command

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"ease3", Ease3},
		{"  Play_Media ", PlayMedia},
		{"better_than_recommended", BetterThanRecommended},
		{"9", Edit},
		{"17", Exit},
		{"0", Nothing},
		{"15", Nothing},
		{"launch_rockets", Nothing},
		{"", Nothing},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseRoundTripsNames(t *testing.T) {
	for c := Nothing; c <= Exit; c++ {
		if got := Parse(c.String()); got != c {
			t.Errorf("Parse(%q) = %v, want %v", c.String(), got, c)
		}
	}
}

func TestRecommendedEase(t *testing.T) {
	tests := []struct {
		buttons int
		better  bool
		want    int
	}{
		{2, false, EaseLow},
		{2, true, EaseLow},
		{3, false, EaseLow},
		{3, true, EaseMid},
		{4, false, EaseMid},
		{4, true, EaseHigh},
	}
	for _, tt := range tests {
		if got := RecommendedEase(tt.buttons, tt.better); got != tt.want {
			t.Errorf("RecommendedEase(%d, %v) = %d, want %d", tt.buttons, tt.better, got, tt.want)
		}
	}
}

func TestEase(t *testing.T) {
	if e, ok := Ease3.Ease(3); !ok || e != EaseMid {
		t.Errorf("Ease3.Ease(3) = %d, %v, want %d, true", e, ok, EaseMid)
	}
	if e, ok := Recommended.Ease(4); !ok || e != EaseMid {
		t.Errorf("Recommended.Ease(4) = %d, %v, want %d, true", e, ok, EaseMid)
	}
	if _, ok := Undo.Ease(4); ok {
		t.Error("Undo.Ease should not be an answer")
	}
	if !Ease1.IsAnswer() || Exit.IsAnswer() {
		t.Error("IsAnswer mismatch")
	}
}

func TestLookup(t *testing.T) {
	if c, ok := Lookup("bury"); !ok || c != Bury {
		t.Errorf("Lookup(bury) = %v, %v", c, ok)
	}
	if c, ok := Lookup("12"); !ok || c != Bury {
		t.Errorf("Lookup(12) = %v, %v", c, ok)
	}
	if _, ok := Lookup("fly"); ok {
		t.Error("Lookup(fly) reported a match")
	}
	if _, ok := Lookup("99"); ok {
		t.Error("Lookup(99) reported a match")
	}
}
