package tier

import "testing"

func TestRankOrdering(t *testing.T) {
	if Rank(Basic) >= Rank(Premium) {
		t.Fatalf("expected PREMIUM to outrank BASIC")
	}
	if Rank(Premium) >= Rank(PremiumPlus) {
		t.Fatalf("expected PREMIUM_PLUS to outrank PREMIUM")
	}
	if Rank(Tier("GOLD")) != 0 {
		t.Fatalf("expected unknown tier to rank 0, got %d", Rank(Tier("GOLD")))
	}
	if Rank(Tier("")) != 0 {
		t.Fatalf("expected empty tier to rank 0")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{in: "BASIC", want: Basic},
		{in: "premium", want: Premium},
		{in: "  Premium_Plus  ", want: PremiumPlus},
		{in: "PREMIUMPLUS", wantErr: true},
		{in: "", wantErr: true},
		{in: "gold", wantErr: true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMax(t *testing.T) {
	tests := []struct {
		a, b, want Tier
	}{
		{a: Basic, b: Premium, want: Premium},
		{a: PremiumPlus, b: Premium, want: PremiumPlus},
		{a: Basic, b: Basic, want: Basic},
		{a: "", b: Basic, want: Basic},
		{a: "", b: "", want: ""},
	}

	for _, tt := range tests {
		if got := Max(tt.a, tt.b); got != tt.want {
			t.Fatalf("Max(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}
