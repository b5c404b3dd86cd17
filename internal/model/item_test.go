package model

import "testing"

func TestToggleStatusIsInvolution(t *testing.T) {
	for _, s := range []string{StatusPending, StatusClaimed} {
		once := ToggleStatus(s)
		if once == s {
			t.Errorf("ToggleStatus(%q) did not change status", s)
		}
		if !ValidStatus(once) {
			t.Errorf("ToggleStatus(%q) = %q, not a valid status", s, once)
		}
		if twice := ToggleStatus(once); twice != s {
			t.Errorf("ToggleStatus(ToggleStatus(%q)) = %q", s, twice)
		}
	}
}

func TestValidCategory(t *testing.T) {
	tests := map[string]bool{
		CategoryLost:  true,
		CategoryFound: true,
		"":            false,
		"Lost":        false,
		"stolen":      false,
	}
	for c, want := range tests {
		if got := ValidCategory(c); got != want {
			t.Errorf("ValidCategory(%q) = %v, want %v", c, got, want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	tests := map[string]bool{
		StatusPending: true,
		StatusClaimed: true,
		"pending":     false,
		"":            false,
	}
	for s, want := range tests {
		if got := ValidStatus(s); got != want {
			t.Errorf("ValidStatus(%q) = %v, want %v", s, got, want)
		}
	}
}
