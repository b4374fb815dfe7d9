package ptarena

import "testing"

func TestRequest2size(t *testing.T) {
	cases := []struct{ req, want int64 }{
		{0, 16}, {1, 32}, {16, 32}, {17, 48}, {64, 80}, {65, 96}, {512, 528},
	}
	for _, c := range cases {
		if got := request2size(c.req); got != c.want {
			t.Errorf("request2size(%v) = %v, want %v", c.req, got, c.want)
		}
	}
}

func TestFastbinIndex(t *testing.T) {
	if idx := fastbinIndex(request2size(16)); idx != 0 {
		t.Errorf("expected index 0, got %v", idx)
	}
	if idx := fastbinIndex(request2size(16) + 9*FastbinStep); idx != 9 {
		t.Errorf("expected index 9, got %v", idx)
	}
	if idx := fastbinIndex(request2size(16) + 10*FastbinStep); idx != -1 {
		t.Errorf("expected -1 past the last fastbin, got %v", idx)
	}
	if idx := fastbinIndex(request2size(16) + 1); idx != -1 {
		t.Errorf("expected -1 for a size off the 16-byte grid, got %v", idx)
	}
}

func TestSmallbinIndex(t *testing.T) {
	if idx := smallbinIndex(request2size(16)); idx != 0 {
		t.Errorf("expected index 0, got %v", idx)
	}
	if idx := smallbinIndex(request2size(512)); idx < 0 {
		t.Errorf("expected a valid index for request2size(512), got %v", idx)
	}
	if idx := smallbinIndex(request2size(512) + FastbinStep); idx != -1 {
		t.Errorf("expected -1 past the smallbin ceiling, got %v", idx)
	}
}

func TestLargebinIndexClamped(t *testing.T) {
	if idx := largebinIndex(1); idx != 0 {
		t.Errorf("expected 0, got %v", idx)
	}
	huge := int64(1) << 40
	if idx := largebinIndex(huge); idx != NLargebins-1 {
		t.Errorf("expected clamp to %v, got %v", NLargebins-1, idx)
	}
}

func TestTcacheEligibilityThreshold(t *testing.T) {
	// spec.md's explicit open question: TCACHE_MAX=64, so the
	// smallest ineligible chunk size is request2size(65) == 96.
	a := NewArena(1 << 15)
	if !a.tcacheEligible(request2size(64)) {
		t.Errorf("request2size(64) should be tcache eligible")
	}
	if a.tcacheEligible(request2size(65)) {
		t.Errorf("request2size(65) should not be tcache eligible")
	}
	if got := request2size(65); got != 96 {
		t.Errorf("request2size(65) = %v, want 96", got)
	}
}

func TestTcacheEligibilityOverride(t *testing.T) {
	setts := Defaultsettings()
	setts["tcache.max"] = int64(128)
	a := NewArenaWithSettings(setts)
	if !a.tcacheEligible(request2size(128)) {
		t.Errorf("request2size(128) should be tcache eligible once tcache.max is overridden to 128")
	}
	if a.tcacheEligible(request2size(129)) {
		t.Errorf("request2size(129) should still be ineligible past the overridden threshold")
	}
}
