package fonts

import "testing"

func TestRegularIsCached(t *testing.T) {
	a, err := Regular()
	if err != nil {
		t.Fatalf("Regular() error: %v", err)
	}
	b, _ := Regular()
	if a != b {
		t.Error("Regular() should return the same parsed font")
	}
}

func TestFaceMetrics(t *testing.T) {
	small, err := Face(12)
	if err != nil {
		t.Fatalf("Face(12) error: %v", err)
	}
	large, err := Face(48)
	if err != nil {
		t.Fatalf("Face(48) error: %v", err)
	}

	if small.Metrics().Height >= large.Metrics().Height {
		t.Errorf("48pt face should be taller than 12pt face: %v vs %v",
			large.Metrics().Height, small.Metrics().Height)
	}
}
