package scoring

import "testing"

func TestCombineDefaultWeights(t *testing.T) {
	c := DefaultCombiner()

	cases := []struct {
		tech, sentiment, want float64
	}{
		{80, 50, 68.0},
		{100, 100, 100.0},
		{0, 0, 0.0},
		{50, 50, 50.0},
		{70, 25, 52.0},
	}
	for _, tc := range cases {
		if got := c.Combine(tc.tech, tc.sentiment); got != tc.want {
			t.Errorf("Combine(%v, %v) = %v, want %v", tc.tech, tc.sentiment, got, tc.want)
		}
	}
}

func TestCombineCustomWeights(t *testing.T) {
	c := Combiner{TechWeight: 0.5, SentimentWeight: 0.5}
	if got := c.Combine(80, 40); got != 60.0 {
		t.Errorf("Combine(80, 40) = %v, want 60.0", got)
	}
}

func TestCombineClamps(t *testing.T) {
	c := DefaultCombiner()
	if got := c.Combine(150, 150); got != 100.0 {
		t.Errorf("Combine above range = %v, want 100.0", got)
	}
	if got := c.Combine(-50, -50); got != 0.0 {
		t.Errorf("Combine below range = %v, want 0.0", got)
	}
}
