package tick

import "testing"

func TestDurationAddSaturates(t *testing.T) {
	cases := []struct {
		name string
		a, b Duration
		want Duration
	}{
		{"finite+finite", 10, 20, 30},
		{"finite+infinite", 10, Infinite, Infinite},
		{"infinite+finite", Infinite, 10, Infinite},
		{"overflow", Infinite - 1, 2, Infinite},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Add(c.b); got != c.want {
				t.Errorf("%v.Add(%v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestDurationSubClampsAtZero(t *testing.T) {
	cases := []struct {
		name string
		a, b Duration
		want Duration
	}{
		{"positive", 20, 5, 15},
		{"exact", 20, 20, 0},
		{"negative-clamped", 5, 20, 0},
		{"infinite-finite", Infinite, 100, Infinite},
		{"infinite-infinite", Infinite, Infinite, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Sub(c.b); got != c.want {
				t.Errorf("%v.Sub(%v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestDurationScale(t *testing.T) {
	cases := []struct {
		name   string
		d      Duration
		scalar int
		want   Duration
	}{
		{"zero-scalar", 10, 0, 0},
		{"negative-scalar", 10, -3, 0},
		{"positive-scalar", 10, 3, 30},
		{"infinite-positive", Infinite, 2, Infinite},
		{"overflow", Infinite / 2, 3, Infinite},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.d.Scale(c.scalar); got != c.want {
				t.Errorf("%v.Scale(%d) = %v, want %v", c.d, c.scalar, got, c.want)
			}
		})
	}
}

func TestDurationOrdering(t *testing.T) {
	if !Duration(5).Less(Duration(10)) {
		t.Error("expected 5 < 10")
	}
	if !Duration(10).Less(Infinite) {
		t.Error("expected every finite duration to compare less than Infinite")
	}
	if Infinite.Less(Infinite) {
		t.Error("Infinite must not compare less than itself")
	}
}

func TestDurationFinite(t *testing.T) {
	if !Duration(0).Finite() {
		t.Error("zero duration must be finite")
	}
	if Infinite.Finite() {
		t.Error("Infinite must not report as finite")
	}
}
