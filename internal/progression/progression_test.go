package progression

import "testing"

func TestLevel(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{150, 2},
		{199, 2},
		{200, 3},
		{1000, 11},
	}
	for _, c := range cases {
		if got := Level(c.xp); got != c.want {
			t.Errorf("Level(%d) = %d, want %d", c.xp, got, c.want)
		}
	}
}

func TestXPForNextLevel(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 100},
		{99, 100},
		{100, 200},
		{150, 200},
		{250, 300},
	}
	for _, c := range cases {
		if got := XPForNextLevel(c.xp); got != c.want {
			t.Errorf("XPForNextLevel(%d) = %d, want %d", c.xp, got, c.want)
		}
	}
}

func TestXPProgressPercent(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 0},
		{50, 50},
		{99, 99},
		{100, 0},
		{150, 50},
		{299, 99},
	}
	for _, c := range cases {
		if got := XPProgressPercent(c.xp); got != c.want {
			t.Errorf("XPProgressPercent(%d) = %d, want %d", c.xp, got, c.want)
		}
	}
}
