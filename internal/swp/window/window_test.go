package window

import "testing"

func TestInWindowNonWrapping(t *testing.T) {
	cases := []struct {
		left, right, seq byte
		want             bool
	}{
		{2, 6, 2, false}, // boundary exclusive on left
		{2, 6, 3, true},
		{2, 6, 6, true}, // boundary inclusive on right
		{2, 6, 7, false},
		{2, 6, 0, false},
	}
	for _, c := range cases {
		if got := InWindow(c.left, c.right, c.seq); got != c.want {
			t.Errorf("InWindow(%d,%d,%d) = %v, want %v", c.left, c.right, c.seq, got, c.want)
		}
	}
}

func TestInWindowWrapping(t *testing.T) {
	// left > right: window wraps around the modulus boundary.
	cases := []struct {
		left, right, seq byte
		want             bool
	}{
		{254, 1, 255, true},
		{254, 1, 0, true},
		{254, 1, 1, true},
		{254, 1, 254, false},
		{254, 1, 2, false},
	}
	for _, c := range cases {
		if got := InWindow(c.left, c.right, c.seq); got != c.want {
			t.Errorf("InWindow(%d,%d,%d) = %v, want %v", c.left, c.right, c.seq, got, c.want)
		}
	}
}

func TestInWindowEmptyWindow(t *testing.T) {
	// left == right: the interval (left, left] is empty — nothing is in window.
	for seq := 0; seq < 256; seq++ {
		if InWindow(5, 5, byte(seq)) {
			t.Errorf("InWindow(5,5,%d) = true, want false (empty window)", seq)
		}
	}
}
