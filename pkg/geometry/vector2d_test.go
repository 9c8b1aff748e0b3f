package geometry

import (
	"math"
	"testing"
)

// floatEquals is a helper for testing scalar float values with epsilon.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

func TestNewVector(t *testing.T) {
	v := NewVector(1, 2)
	if v.X != 1 || v.Y != 2 {
		t.Errorf("NewVector(1, 2) = %v; want (1, 2)", v)
	}
}

func TestVector_String(t *testing.T) {
	v := Vector2D{1.234, 5.678}
	want := "(1.23, 5.68)" // Expecting rounding to 2 decimals based on implementation
	if got := v.String(); got != want {
		t.Errorf("Vector2D.String() = %q; want %q", got, want)
	}
}

func TestVector_Arithmetic(t *testing.T) {
	v1 := Vector2D{1, 2}
	v2 := Vector2D{3, 4}

	t.Run("Add", func(t *testing.T) {
		want := Vector2D{4, 6}
		if got := v1.Add(v2); !got.Eq(want) {
			t.Errorf("%v.Add(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Sub", func(t *testing.T) {
		want := Vector2D{-2, -2}
		if got := v1.Sub(v2); !got.Eq(want) {
			t.Errorf("%v.Sub(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Mul", func(t *testing.T) {
		want := Vector2D{2, 4}
		if got := v1.Mul(2); !got.Eq(want) {
			t.Errorf("%v.Mul(2) = %v; want %v", v1, got, want)
		}
	})

	t.Run("Div", func(t *testing.T) {
		want := Vector2D{0.5, 1}
		got, err := v1.Div(2)
		if err != nil {
			t.Errorf("%v.Div(2) returned unexpected error: %v", v1, err)
		}
		if !got.Eq(want) {
			t.Errorf("%v.Div(2) = %v; want %v", v1, got, want)
		}
	})

	t.Run("DivByZero", func(t *testing.T) {
		got, err := v1.Div(0)
		if err == nil {
			t.Errorf("%v.Div(0) should have returned an error, got %v", v1, got)
		}
		if !math.IsInf(got.X, 0) || !math.IsInf(got.Y, 0) {
			t.Errorf("Div(0) should result in Inf coordinates, got %v", got)
		}
	})
}

func TestVector_Dot(t *testing.T) {
	v1 := Vector2D{1, 0}
	v2 := Vector2D{0, 1}

	// Orthogonal
	if got := v1.Dot(v2); got != 0 {
		t.Errorf("Dot orthogonal = %v; want 0", got)
	}
	// Parallel
	if got := v1.Dot(Vector2D{2, 0}); got != 2 {
		t.Errorf("Dot parallel = %v; want 2", got)
	}
}

func TestVector_Magnitude(t *testing.T) {
	v := Vector2D{3, 4} // 3-4-5 triangle

	t.Run("Len", func(t *testing.T) {
		if got := v.Len(); got != 5 {
			t.Errorf("Len = %v; want 5", got)
		}
	})

	t.Run("LenSqr", func(t *testing.T) {
		if got := v.LenSqr(); got != 25 {
			t.Errorf("LenSqr = %v; want 25", got)
		}
	})

	t.Run("Normalize", func(t *testing.T) {
		got := v.Normalize()
		want := Vector2D{0.6, 0.8}
		if !got.Eq(want) {
			t.Errorf("Normalize = %v; want %v", got, want)
		}
		if !floatEquals(got.Len(), 1.0) {
			t.Errorf("Normalize length = %v; want 1", got.Len())
		}
	})

	t.Run("NormalizeZero", func(t *testing.T) {
		zero := Vector2D{0, 0}
		got := zero.Normalize()
		if !got.Eq(zero) {
			t.Errorf("Normalize(0,0) = %v; want (0,0)", got)
		}
	})
}

func TestVector_Distance(t *testing.T) {
	v1 := Vector2D{1, 1}
	v2 := Vector2D{4, 5} // dx=3, dy=4, dist=5

	if got := v1.DistanceTo(v2); got != 5 {
		t.Errorf("DistanceTo = %v; want 5", got)
	}

	if got := v1.DistanceSquaredTo(v2); got != 25 {
		t.Errorf("DistanceSquaredTo = %v; want 25", got)
	}
}

func TestVector_Angle(t *testing.T) {
	tests := []struct {
		v    Vector2D
		want float64
	}{
		{Vector2D{1, 0}, 0},
		{Vector2D{0, 1}, math.Pi / 2},
		{Vector2D{-1, 0}, math.Pi}, // math.Atan2 returns Pi for (-1, 0)
		{Vector2D{0, -1}, -math.Pi / 2},
	}
	for _, tt := range tests {
		if got := tt.v.Angle(); !floatEquals(got, tt.want) {
			t.Errorf("%v.Angle() = %v; want %v", tt.v, got, tt.want)
		}
	}
}

func TestVector_AngleBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector2D
		want float64
	}{
		{"Parallel", Vector2D{1, 0}, Vector2D{3, 0}, 0},
		{"Orthogonal", Vector2D{1, 0}, Vector2D{0, 1}, math.Pi / 2},
		{"Opposite", Vector2D{1, 0}, Vector2D{-2, 0}, math.Pi},
		{"45 degrees", Vector2D{1, 0}, Vector2D{1, 1}, math.Pi / 4},
		{"Zero left operand", Vector2D{0, 0}, Vector2D{1, 1}, 0},
		{"Zero right operand", Vector2D{1, 1}, Vector2D{0, 0}, 0},
		{"Both zero", Vector2D{0, 0}, Vector2D{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.AngleBetween(tt.b)
			if !floatEquals(got, tt.want) {
				t.Errorf("%v.AngleBetween(%v) = %v; want %v", tt.a, tt.b, got, tt.want)
			}
			if math.IsNaN(got) {
				t.Errorf("AngleBetween produced NaN for %v, %v", tt.a, tt.b)
			}
		})
	}

	t.Run("Symmetric", func(t *testing.T) {
		a := Vector2D{2, 5}
		b := Vector2D{-3, 1}
		if got, rev := a.AngleBetween(b), b.AngleBetween(a); !floatEquals(got, rev) {
			t.Errorf("AngleBetween not symmetric: %v vs %v", got, rev)
		}
	})
}

func TestVector_Eq(t *testing.T) {
	v := Vector2D{1, 2}

	// Exact match
	if !v.Eq(Vector2D{1, 2}) {
		t.Error("Eq exact match failed")
	}

	// Epsilon match
	vClose := Vector2D{1 + Epsilon/2, 2 - Epsilon/2}
	if !v.Eq(vClose) {
		t.Error("Eq epsilon match failed")
	}

	// No match
	vDiff := Vector2D{1.1, 2}
	if v.Eq(vDiff) {
		t.Error("Eq mismatch failed")
	}
}
