package geometry

import (
	"math"
	"testing"
)

func TestRectContains(t *testing.T) {
	r := R(10, 20, 30, 40)

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Pt(15, 25), true},
		{"origin edge", Pt(10, 20), true},
		{"far edge", Pt(40, 60), true},
		{"left of", Pt(9.9, 30), false},
		{"below", Pt(20, 60.1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	got := R(0, 0, 10, 10).Union(R(5, -5, 20, 10))
	want := R(0, -5, 25, 15)
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
}

func TestRectCenterAndMax(t *testing.T) {
	r := R(2, 4, 6, 8)
	if c := r.Center(); c != Pt(5, 8) {
		t.Errorf("Center = %v, want (5,8)", c)
	}
	if m := r.Max(); m != Pt(8, 12) {
		t.Errorf("Max = %v, want (8,12)", m)
	}
}

func TestRectEmpty(t *testing.T) {
	if !R(0, 0, 0, 10).Empty() {
		t.Error("zero width should be empty")
	}
	if R(0, 0, 1, 1).Empty() {
		t.Error("unit rect should not be empty")
	}
}

func TestPointArithmetic(t *testing.T) {
	a, b := Pt(3, 4), Pt(1, 1)
	if got := a.Add(b); got != Pt(4, 5) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != Pt(2, 3) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(2); got != Pt(6, 8) {
		t.Errorf("Scale = %v", got)
	}
	if d := a.Distance(Pt(0, 0)); math.Abs(d-5) > 1e-12 {
		t.Errorf("Distance = %v, want 5", d)
	}
}
