package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslatePoint(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformVec3(Vec3{1, 2, 3})
	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("Translate.TransformVec3() = %v, want %v", got, want)
	}
}

func TestRotateZQuarterTurn(t *testing.T) {
	m := RotateZ(math32.Pi / 2)
	got := m.TransformVec3(Vec3{1, 0, 0})
	want := Vec3{0, 1, 0}
	if got.Distance(want) > 1e-6 {
		t.Errorf("RotateZ(pi/2) * (1,0,0) = %v, want %v", got, want)
	}
}

func TestRotationPreservesLength(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"RotateX", RotateX(0.7)},
		{"RotateY", RotateY(-1.3)},
		{"RotateZ", RotateZ(2.1)},
	}

	v := Vec3{1, 2, 3}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformVec3(v).Length()
			if math32.Abs(got-v.Length()) > 1e-5 {
				t.Errorf("rotation changed length: got %f, want %f", got, v.Length())
			}
		})
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(100, 100, 100)
	got := m.TransformDirection([3]float32{0, 0, 1})
	if got != [3]float32{0, 0, 1} {
		t.Errorf("TransformDirection() = %v, want (0,0,1)", got)
	}
}

func TestTransposeInvolution(t *testing.T) {
	m := RotateZ(0.5).Mul(Translate(1, 2, 3))
	if m.Transpose().Transpose() != m {
		t.Error("Transpose applied twice should return the original matrix")
	}
}
