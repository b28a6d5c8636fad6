package pass

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/abfplot/dsp/filter/biquad"
)

const tol = 1e-9

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func assertStableSection(t *testing.T, c biquad.Coefficients) {
	t.Helper()
	disc := cmplx.Sqrt(complex(c.A1*c.A1-4*c.A2, 0))
	r1 := (-complex(c.A1, 0) + disc) / 2
	r2 := (-complex(c.A1, 0) - disc) / 2
	if cmplx.Abs(r1) >= 1+tol || cmplx.Abs(r2) >= 1+tol {
		t.Fatalf("unstable poles: |r1|=%v |r2|=%v coeff=%#v", cmplx.Abs(r1), cmplx.Abs(r2), c)
	}
}
