package surface

// Surface maps an (expiry, tenor) pair to a scalar. Implementations must be
// deterministic, side-effect free and total over the domain callers query;
// the consumers of this capability never inspect how the value is produced.
type Surface interface {
	ValueAt(expiry, tenor float64) float64
}

// Func adapts an ordinary function to the Surface capability.
//
// Func values are not comparable, so anything whose equality contract
// depends on its surfaces (see sabr.Model) should prefer Constant or *Grid.
type Func func(expiry, tenor float64) float64

func (f Func) ValueAt(expiry, tenor float64) float64 { return f(expiry, tenor) }

// Constant is a surface with the same level everywhere. Two Constant
// surfaces with the same level compare equal.
type Constant float64

func (c Constant) ValueAt(expiry, tenor float64) float64 { return float64(c) }

// Zero is the no-shift surface substituted when a model is built without an
// explicit shift.
const Zero = Constant(0)
