package integrators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableau_Validate(t *testing.T) {
	for _, tab := range []*Tableau{DOP853(), DormandPrince54()} {
		t.Run(tab.Name, func(t *testing.T) {
			require.NoError(t, tab.Validate())
		})
	}
}

func TestTableau_ValidateRejectsBrokenRow(t *testing.T) {
	tab := *DormandPrince54()
	a := make([][]float64, len(tab.A))
	copy(a, tab.A)
	a[2] = []float64{0.1, 0.1}
	tab.A = a

	err := tab.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestTableau_ValidateRejectsShortErrorWeights(t *testing.T) {
	tab := *DormandPrince54()
	tab.E = tab.E[:len(tab.E)-1]
	assert.Error(t, tab.Validate())
}

// sum_i b_i c_i^k = 1/(k+1) holds for every k below the order.
func TestTableau_QuadratureConditions(t *testing.T) {
	for _, tab := range []*Tableau{DOP853(), DormandPrince54()} {
		for k := 0; k < tab.Order; k++ {
			sum := 0.0
			for i, b := range tab.B {
				sum += b * math.Pow(tab.C[i], float64(k))
			}
			assert.InDelta(t, 1.0/float64(k+1), sum, 1e-13, "%s k=%d", tab.Name, k)
		}
	}
}

func TestTableau_ErrorWeightsSumToZero(t *testing.T) {
	tab := DOP853()
	for name, w := range map[string][]float64{"E": tab.E, "E3": tab.E3} {
		sum := 0.0
		for _, e := range w {
			sum += e
		}
		assert.InDelta(t, 0.0, sum, 1e-13, name)
	}
}

func TestDOP853_Shape(t *testing.T) {
	tab := DOP853()
	assert.Equal(t, 8, tab.Order)
	assert.Equal(t, 12, tab.Stages)
	assert.Len(t, tab.E3, 13)
	require.NotNil(t, tab.Dense)
	assert.Len(t, tab.Dense.C, 3)
	assert.Len(t, tab.Dense.D, 4)
	assert.Equal(t, 16, tab.TotalStages())
	assert.Equal(t, 1.0, tab.C[11])
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
		err  bool
	}{
		{"", "dop853", false},
		{"dop853", "dop853", false},
		{"dopri5", "dopri5", false},
		{"rk45", "dopri5", false},
		{"euler", "", true},
	}
	for _, tt := range tests {
		tab, err := Lookup(tt.name)
		if tt.err {
			assert.Error(t, err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, tab.Name)
	}

	for _, m := range Methods() {
		_, err := Lookup(m)
		assert.NoError(t, err, m)
	}
}
