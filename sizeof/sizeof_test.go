package sizeof

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimate_Scalars(t *testing.T) {
	t.Parallel()

	require.EqualValues(t, wordSize, Estimate(nil))
	require.EqualValues(t, boolSize, Estimate(true))
	require.EqualValues(t, numberSize, Estimate(42))
	require.EqualValues(t, numberSize, Estimate(3.14))
	require.EqualValues(t, numberSize, Estimate(uint8(1)))
	require.EqualValues(t, 2*numberSize, Estimate(complex(1, 2)))
}

func TestEstimate_Strings(t *testing.T) {
	t.Parallel()

	require.EqualValues(t, stringOverhead, Estimate(""))
	require.EqualValues(t, stringOverhead+2*3, Estimate("abc"))
	// Rune count, not byte count: multibyte content costs the same as
	// ASCII of equal length.
	require.Equal(t, Estimate("abc"), Estimate("αβγ"))
}

func TestEstimate_Containers(t *testing.T) {
	t.Parallel()

	require.EqualValues(t, containerOverhead, Estimate([]int(nil)))
	require.EqualValues(t, containerOverhead, Estimate(map[string]int(nil)))
	require.EqualValues(t, containerOverhead+3*numberSize, Estimate([]int{1, 2, 3}))
	require.EqualValues(t, containerOverhead, Estimate([]int{}))

	// map: container + key (string) + value (number)
	require.EqualValues(t,
		containerOverhead+(stringOverhead+2*1)+numberSize,
		Estimate(map[string]int{"a": 1}))
}

func TestEstimate_Struct(t *testing.T) {
	t.Parallel()

	type user struct {
		ID   int64
		Name string
		OK   bool
	}
	got := Estimate(user{ID: 7, Name: "ab", OK: true})
	require.EqualValues(t, numberSize+(stringOverhead+2*2)+boolSize, got)
}

// Large containers are sampled, so a uniform slice still estimates
// exactly and a huge one stays cheap to measure.
func TestEstimate_SamplingExtrapolates(t *testing.T) {
	t.Parallel()

	big := make([]uint64, 100_000)
	require.EqualValues(t, containerOverhead+100_000*numberSize, Estimate(big))

	// Uniform maps extrapolate to the full population too.
	m := make(map[int]int, 1000)
	for i := 0; i < 1000; i++ {
		m[i] = i
	}
	require.EqualValues(t, containerOverhead+1000*2*numberSize, Estimate(m))
}

// A single pathological value is clamped at MaxValueSize.
func TestEstimate_Clamp(t *testing.T) {
	t.Parallel()

	huge := make([]int, 2_000_000) // ~16 MB estimated
	require.EqualValues(t, MaxValueSize, Estimate(huge))
}

// Cyclic structures terminate by pointer identity, not by luck.
func TestEstimate_Cycle(t *testing.T) {
	t.Parallel()

	type ring struct {
		Next *ring
		Tag  int
	}
	a := &ring{Tag: 1}
	b := &ring{Tag: 2}
	a.Next = b
	b.Next = a

	got := Estimate(a)
	require.Positive(t, got)
	require.Less(t, got, uint64(1024))
}

// Deep nesting beyond the recursion cap costs a flat default instead of
// an unbounded walk.
func TestEstimate_DepthBounded(t *testing.T) {
	t.Parallel()

	type box struct{ Inner *box }
	leaf := &box{}
	cur := leaf
	for i := 0; i < 100; i++ {
		cur = &box{Inner: cur}
	}
	got := Estimate(cur)
	require.Positive(t, got)
	require.Less(t, got, uint64(4096))
}

// Same input, same answer: the estimator must be pure.
func TestEstimate_Deterministic(t *testing.T) {
	t.Parallel()

	v := map[string][]int{"a": {1, 2, 3}, "b": {4, 5}}
	first := Estimate(v)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Estimate(v))
	}
}
