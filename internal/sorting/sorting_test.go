package sorting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	name  string
	value float64
	days  *int
}

func intPtr(v int) *int { return &v }

func names(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.name
	}
	return out
}

var (
	byName  = TextField("name", func(r row) string { return r.name })
	byValue = NumberField("value", func(r row) float64 { return r.value })
	byDays  = OptionalNumberField("days", func(r row) (float64, bool) {
		if r.days == nil {
			return 0, false
		}
		return float64(*r.days), true
	})
)

func TestSort_NumberAscDesc(t *testing.T) {
	rows := []row{{name: "a", value: 3}, {name: "b", value: 1}, {name: "c", value: 2}}

	assert.Equal(t, []string{"b", "c", "a"}, names(Sort(rows, byValue, Asc)))
	assert.Equal(t, []string{"a", "c", "b"}, names(Sort(rows, byValue, Desc)))
}

func TestSort_NoneKeepsInputOrder(t *testing.T) {
	rows := []row{{name: "z", value: 3}, {name: "a", value: 1}}
	assert.Equal(t, []string{"z", "a"}, names(Sort(rows, byValue, None)))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	rows := []row{{name: "b", value: 2}, {name: "a", value: 1}}
	_ = Sort(rows, byValue, Asc)
	assert.Equal(t, []string{"b", "a"}, names(rows))
}

func TestSort_StableTiesInBothDirections(t *testing.T) {
	rows := []row{
		{name: "x1", value: 1},
		{name: "y", value: 2},
		{name: "x2", value: 1},
		{name: "x3", value: 1},
	}

	asc := Sort(rows, byValue, Asc)
	assert.Equal(t, []string{"x1", "x2", "x3", "y"}, names(asc))

	// Reversing direction reverses the blocks, not the tie order inside them
	desc := Sort(rows, byValue, Desc)
	assert.Equal(t, []string{"y", "x1", "x2", "x3"}, names(desc))
}

func TestSort_Idempotent(t *testing.T) {
	rows := []row{{name: "c", value: 2}, {name: "a", value: 2}, {name: "b", value: 1}}
	once := Sort(rows, byValue, Desc)
	twice := Sort(once, byValue, Desc)
	assert.Equal(t, names(once), names(twice))
}

func TestSort_MissingSortsLastEitherDirection(t *testing.T) {
	rows := []row{
		{name: "none1"},
		{name: "d5", days: intPtr(5)},
		{name: "none2"},
		{name: "d1", days: intPtr(1)},
	}

	assert.Equal(t, []string{"d1", "d5", "none1", "none2"}, names(Sort(rows, byDays, Asc)))
	assert.Equal(t, []string{"d5", "d1", "none1", "none2"}, names(Sort(rows, byDays, Desc)))
}

func TestSort_TextIsLocaleAware(t *testing.T) {
	rows := []row{{name: "b"}, {name: "B"}, {name: "a"}, {name: "É"}, {name: "e"}}

	// Collation puts letters before case: a < b < B, e < É, unlike byte order.
	assert.Equal(t, []string{"a", "b", "B", "e", "É"}, names(Sort(rows, byName, Asc)))
}

func TestRegistry_UnknownFieldKeepsOrder(t *testing.T) {
	reg := NewRegistry(byName, byValue)
	rows := []row{{name: "b", value: 1}, {name: "a", value: 2}}

	assert.Equal(t, []string{"b", "a"}, names(reg.Sort(rows, "missing", Asc)))
	assert.Equal(t, []string{"a", "b"}, names(reg.Sort(rows, "name", Asc)))
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Asc, ParseDirection(" ASC "))
	assert.Equal(t, Desc, ParseDirection("desc"))
	assert.Equal(t, None, ParseDirection(""))
	assert.Equal(t, None, ParseDirection("sideways"))
}
