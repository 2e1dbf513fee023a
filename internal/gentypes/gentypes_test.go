package gentypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NewTable_presetsSynthetics(t *testing.T) {
	// setup
	table := NewTable()

	// execute
	ci := table.PrimitiveSystem(ConstInt)
	cb := table.PrimitiveSystem(ConstBool)
	cs := table.PrimitiveSystem(ConstStr)

	// assert
	assert.True(t, ci.System)
	assert.True(t, cb.System)
	assert.True(t, cs.System)
	assert.NotEqual(t, ci.ID(), cb.ID())
	assert.NotEqual(t, cb.ID(), cs.ID())
}

func Test_Table_PrimitiveUser_interned(t *testing.T) {
	// setup
	table := NewTable()

	// execute
	a := table.PrimitiveUser("int")
	b := table.PrimitiveUser("int")
	c := table.PrimitiveUser("str")

	// assert
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}

func Test_Table_ClassForNonterminal_lazy(t *testing.T) {
	// setup
	table := NewTable()

	// execute
	a := table.ClassForNonterminal("Expr")
	b := table.ClassForNonterminal("Expr")

	// assert
	assert.True(t, Equal(a, b))
	assert.Equal(t, KindClass, a.Kind)
	assert.Equal(t, "Expr", a.NonterminalName)
}

func Test_AssignableCast(t *testing.T) {
	assert.True(t, AssignableCast(GeneralClass, GeneralClass))
	assert.False(t, AssignableCast(GeneralClass, GeneralPrimitive))
	assert.False(t, AssignableCast(GeneralVoid, GeneralClass))
}

func Test_Type_General(t *testing.T) {
	// setup
	table := NewTable()

	// assert
	assert.Equal(t, GeneralVoid, table.Void().General())
	assert.Equal(t, GeneralPrimitive, table.PrimitiveUser("int").General())
	assert.Equal(t, GeneralClass, table.ClassByName("Name").General())
	assert.Equal(t, GeneralArray, table.Array(table.PrimitiveUser("int").ID()).General())
}
