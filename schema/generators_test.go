package schema

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerators(t *testing.T) {
	reg := NewGeneratorRegistry()

	g, ok := reg.Get("uuid")
	require.True(t, ok)
	v, err := g.Generate()
	require.NoError(t, err)
	assert.IsType(t, uuid.UUID{}, v)

	g, ok = reg.Get("ulid")
	require.True(t, ok)
	a, err := g.Generate()
	require.NoError(t, err)
	b, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, -1, a.(ulid.ULID).Compare(b.(ulid.ULID)))

	g, ok = reg.Get("nanoid")
	require.True(t, ok)
	v, err = g.Generate()
	require.NoError(t, err)
	assert.Len(t, v, 21)

	_, ok = reg.Get("snowflake")
	assert.False(t, ok)
}

func TestNanoIDGenerator_Alphabet(t *testing.T) {
	v, err := NewNanoIDGenerator(8, "ab").Generate()
	require.NoError(t, err)
	assert.Regexp(t, `^[ab]{8}$`, v)
}

func TestGenerators_Accepts(t *testing.T) {
	var (
		str   = reflect.TypeOf("")
		id    = reflect.TypeOf(uuid.UUID{})
		raw   = reflect.TypeOf([16]byte{})
		ptr   = reflect.TypeOf((*uuid.UUID)(nil))
		whole = reflect.TypeOf(int64(0))
		iface = reflect.TypeOf((*any)(nil)).Elem()
	)

	u := UUIDGenerator{}
	for _, typ := range []reflect.Type{str, id, raw, ptr, iface} {
		assert.True(t, u.Accepts(typ), typ)
	}
	assert.False(t, u.Accepts(whole))

	l := NewULIDGenerator()
	assert.True(t, l.Accepts(reflect.TypeOf(ulid.ULID{})))
	assert.True(t, l.Accepts(str))
	assert.False(t, l.Accepts(whole))

	n := NewNanoIDGenerator(0, "")
	assert.True(t, n.Accepts(str))
	assert.False(t, n.Accepts(id))
	assert.False(t, n.Accepts(whole))
}
