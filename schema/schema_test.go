package schema

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Customer struct {
	ID        int64  `db:"ID;primary;auto"`
	Code      string `db:"CODE;primary"`
	Name      string `db:"column:NAME"`
	Email     string
	Password  string `db:"-"`
	CreatedAt time.Time
	internal  int
}

type Invoice struct {
	Number string `db:"primary"`
	Total  float64
}

func (Invoice) TableName() string { return "INVOICES" }

type Audit struct {
	CreatedBy string
	UpdatedBy string `db:"UPDATER"`
}

type Order struct {
	ID string `db:"primary;generator:uuid"`
	Audit
	UpdatedBy string
}

type NoKey struct {
	A int
	B string
}

type BadGenerator struct {
	ID string `db:"primary;generator:snowflake"`
}

type DuplicateColumn struct {
	A int `db:"X"`
	B int `db:"X"`
}

type Origin struct {
	Code string `db:"CODE"`
}

type Source struct {
	Origin
	Region string
}

type Label struct {
	Code string `db:"CODE"`
}

type Shipment struct {
	ID int `db:"primary"`
	Source
	Label
}

type Sibling struct {
	Origin
	Label
}

type NumericGenerated struct {
	ID int64 `db:"primary;generator:uuid"`
}

type TypedGenerated struct {
	ID   ulid.ULID  `db:"primary;generator:ulid"`
	Ref  *uuid.UUID `db:"generator:uuid"`
	Slug string     `db:"generator:nanoid"`
}

func TestIntrospect_Defaults(t *testing.T) {
	meta, err := New().Introspect(reflect.TypeOf(Customer{}))
	require.NoError(t, err)

	assert.Equal(t, "Customer", meta.TableName)
	assert.False(t, meta.HasCustomTableName)
	assert.Equal(t, []string{"ID", "CODE", "NAME", "Email", "CreatedAt"}, meta.Columns())

	id, ok := meta.Field("ID")
	require.True(t, ok)
	assert.True(t, id.Primary)
	assert.True(t, id.Auto)
	assert.Equal(t, []int{0}, id.Index)

	_, ok = meta.Field("Password")
	assert.False(t, ok)

	require.Len(t, meta.PrimaryKeys, 2)
	assert.Equal(t, "ID", meta.PrimaryKeys[0].Column)
	assert.Equal(t, "CODE", meta.PrimaryKeys[1].Column)
}

func TestIntrospect_PointerAndCache(t *testing.T) {
	ctx := New()
	byValue, err := ctx.Introspect(reflect.TypeOf(Customer{}))
	require.NoError(t, err)
	byPtr, err := ctx.IntrospectValue(&Customer{})
	require.NoError(t, err)

	assert.Same(t, byValue, byPtr)
	assert.Equal(t, 1, ctx.CachedTypes())

	ctx.Purge()
	assert.Equal(t, 0, ctx.CachedTypes())
}

func TestIntrospect_TableNamer(t *testing.T) {
	meta, err := New().Introspect(reflect.TypeOf(Invoice{}))
	require.NoError(t, err)
	assert.Equal(t, "INVOICES", meta.TableName)
	assert.True(t, meta.HasCustomTableName)

	name, err := TableName(reflect.TypeOf(&Invoice{}))
	require.NoError(t, err)
	assert.Equal(t, "INVOICES", name)
}

func TestIntrospect_NamingStrategy(t *testing.T) {
	meta, err := New(WithNamingStrategy(SnakeCaseStrategy())).Introspect(reflect.TypeOf(Customer{}))
	require.NoError(t, err)
	assert.Equal(t, "customers", meta.TableName)
	assert.Equal(t, []string{"ID", "CODE", "NAME", "email", "created_at"}, meta.Columns())
}

func TestIntrospect_Embedded(t *testing.T) {
	meta, err := New().Introspect(reflect.TypeOf(Order{}))
	require.NoError(t, err)

	assert.Equal(t, []string{"ID", "UpdatedBy", "CreatedBy", "UPDATER"}, meta.Columns())

	f, ok := meta.Field("CreatedBy")
	require.True(t, ok)
	assert.Equal(t, []int{1, 0}, f.Index)

	o := Order{Audit: Audit{CreatedBy: "alice"}}
	assert.Equal(t, "alice", f.Value(reflect.ValueOf(o)))

	gen, ok := meta.Field("ID")
	require.True(t, ok)
	require.NotNil(t, gen.Generator)
	assert.IsType(t, UUIDGenerator{}, gen.Generator)
}

func TestIntrospect_ShallowColumnShadowsDeeper(t *testing.T) {
	meta, err := New().Introspect(reflect.TypeOf(Shipment{}))
	require.NoError(t, err)

	assert.Equal(t, []string{"ID", "Region", "CODE"}, meta.Columns())
	f, ok := meta.Field("CODE")
	require.True(t, ok)
	assert.Equal(t, []int{2, 0}, f.Index)

	s := Shipment{Source: Source{Origin: Origin{Code: "deep"}}, Label: Label{Code: "shallow"}}
	assert.Equal(t, "shallow", f.Value(reflect.ValueOf(s)))

	_, err = New().Introspect(reflect.TypeOf(Sibling{}))
	assert.ErrorContains(t, err, `duplicate column "CODE"`)
}

func TestIntrospect_GeneratorFieldTypes(t *testing.T) {
	_, err := New().Introspect(reflect.TypeOf(NumericGenerated{}))
	assert.ErrorIs(t, err, ErrGeneratorType)

	meta, err := New().Introspect(reflect.TypeOf(TypedGenerated{}))
	require.NoError(t, err)

	var v TypedGenerated
	rv := reflect.ValueOf(&v).Elem()
	for _, f := range meta.Fields {
		id, err := f.Generator.Generate()
		require.NoError(t, err)
		require.NoError(t, f.Set(rv, id), f.Name)
	}
	assert.NotZero(t, v.ID)
	require.NotNil(t, v.Ref)
	assert.NotEqual(t, uuid.Nil, *v.Ref)
	assert.Len(t, v.Slug, 21)
}

func TestIntrospect_NoPrimaryKey(t *testing.T) {
	meta, err := New().Introspect(reflect.TypeOf(NoKey{}))
	require.NoError(t, err)
	assert.Empty(t, meta.PrimaryKeys)
}

func TestIntrospect_Errors(t *testing.T) {
	ctx := New()

	_, err := ctx.Introspect(reflect.TypeOf(42))
	assert.ErrorIs(t, err, ErrInvalidModel)

	_, err = ctx.Introspect(nil)
	assert.ErrorIs(t, err, ErrInvalidModel)

	_, err = ctx.Introspect(reflect.TypeOf(BadGenerator{}))
	assert.ErrorIs(t, err, ErrUnknownGenerator)

	_, err = ctx.Introspect(reflect.TypeOf(DuplicateColumn{}))
	assert.Error(t, err)
}

func TestIntrospect_CustomGeneratorRegistry(t *testing.T) {
	reg := NewGeneratorRegistry()
	reg.Register("snowflake", NewNanoIDGenerator(12, "0123456789"))

	meta, err := New(WithGeneratorRegistry(reg)).Introspect(reflect.TypeOf(BadGenerator{}))
	require.NoError(t, err)
	assert.IsType(t, &NanoIDGenerator{}, meta.PrimaryKeys[0].Generator)
}

func TestIntrospect_Eviction(t *testing.T) {
	var evicted []reflect.Type
	ctx := New(WithCacheSize(1), WithEvictionCallback(func(t reflect.Type, _ *EntityMeta) {
		evicted = append(evicted, t)
	}))

	_, err := ctx.Introspect(reflect.TypeOf(Customer{}))
	require.NoError(t, err)
	_, err = ctx.Introspect(reflect.TypeOf(Invoice{}))
	require.NoError(t, err)

	assert.Equal(t, []reflect.Type{reflect.TypeOf(Customer{})}, evicted)
	assert.Equal(t, 1, ctx.CachedTypes())
}

func TestIntrospect_Concurrent(t *testing.T) {
	ctx := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			meta, err := ctx.Introspect(reflect.TypeOf(Customer{}))
			assert.NoError(t, err)
			assert.Equal(t, "Customer", meta.TableName)
		}()
	}
	wg.Wait()
}

func TestFieldMeta_Set(t *testing.T) {
	meta, err := New().Introspect(reflect.TypeOf(Customer{}))
	require.NoError(t, err)

	var c Customer
	v := reflect.ValueOf(&c).Elem()

	f, _ := meta.Field("ID")
	require.NoError(t, f.Set(v, int32(7)))
	assert.Equal(t, int64(7), c.ID)
	assert.False(t, f.IsZero(v))

	f, _ = meta.Field("NAME")
	require.NoError(t, f.Set(v, []byte("Ann")))
	assert.Equal(t, "Ann", c.Name)

	require.NoError(t, f.Set(v, nil))
	assert.Equal(t, "", c.Name)
	assert.True(t, f.IsZero(v))

	f, _ = meta.Field("CreatedAt")
	err = f.Set(v, true)
	assert.ErrorIs(t, err, ErrConvert)
	assert.Contains(t, err.Error(), "CreatedAt")
}
