package schema

import (
	"crypto/rand"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	// ErrUnknownGenerator is returned for a generator tag naming no
	// registered generator.
	ErrUnknownGenerator = errors.New("schema: unknown generator")
	// ErrGeneratorType is returned when a generator's identifiers cannot be
	// stored in the tagged field.
	ErrGeneratorType = errors.New("schema: generator cannot fill field")
)

// IDGenerator produces client-side identifiers for fields tagged with
// generator:<name>. Implementations must be safe for concurrent use.
type IDGenerator interface {
	// Generate returns a new identifier.
	Generate() (any, error)
	// Accepts reports whether generated identifiers can be assigned to a
	// field of type t.
	Accepts(t reflect.Type) bool
}

var (
	uuidType = reflect.TypeOf(uuid.UUID{})
	ulidType = reflect.TypeOf(ulid.ULID{})
	textType = reflect.TypeOf("")
)

// storable reports whether Assign can store values of type generated in a
// field of type field: same or convertible representation, or any string
// field, since identifiers render as text.
func storable(field, generated reflect.Type) bool {
	for field.Kind() == reflect.Ptr {
		field = field.Elem()
	}
	switch {
	case generated.AssignableTo(field):
		return true
	case field.Kind() == reflect.String:
		return true
	default:
		return field.Kind() == generated.Kind() && generated.ConvertibleTo(field)
	}
}

// UUIDGenerator fills fields with random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) Generate() (any, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("uuid: %w", err)
	}
	return id, nil
}

// Accepts uuid.UUID, [16]byte and string fields.
func (UUIDGenerator) Accepts(t reflect.Type) bool { return storable(t, uuidType) }

// ULIDGenerator fills fields with ULIDs that increase monotonically within
// a millisecond.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULIDGenerator) Generate() (any, error) {
	g.mu.Lock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	g.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("ulid: %w", err)
	}
	return id, nil
}

// Accepts ulid.ULID, [16]byte and string fields.
func (g *ULIDGenerator) Accepts(t reflect.Type) bool { return storable(t, ulidType) }

const nanoIDAlphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NanoIDGenerator fills string fields with random identifiers of a fixed
// length over an alphabet of at most 256 symbols.
type NanoIDGenerator struct {
	size     int
	alphabet string
}

// NewNanoIDGenerator returns a generator of size-symbol identifiers. Zero
// values select 21 symbols of the URL-safe alphabet.
func NewNanoIDGenerator(size int, alphabet string) *NanoIDGenerator {
	if size <= 0 {
		size = 21
	}
	if alphabet == "" {
		alphabet = nanoIDAlphabet
	}
	return &NanoIDGenerator{size: size, alphabet: alphabet}
}

func (g *NanoIDGenerator) Generate() (any, error) {
	buf := make([]byte, g.size)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("nanoid: %w", err)
	}
	for i, b := range buf {
		buf[i] = g.alphabet[int(b)%len(g.alphabet)]
	}
	return string(buf), nil
}

// Accepts string fields.
func (g *NanoIDGenerator) Accepts(t reflect.Type) bool { return storable(t, textType) }

// GeneratorRegistry maps generator tag values to generators.
type GeneratorRegistry struct {
	mu         sync.RWMutex
	generators map[string]IDGenerator
}

var defaultRegistry = NewGeneratorRegistry()

// NewGeneratorRegistry returns a registry holding the uuid, ulid and
// nanoid generators.
func NewGeneratorRegistry() *GeneratorRegistry {
	return &GeneratorRegistry{generators: map[string]IDGenerator{
		"uuid":   UUIDGenerator{},
		"ulid":   NewULIDGenerator(),
		"nanoid": NewNanoIDGenerator(0, ""),
	}}
}

func (r *GeneratorRegistry) Register(name string, generator IDGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[name] = generator
}

func (r *GeneratorRegistry) Get(name string) (IDGenerator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.generators[name]
	return gen, ok
}

// RegisterGenerator adds a generator to the default registry. Register
// before the first Introspect of a type that uses it.
func RegisterGenerator(name string, generator IDGenerator) {
	defaultRegistry.Register(name, generator)
}

// generatorFor resolves the generator named by sf's tag and checks it can
// fill sf.
func (c *Context) generatorFor(sf reflect.StructField, name string) (IDGenerator, error) {
	gen, ok := c.generators.Get(name)
	if !ok {
		return nil, fmt.Errorf("field %s: %w: %s", sf.Name, ErrUnknownGenerator, name)
	}
	if !gen.Accepts(sf.Type) {
		return nil, fmt.Errorf("field %s: %w: %s into %s", sf.Name, ErrGeneratorType, name, sf.Type)
	}
	return gen, nil
}
