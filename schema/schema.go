package schema

import (
	"errors"
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrInvalidModel is returned when a value that is not a struct (or a
// pointer to one) is introspected.
var ErrInvalidModel = errors.New("schema: model must be a struct or pointer to struct")

// DefaultCacheSize is the number of struct types whose metadata is kept.
const DefaultCacheSize = 256

// Context introspects struct types into EntityMeta and caches the result.
// A Context is safe for concurrent use.
type Context struct {
	namingStrategy NamingStrategy
	tagName        string
	generators     *GeneratorRegistry
	tags           *TagParser

	entityCache *lru.Cache[reflect.Type, *EntityMeta]
	cacheSize   int
	onEvict     func(reflect.Type, *EntityMeta)
}

type Option func(*Context)

// WithNamingStrategy sets how untagged fields and types are named.
func WithNamingStrategy(strategy NamingStrategy) Option {
	return func(ctx *Context) { ctx.namingStrategy = strategy }
}

// WithTagName sets the struct tag key read for column mapping.
func WithTagName(tagName string) Option {
	return func(ctx *Context) { ctx.tagName = tagName }
}

// WithCacheSize sets the LRU cache size for struct metadata.
func WithCacheSize(size int) Option {
	return func(ctx *Context) { ctx.cacheSize = size }
}

// WithGeneratorRegistry resolves generator:<name> tags against r.
func WithGeneratorRegistry(r *GeneratorRegistry) Option {
	return func(ctx *Context) { ctx.generators = r }
}

// WithEvictionCallback sets a callback invoked when metadata leaves the cache.
func WithEvictionCallback(onEvict func(reflect.Type, *EntityMeta)) Option {
	return func(ctx *Context) { ctx.onEvict = onEvict }
}

// New creates a schema context. Without options, fields map to columns of
// the same name, types to tables of the same name, and the db tag is read.
func New(options ...Option) *Context {
	ctx := &Context{
		namingStrategy: AsIsStrategy(),
		tagName:        "db",
		generators:     defaultRegistry,
		cacheSize:      DefaultCacheSize,
	}
	for _, opt := range options {
		opt(ctx)
	}
	if ctx.cacheSize <= 0 {
		ctx.cacheSize = DefaultCacheSize
	}

	ctx.tags = NewTagParser(ctx.tagName, ctx.namingStrategy)

	var err error
	if ctx.onEvict != nil {
		ctx.entityCache, err = lru.NewWithEvict[reflect.Type, *EntityMeta](ctx.cacheSize, ctx.onEvict)
	} else {
		ctx.entityCache, err = lru.New[reflect.Type, *EntityMeta](ctx.cacheSize)
	}
	if err != nil {
		// lru only fails for a non-positive size, which is excluded above.
		panic(err)
	}
	return ctx
}

// NamingStrategy returns the context's naming strategy.
func (c *Context) NamingStrategy() NamingStrategy { return c.namingStrategy }

// TagName returns the struct tag key the context reads.
func (c *Context) TagName() string { return c.tagName }

// CachedTypes returns the number of struct types currently cached.
func (c *Context) CachedTypes() int { return c.entityCache.Len() }

// Purge drops all cached metadata.
func (c *Context) Purge() { c.entityCache.Purge() }

var defaultContext = New()

// Default returns the package-level context used by Introspect and TableName.
func Default() *Context { return defaultContext }
