package schema

import (
	"fmt"
	"reflect"
)

var tableNamerType = reflect.TypeOf((*TableNamer)(nil)).Elem()

// Introspect returns the metadata of the struct type t (or *t) using the
// default context.
func Introspect(t reflect.Type) (*EntityMeta, error) {
	return defaultContext.Introspect(t)
}

// TableName returns the table mapped to t using the default context.
func TableName(t reflect.Type) (string, error) {
	meta, err := defaultContext.Introspect(t)
	if err != nil {
		return "", err
	}
	return meta.TableName, nil
}

// Introspect returns the metadata of the struct type t (or *t), building
// and caching it on first use.
func (c *Context) Introspect(t reflect.Type) (*EntityMeta, error) {
	if t == nil {
		return nil, ErrInvalidModel
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidModel, t.Kind())
	}
	if meta, ok := c.entityCache.Get(t); ok {
		return meta, nil
	}
	meta, err := c.buildMeta(t)
	if err != nil {
		return nil, err
	}
	c.entityCache.Add(t, meta)
	return meta, nil
}

// IntrospectValue is Introspect for the dynamic type of v.
func (c *Context) IntrospectValue(v any) (*EntityMeta, error) {
	return c.Introspect(reflect.TypeOf(v))
}

func (c *Context) buildMeta(t reflect.Type) (*EntityMeta, error) {
	meta := &EntityMeta{
		Type:      t,
		Name:      t.Name(),
		FieldMap:  make(map[string]*FieldMeta, t.NumField()),
		ColumnMap: make(map[string]*FieldMeta, t.NumField()),
	}

	if reflect.PointerTo(t).Implements(tableNamerType) {
		meta.TableName = reflect.New(t).Interface().(TableNamer).TableName()
		meta.HasCustomTableName = true
	} else {
		meta.TableName = c.namingStrategy.TableName(t.Name())
	}

	if err := c.collectFields(meta, t); err != nil {
		return nil, fmt.Errorf("schema %s: %w", t.Name(), err)
	}

	for _, f := range meta.Fields {
		if f.Primary {
			meta.PrimaryKeys = append(meta.PrimaryKeys, f)
		}
	}
	return meta, nil
}

// embeddedStruct is an untagged embedded struct awaiting collection.
type embeddedStruct struct {
	typ   reflect.Type
	index []int
}

// collectFields walks t's exported fields one embedding depth at a time,
// flattening untagged embedded structs. A column declared at a shallower
// depth shadows deeper ones, matching Go's promotion rules; two columns with
// the same name at the same depth are an error.
func (c *Context) collectFields(meta *EntityMeta, t reflect.Type) error {
	depth := make(map[string]int, t.NumField())
	level := []embeddedStruct{{typ: t}}

	for d := 0; len(level) > 0; d++ {
		var next []embeddedStruct
		for _, s := range level {
			for i := 0; i < s.typ.NumField(); i++ {
				sf := s.typ.Field(i)
				index := append(append([]int(nil), s.index...), i)

				if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
					if _, tagged := sf.Tag.Lookup(c.tagName); !tagged {
						next = append(next, embeddedStruct{typ: sf.Type, index: index})
						continue
					}
				}
				if !sf.IsExported() {
					continue
				}

				tag, err := c.tags.ParseTag(sf.Name, sf.Tag)
				if err != nil {
					return err
				}
				if tag.Skip {
					continue
				}

				if seen, ok := depth[tag.ColumnName]; ok {
					if seen == d {
						return fmt.Errorf("duplicate column %q on field %s", tag.ColumnName, sf.Name)
					}
					continue
				}

				field := &FieldMeta{
					Name:    sf.Name,
					Column:  tag.ColumnName,
					Type:    sf.Type,
					Index:   index,
					Tag:     tag,
					Primary: tag.Primary,
					Auto:    tag.Auto,
				}
				if tag.Generator != "" {
					if field.Generator, err = c.generatorFor(sf, tag.Generator); err != nil {
						return err
					}
				}

				depth[field.Column] = d
				meta.Fields = append(meta.Fields, field)
				if _, exists := meta.FieldMap[field.Name]; !exists {
					meta.FieldMap[field.Name] = field
				}
				meta.ColumnMap[field.Column] = field
			}
		}
		level = next
	}
	return nil
}
