package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ParsedTag is the mapping configuration read from one struct field tag.
type ParsedTag struct {
	ColumnName string // explicit or derived column name
	Skip       bool   // db:"-"
	Primary    bool   // part of the primary key
	Auto       bool   // value generated by the database, never written
	Generator  string // client-side ID generator applied on insert
}

// TagParser parses and caches struct tags.
type TagParser struct {
	tagName        string
	namingStrategy NamingStrategy
	cache          map[string]*ParsedTag
	cacheMu        sync.RWMutex
}

// NewTagParser creates a parser reading tagName and deriving untagged
// column names with namingStrategy.
func NewTagParser(tagName string, namingStrategy NamingStrategy) *TagParser {
	return &TagParser{
		tagName:        tagName,
		namingStrategy: namingStrategy,
		cache:          make(map[string]*ParsedTag, 64),
	}
}

// ParseTag parses the tag of one field.
//
// Supported syntax:
//
//	`db:"COLUMN1"`                  // column name
//	`db:"column:COLUMN1"`           // explicit column name
//	`db:"ID;primary;auto"`          // column name plus flags
//	`db:"primary;generator:uuid"`   // derived column name, client-side ID
//	`db:"-"`                        // not mapped
func (p *TagParser) ParseTag(fieldName string, tag reflect.StructTag) (*ParsedTag, error) {
	tagValue, ok := tag.Lookup(p.tagName)
	if !ok || tagValue == "" {
		return &ParsedTag{ColumnName: p.namingStrategy.ColumnName(fieldName)}, nil
	}

	cacheKey := fieldName + ":" + tagValue
	p.cacheMu.RLock()
	if cached, exists := p.cache[cacheKey]; exists {
		p.cacheMu.RUnlock()
		return cached, nil
	}
	p.cacheMu.RUnlock()

	parsed, err := p.parseTagValue(fieldName, tagValue)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", fieldName, err)
	}

	p.cacheMu.Lock()
	p.cache[cacheKey] = parsed
	p.cacheMu.Unlock()

	return parsed, nil
}

func (p *TagParser) parseTagValue(fieldName, tagValue string) (*ParsedTag, error) {
	if tagValue == "-" {
		return &ParsedTag{Skip: true}, nil
	}

	parsed := &ParsedTag{}
	for i, option := range strings.Split(tagValue, ";") {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		if colonIdx := strings.IndexByte(option, ':'); colonIdx != -1 {
			key := strings.TrimSpace(option[:colonIdx])
			value := strings.TrimSpace(option[colonIdx+1:])
			if err := parseKeyValue(parsed, key, value); err != nil {
				return nil, err
			}
			continue
		}
		if parseFlag(parsed, option) {
			continue
		}
		// Only the leading option may name the column; later unknown
		// flags are ignored for forward compatibility.
		if i == 0 {
			parsed.ColumnName = option
		}
	}

	if parsed.ColumnName == "" {
		parsed.ColumnName = p.namingStrategy.ColumnName(fieldName)
	}
	if parsed.Auto && parsed.Generator != "" {
		return nil, fmt.Errorf("auto and generator:%s are mutually exclusive", parsed.Generator)
	}
	return parsed, nil
}

func parseFlag(tag *ParsedTag, flag string) bool {
	switch strings.ToLower(flag) {
	case "primary", "primary_key", "pk":
		tag.Primary = true
	case "auto", "auto_generate", "auto_increment", "identity":
		tag.Auto = true
	default:
		return false
	}
	return true
}

func parseKeyValue(tag *ParsedTag, key, value string) error {
	switch strings.ToLower(key) {
	case "column", "name":
		if value == "" {
			return fmt.Errorf("empty column name")
		}
		tag.ColumnName = value
	case "generator", "gen":
		if value == "" {
			return fmt.Errorf("empty generator name")
		}
		tag.Generator = value
	default:
		// Ignore unknown key:value pairs for extensibility
	}
	return nil
}

// CacheSize returns the number of cached parsed tags.
func (p *TagParser) CacheSize() int {
	p.cacheMu.RLock()
	defer p.cacheMu.RUnlock()
	return len(p.cache)
}
