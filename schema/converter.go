package schema

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// ErrConvert is returned when a result value cannot be stored in a field.
var ErrConvert = errors.New("schema: unsupported conversion")

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
)

// Assign stores src in the settable value dst. NULL (nil) becomes the zero
// value; pointer fields are allocated; sql.Scanner fields scan src
// themselves. Text and numeric representations are converted the way
// drivers commonly return them (MySQL text protocol, SQLite integers for
// booleans).
func Assign(dst reflect.Value, src any) error {
	if src != nil && reflect.TypeOf(src).AssignableTo(dst.Type()) {
		dst.Set(reflect.ValueOf(src))
		return nil
	}
	if dst.CanAddr() && dst.Addr().Type().Implements(scannerType) {
		return dst.Addr().Interface().(sql.Scanner).Scan(src)
	}

	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	if dst.Kind() == reflect.Ptr {
		elem := reflect.New(dst.Type().Elem())
		if err := Assign(elem.Elem(), src); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	sv := reflect.ValueOf(src)
	if sv.Kind() == reflect.Ptr {
		if sv.IsNil() {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		return Assign(dst, sv.Elem().Interface())
	}

	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		switch s := src.(type) {
		case []byte:
			dst.SetString(string(s))
		case fmt.Stringer:
			dst.SetString(s.String())
		default:
			if sv.Kind() == reflect.String {
				dst.SetString(sv.String())
				return nil
			}
			if !isNumber(sv.Kind()) && sv.Kind() != reflect.Bool {
				return convertError(src, dst)
			}
			dst.SetString(fmt.Sprint(src))
		}
		return nil

	case reflect.Bool:
		switch {
		case isNumber(sv.Kind()):
			dst.SetBool(!sv.IsZero())
			return nil
		case isText(sv):
			b, err := strconv.ParseBool(text(sv))
			if err != nil {
				return fmt.Errorf("%w: %v", ErrConvert, err)
			}
			dst.SetBool(b)
			return nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if isText(sv) {
			n, err := strconv.ParseInt(text(sv), 10, dst.Type().Bits())
			if err != nil {
				return fmt.Errorf("%w: %v", ErrConvert, err)
			}
			dst.SetInt(n)
			return nil
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if isText(sv) {
			n, err := strconv.ParseUint(text(sv), 10, dst.Type().Bits())
			if err != nil {
				return fmt.Errorf("%w: %v", ErrConvert, err)
			}
			dst.SetUint(n)
			return nil
		}

	case reflect.Float32, reflect.Float64:
		if isText(sv) {
			n, err := strconv.ParseFloat(text(sv), dst.Type().Bits())
			if err != nil {
				return fmt.Errorf("%w: %v", ErrConvert, err)
			}
			dst.SetFloat(n)
			return nil
		}

	case reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 && sv.Kind() == reflect.String {
			dst.SetBytes([]byte(sv.String()))
			return nil
		}

	case reflect.Struct:
		if dst.Type() == timeType && isText(sv) {
			t, err := parseTime(text(sv))
			if err != nil {
				return err
			}
			dst.Set(reflect.ValueOf(t))
			return nil
		}
	}

	if isNumber(sv.Kind()) && isNumber(dst.Kind()) {
		return setNumber(dst, sv)
	}
	if sv.Type().ConvertibleTo(dst.Type()) && sv.Kind() == dst.Kind() {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}
	return convertError(src, dst)
}

// setNumber stores the numeric sv in dst, failing when the value does not
// fit or would lose its fractional part.
func setNumber(dst, sv reflect.Value) error {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		switch {
		case isInt(sv.Kind()):
			n = sv.Int()
		case isUint(sv.Kind()):
			if sv.Uint() > math.MaxInt64 {
				return overflowError(sv, dst)
			}
			n = int64(sv.Uint())
		default:
			f := sv.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return overflowError(sv, dst)
			}
			n = int64(f)
		}
		if dst.OverflowInt(n) {
			return overflowError(sv, dst)
		}
		dst.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		switch {
		case isInt(sv.Kind()):
			if sv.Int() < 0 {
				return overflowError(sv, dst)
			}
			n = uint64(sv.Int())
		case isUint(sv.Kind()):
			n = sv.Uint()
		default:
			f := sv.Float()
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
				return overflowError(sv, dst)
			}
			n = uint64(f)
		}
		if dst.OverflowUint(n) {
			return overflowError(sv, dst)
		}
		dst.SetUint(n)

	default:
		var f float64
		switch {
		case isInt(sv.Kind()):
			f = float64(sv.Int())
		case isUint(sv.Kind()):
			f = float64(sv.Uint())
		default:
			f = sv.Float()
		}
		if !math.IsInf(f, 0) && !math.IsNaN(f) && dst.OverflowFloat(f) {
			return overflowError(sv, dst)
		}
		dst.SetFloat(f)
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q as time", ErrConvert, s)
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isText(v reflect.Value) bool {
	if v.Kind() == reflect.String {
		return true
	}
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}

func text(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return string(v.Bytes())
}

func overflowError(sv, dst reflect.Value) error {
	return fmt.Errorf("%w: %v does not fit %s", ErrConvert, sv.Interface(), dst.Type())
}

func convertError(src any, dst reflect.Value) error {
	return fmt.Errorf("%w: %T into %s", ErrConvert, src, dst.Type())
}
