package schema

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// UUIDLength is the canonical string length of a rendered UUID.
const UUIDLength = 36

// booleanField validates exact true/false values.
type booleanField struct {
	baseField
}

func (f *booleanField) Validate(value any, present bool, path Path, errs *Errors) {
	if f.checkRequired(value, present, path, errs) {
		return
	}
	if _, ok := value.(bool); !ok {
		addInvalid(errs, CodeInvalidBoolean, "boolean", path)
	}
}

func (f *booleanField) Render(value any) any { return value }
func (f *booleanField) Walk(fn func(Field))  { fn(f) }

// integerField validates whole numbers. JSON decoding in Go represents all
// numbers as float64 (or json.Number when so configured), so integral values
// of either representation are accepted; fractional values are not.
type integerField struct {
	baseField
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return v == math.Trunc(v)
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}

func (f *integerField) Validate(value any, present bool, path Path, errs *Errors) {
	if f.checkRequired(value, present, path, errs) {
		return
	}
	if !isInteger(value) {
		addInvalid(errs, CodeInvalidInteger, "integer", path)
	}
}

func (f *integerField) Render(value any) any { return value }
func (f *integerField) Walk(fn func(Field))  { fn(f) }

// floatField validates floating-point numbers. Integer-typed input is
// rejected; there is no implicit numeric coercion.
type floatField struct {
	baseField
}

func (f *floatField) Validate(value any, present bool, path Path, errs *Errors) {
	if f.checkRequired(value, present, path, errs) {
		return
	}
	switch v := value.(type) {
	case float32, float64:
		return
	case json.Number:
		// A number literal with no fractional or exponent part is an
		// integer, not a float.
		if _, err := v.Int64(); err != nil {
			if _, ferr := v.Float64(); ferr == nil {
				return
			}
		}
	}
	addInvalid(errs, CodeInvalidFloat, "float", path)
}

func (f *floatField) Render(value any) any { return value }
func (f *floatField) Walk(fn func(Field))  { fn(f) }

// decimalField validates arbitrary-precision decimal values. A precision must
// be declared at definition time.
type decimalField struct {
	baseField
	precision int
}

func (f *decimalField) Validate(value any, present bool, path Path, errs *Errors) {
	if f.checkRequired(value, present, path, errs) {
		return
	}
	switch v := value.(type) {
	case decimal.Decimal, *decimal.Decimal:
		return
	case string:
		if _, err := decimal.NewFromString(v); err == nil {
			return
		}
	case json.Number:
		if _, err := decimal.NewFromString(v.String()); err == nil {
			return
		}
	}
	addInvalid(errs, CodeInvalidDecimal, "decimal", path)
}

func (f *decimalField) Render(value any) any { return value }
func (f *decimalField) Walk(fn func(Field))  { fn(f) }

// Precision returns the declared precision of the decimal field.
func (f *decimalField) Precision() int { return f.precision }

// stringField validates length-constrained strings. A maximum length must be
// declared at definition time.
type stringField struct {
	baseField
	length int
}

func (f *stringField) Validate(value any, present bool, path Path, errs *Errors) {
	if f.checkRequired(value, present, path, errs) {
		return
	}
	s, ok := value.(string)
	if !ok || len(s) > f.length {
		addInvalid(errs, CodeInvalidString, "string", path)
	}
}

func (f *stringField) Render(value any) any { return value }
func (f *stringField) Walk(fn func(Field))  { fn(f) }

// textField validates unconstrained-length strings.
type textField struct {
	baseField
}

func (f *textField) Validate(value any, present bool, path Path, errs *Errors) {
	if f.checkRequired(value, present, path, errs) {
		return
	}
	if _, ok := value.(string); !ok {
		addInvalid(errs, CodeInvalidString, "string", path)
	}
}

func (f *textField) Render(value any) any { return value }
func (f *textField) Walk(fn func(Field))  { fn(f) }

// tagsField validates a tag list expressed as an unconstrained string.
type tagsField struct {
	baseField
}

func (f *tagsField) Validate(value any, present bool, path Path, errs *Errors) {
	if f.checkRequired(value, present, path, errs) {
		return
	}
	if _, ok := value.(string); !ok {
		addInvalid(errs, CodeInvalidString, "string", path)
	}
}

func (f *tagsField) Render(value any) any { return value }
func (f *tagsField) Walk(fn func(Field))  { fn(f) }

// enumField validates membership of a declared allow-list. Values are
// normalized to strings at definition time.
type enumField struct {
	baseField
	from []string
}

func (f *enumField) Validate(value any, present bool, path Path, errs *Errors) {
	if f.checkRequired(value, present, path, errs) {
		return
	}
	if s, ok := value.(string); ok {
		for _, allowed := range f.from {
			if s == allowed {
				return
			}
		}
	}
	addInvalid(errs, CodeInvalidEnum, "enum", path)
}

func (f *enumField) Render(value any) any { return value }
func (f *enumField) Walk(fn func(Field))  { fn(f) }

// dateField validates ISO-8601 calendar dates (YYYY-MM-DD).
type dateField struct {
	baseField
}

func (f *dateField) Validate(value any, present bool, path Path, errs *Errors) {
	if f.checkRequired(value, present, path, errs) {
		return
	}
	s, ok := value.(string)
	if !ok {
		addInvalid(errs, CodeInvalidDate, "date", path)
		return
	}
	if _, err := time.Parse("2006-01-02", s); err != nil || len(s) != 10 {
		addInvalid(errs, CodeInvalidDate, "date", path)
	}
}

func (f *dateField) Render(value any) any { return value }
func (f *dateField) Walk(fn func(Field))  { fn(f) }

// dateTimeField validates full RFC3339 timestamps.
type dateTimeField struct {
	baseField
}

func (f *dateTimeField) Validate(value any, present bool, path Path, errs *Errors) {
	if f.checkRequired(value, present, path, errs) {
		return
	}
	s, ok := value.(string)
	if !ok {
		addInvalid(errs, CodeInvalidDateTime, "datetime", path)
		return
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		addInvalid(errs, CodeInvalidDateTime, "datetime", path)
	}
}

func (f *dateTimeField) Render(value any) any { return value }
func (f *dateTimeField) Walk(fn func(Field))  { fn(f) }

// uuidField validates UUID strings by their canonical length. The optional
// resource association is declaration metadata only; no live lookup against
// that resource happens here.
type uuidField struct {
	baseField
	resource string
}

func (f *uuidField) Validate(value any, present bool, path Path, errs *Errors) {
	if f.checkRequired(value, present, path, errs) {
		return
	}
	s, ok := value.(string)
	if !ok || len(s) != UUIDLength {
		addInvalid(errs, CodeInvalidUUID, "UUID", path)
	}
}

func (f *uuidField) Render(value any) any { return value }
func (f *uuidField) Walk(fn func(Field))  { fn(f) }

// Resource returns the name of the resource this UUID is declared to
// reference, or the empty string.
func (f *uuidField) Resource() string { return f.resource }
