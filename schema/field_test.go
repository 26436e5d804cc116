package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validateField(t *testing.T, declare func(*Object), data map[string]any) *Errors {
	t.Helper()
	root := NewObject()
	declare(root)
	errs := NewErrors()
	root.Validate(data, true, "", errs)
	return errs
}

func TestScalarValidation(t *testing.T) {
	tests := []struct {
		name     string
		declare  func(*Object)
		data     map[string]any
		wantCode string
		wantRef  string
	}{
		{
			name:    "boolean accepts true",
			declare: func(o *Object) { o.Boolean("flag") },
			data:    map[string]any{"flag": true},
		},
		{
			name:     "boolean rejects string",
			declare:  func(o *Object) { o.Boolean("flag") },
			data:     map[string]any{"flag": "true"},
			wantCode: CodeInvalidBoolean,
			wantRef:  "flag",
		},
		{
			name:    "integer accepts int",
			declare: func(o *Object) { o.Integer("count") },
			data:    map[string]any{"count": 42},
		},
		{
			name:    "integer accepts integral json number",
			declare: func(o *Object) { o.Integer("count") },
			data:    map[string]any{"count": json.Number("42")},
		},
		{
			name:     "integer rejects fractional",
			declare:  func(o *Object) { o.Integer("count") },
			data:     map[string]any{"count": 4.2},
			wantCode: CodeInvalidInteger,
			wantRef:  "count",
		},
		{
			name:    "float accepts float64",
			declare: func(o *Object) { o.Float("ratio") },
			data:    map[string]any{"ratio": 0.5},
		},
		{
			name:     "float rejects int",
			declare:  func(o *Object) { o.Float("ratio") },
			data:     map[string]any{"ratio": 5},
			wantCode: CodeInvalidFloat,
			wantRef:  "ratio",
		},
		{
			name:     "float rejects integer-shaped json number",
			declare:  func(o *Object) { o.Float("ratio") },
			data:     map[string]any{"ratio": json.Number("5")},
			wantCode: CodeInvalidFloat,
			wantRef:  "ratio",
		},
		{
			name:    "decimal accepts numeric string",
			declare: func(o *Object) { o.Decimal("price", 2) },
			data:    map[string]any{"price": "12.34"},
		},
		{
			name:     "decimal rejects junk",
			declare:  func(o *Object) { o.Decimal("price", 2) },
			data:     map[string]any{"price": "twelve"},
			wantCode: CodeInvalidDecimal,
			wantRef:  "price",
		},
		{
			name:    "string within length",
			declare: func(o *Object) { o.String("code", 4) },
			data:    map[string]any{"code": "abcd"},
		},
		{
			name:     "string over length",
			declare:  func(o *Object) { o.String("code", 4) },
			data:     map[string]any{"code": "abcde"},
			wantCode: CodeInvalidString,
			wantRef:  "code",
		},
		{
			name:    "text accepts any length",
			declare: func(o *Object) { o.Text("notes") },
			data:    map[string]any{"notes": "a very long unconstrained string value"},
		},
		{
			name:     "tags rejects non-string",
			declare:  func(o *Object) { o.Tags("tags") },
			data:     map[string]any{"tags": []any{"a"}},
			wantCode: CodeInvalidString,
			wantRef:  "tags",
		},
		{
			name:    "enum accepts member",
			declare: func(o *Object) { o.Enum("state", []string{"open", "closed"}) },
			data:    map[string]any{"state": "open"},
		},
		{
			name:     "enum rejects non-member",
			declare:  func(o *Object) { o.Enum("state", []string{"open", "closed"}) },
			data:     map[string]any{"state": "pending"},
			wantCode: CodeInvalidEnum,
			wantRef:  "state",
		},
		{
			name:    "date accepts calendar date",
			declare: func(o *Object) { o.Date("on") },
			data:    map[string]any{"on": "2024-02-29"},
		},
		{
			name:     "date rejects timestamp",
			declare:  func(o *Object) { o.Date("on") },
			data:     map[string]any{"on": "2024-02-29T12:00:00Z"},
			wantCode: CodeInvalidDate,
			wantRef:  "on",
		},
		{
			name:    "datetime accepts rfc3339",
			declare: func(o *Object) { o.DateTime("at") },
			data:    map[string]any{"at": "2024-02-29T12:00:00Z"},
		},
		{
			name:     "datetime rejects bare date",
			declare:  func(o *Object) { o.DateTime("at") },
			data:     map[string]any{"at": "2024-02-29"},
			wantCode: CodeInvalidDateTime,
			wantRef:  "at",
		},
		{
			name:    "uuid accepts canonical length",
			declare: func(o *Object) { o.UUID("id") },
			data:    map[string]any{"id": "123e4567-e89b-12d3-a456-426614174000"},
		},
		{
			name:     "uuid rejects short value",
			declare:  func(o *Object) { o.UUID("id") },
			data:     map[string]any{"id": "123e4567"},
			wantCode: CodeInvalidUUID,
			wantRef:  "id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateField(t, tt.declare, tt.data)
			if tt.wantCode == "" {
				assert.False(t, errs.HasErrors(), "unexpected errors: %v", errs.Errors())
				return
			}
			require.Equal(t, 1, errs.Count())
			assert.Equal(t, tt.wantCode, errs.Errors()[0].Code)
			assert.Equal(t, tt.wantRef, errs.Errors()[0].Reference)
		})
	}
}

func TestRequiredSuppressesTypeCheck(t *testing.T) {
	errs := validateField(t, func(o *Object) {
		o.Integer("age", Required())
	}, map[string]any{"age": nil})

	require.Equal(t, 1, errs.Count())
	assert.Equal(t, CodeRequiredFieldMissing, errs.Errors()[0].Code)
	assert.Equal(t, "age", errs.Errors()[0].Reference)
}

func TestAbsentOptionalFieldIsValid(t *testing.T) {
	errs := validateField(t, func(o *Object) {
		o.Integer("age")
	}, map[string]any{})

	assert.False(t, errs.HasErrors())
}

func TestExplicitNullOnOptionalFieldIsValid(t *testing.T) {
	errs := validateField(t, func(o *Object) {
		o.Integer("age")
	}, map[string]any{"age": nil})

	assert.False(t, errs.HasErrors())
}

func TestValidationAccumulatesAllProblems(t *testing.T) {
	errs := validateField(t, func(o *Object) {
		o.Integer("age")
		o.Boolean("flag")
		o.Text("name", Required())
	}, map[string]any{"age": "old", "flag": 3})

	require.Equal(t, 3, errs.Count())
	codes := []string{errs.Errors()[0].Code, errs.Errors()[1].Code, errs.Errors()[2].Code}
	assert.Equal(t, []string{CodeInvalidInteger, CodeInvalidBoolean, CodeRequiredFieldMissing}, codes)
}

func TestDefinitionErrors(t *testing.T) {
	tests := []struct {
		name    string
		declare func(*Object)
	}{
		{"string without length", func(o *Object) { o.String("code", 0) }},
		{"decimal without precision", func(o *Object) { o.Decimal("price", 0) }},
		{"enum without allow-list", func(o *Object) { o.Enum("state", nil) }},
		{"object without block", func(o *Object) { o.Object("nested", nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() {
				root := NewObject()
				tt.declare(root)
			})
		})
	}
}

func TestErrorsCollection(t *testing.T) {
	errs := NewErrors()
	assert.False(t, errs.HasErrors())
	assert.Equal(t, 200, errs.Status())

	errs.Add(CodeInvalidInteger, "Field `age` is an invalid integer", "age")
	assert.Equal(t, 422, errs.Status())

	errs.Add(CodeFault, "boom", "")
	assert.Equal(t, 500, errs.Status())

	other := NewErrors()
	other.Add(CodeNotFound, "gone", "")
	errs.Merge(other)
	assert.Equal(t, 3, errs.Count())
	assert.Equal(t, 500, errs.Status())

	errs.SetStatus(401)
	assert.Equal(t, 401, errs.Status())
}

func TestErrorsWireShape(t *testing.T) {
	errs := NewErrors()
	errs.Add(CodeRequiredFieldMissing, "Field `name` is required", "name")

	raw, err := json.Marshal(errs)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Errors", decoded["kind"])

	var roundTrip Errors
	require.NoError(t, json.Unmarshal(raw, &roundTrip))
	require.Equal(t, 1, roundTrip.Count())
	assert.Equal(t, CodeRequiredFieldMissing, roundTrip.Errors()[0].Code)
	assert.Equal(t, 422, roundTrip.Status())
}
