package odm

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldType is the expected BSON shape of a field.
type FieldType string

const (
	TypeString   = FieldType("string")
	TypeNumber   = FieldType("number")
	TypeBool     = FieldType("bool")
	TypeObjectID = FieldType("objectid")
	TypeDate     = FieldType("date")
	TypeObject   = FieldType("object")
	TypeArray    = FieldType("array")
)

// fields the mapper manages itself; never rejected by strict mode
var managedFields = map[string]bool{
	"_id":       true,
	"__v":       true,
	"createdAt": true,
	"updatedAt": true,
}

// Field declares the validators for one document path.
type Field struct {
	Type      FieldType
	Required  bool
	MinLength int
	MaxLength int
	Match     *regexp.Regexp
	Enum      []string
	Default   any
	Trim      bool
	Lowercase bool
	Unique    bool
	Hidden    bool // excluded from reads unless explicitly requested
	Fields    map[string]Field
	Messages  map[string]string // per-validator message overrides keyed by kind
}

// Schema describes a collection of documents.
type Schema struct {
	Name       string
	Collection string
	Strict     bool // unknown fields are rejected instead of dropped
	Timestamps bool
	Fields     map[string]Field
}

// applies defaults and string normalisation in place
func (s *Schema) normalize(doc bson.M, applyDefaults bool) {
	normalizeFields(s.Fields, doc, applyDefaults)
}

func normalizeFields(fields map[string]Field, doc bson.M, applyDefaults bool) {
	for name, f := range fields {
		v, ok := doc[name]

		if !ok || v == nil {
			if applyDefaults && f.Default != nil {
				doc[name] = f.Default
			}

			continue
		}

		if s, isString := v.(string); isString {
			if f.Trim {
				s = strings.TrimSpace(s)
			}

			if f.Lowercase {
				s = strings.ToLower(s)
			}

			doc[name] = s
		}

		if f.Type == TypeObject && len(f.Fields) > 0 {
			if nested, isMap := asMap(v); isMap {
				normalizeFields(f.Fields, nested, applyDefaults)
				doc[name] = nested
			}
		}
	}
}

// validates doc against the schema. When partial is set, only the fields
// present in doc are checked (update semantics).
func (s *Schema) validate(doc bson.M, partial bool) error {
	if s.Strict {
		if path, ok := unknownField(s.Fields, doc, ""); ok {
			return strictMode(s.Name, path)
		}
	}

	errs := map[string]*FieldError{}
	validateFields(s.Fields, doc, "", partial, errs)

	if len(errs) == 0 {
		return nil
	}

	return &Error{
		Kind:    KindValidation,
		Model:   s.Name,
		Message: s.Name + " validation failed",
		Fields:  errs,
	}
}

func unknownField(fields map[string]Field, doc bson.M, prefix string) (string, bool) {
	for key, v := range doc {
		if prefix == "" && managedFields[key] {
			continue
		}

		f, known := fields[key]
		if !known {
			return prefix + key, true
		}

		if f.Type == TypeObject && len(f.Fields) > 0 {
			if nested, ok := asMap(v); ok {
				if path, found := unknownField(f.Fields, nested, prefix+key+"."); found {
					return path, true
				}
			}
		}
	}

	return "", false
}

func validateFields(fields map[string]Field, doc bson.M, prefix string, partial bool, errs map[string]*FieldError) {
	for name, f := range fields {
		path := prefix + name
		v, present := doc[name]

		if !present || v == nil {
			if f.Required && !partial {
				errs[path] = f.fail(path, "required", v, "Path `"+path+"` is required.")
			}

			continue
		}

		if fe := f.check(path, v); fe != nil {
			errs[path] = fe
			continue
		}

		if f.Type == TypeObject && len(f.Fields) > 0 {
			nested, _ := asMap(v)
			validateFields(f.Fields, nested, path+".", partial, errs)
		}
	}
}

// runs the type and value validators of a single present value
func (f Field) check(path string, v any) *FieldError {
	switch f.Type {
	case TypeString, "":
		s, ok := v.(string)
		if !ok {
			return f.fail(path, "cast", v, fmt.Sprintf("Cast to string failed for value %q at path %q", fmt.Sprint(v), path))
		}

		n := utf8.RuneCountInString(s)

		if f.Required && n == 0 {
			return f.fail(path, "required", v, "Path `"+path+"` is required.")
		}

		if f.MinLength > 0 && n < f.MinLength {
			return f.fail(path, "minlength", v, fmt.Sprintf("Path `%s` is shorter than the minimum allowed length (%d).", path, f.MinLength))
		}

		if f.MaxLength > 0 && n > f.MaxLength {
			return f.fail(path, "maxlength", v, fmt.Sprintf("Path `%s` is longer than the maximum allowed length (%d).", path, f.MaxLength))
		}

		if f.Match != nil && !f.Match.MatchString(s) {
			return f.fail(path, "regexp", v, fmt.Sprintf("Path `%s` is invalid (%s).", path, s))
		}

		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			return f.fail(path, "enum", v, fmt.Sprintf("`%s` is not a valid enum value for path `%s`.", s, path))
		}
	case TypeNumber:
		switch v.(type) {
		case int, int32, int64, float32, float64:
		default:
			return f.fail(path, "cast", v, fmt.Sprintf("Cast to Number failed for value %q at path %q", fmt.Sprint(v), path))
		}
	case TypeBool:
		if _, ok := v.(bool); !ok {
			return f.fail(path, "cast", v, fmt.Sprintf("Cast to Boolean failed for value %q at path %q", fmt.Sprint(v), path))
		}
	case TypeObjectID:
		switch id := v.(type) {
		case primitive.ObjectID:
		case string:
			if !primitive.IsValidObjectID(id) {
				return f.fail(path, "cast", v, fmt.Sprintf("Cast to ObjectId failed for value %q at path %q", id, path))
			}
		default:
			return f.fail(path, "cast", v, fmt.Sprintf("Cast to ObjectId failed for value %q at path %q", fmt.Sprint(v), path))
		}
	case TypeDate:
		switch d := v.(type) {
		case time.Time, primitive.DateTime:
		case string:
			if _, err := time.Parse(time.RFC3339, d); err != nil {
				return f.fail(path, "cast", v, fmt.Sprintf("Cast to date failed for value %q at path %q", d, path))
			}
		default:
			return f.fail(path, "cast", v, fmt.Sprintf("Cast to date failed for value %q at path %q", fmt.Sprint(v), path))
		}
	case TypeObject:
		if _, ok := asMap(v); !ok {
			return f.fail(path, "cast", v, fmt.Sprintf("Cast to Embedded failed for value %q at path %q", fmt.Sprint(v), path))
		}
	case TypeArray:
		switch v.(type) {
		case bson.A, []any, []string:
		default:
			return f.fail(path, "cast", v, fmt.Sprintf("Cast to Array failed for value %q at path %q", fmt.Sprint(v), path))
		}
	}

	return nil
}

func (f Field) fail(path, kind string, value any, fallback string) *FieldError {
	msg := fallback
	if custom, ok := f.Messages[kind]; ok {
		msg = custom
	}

	return &FieldError{Path: path, Message: msg, Value: value, Kind: kind}
}

// returns the names of hidden top-level fields
func (s *Schema) hiddenFields() []string {
	var hidden []string

	for name, f := range s.Fields {
		if f.Hidden {
			hidden = append(hidden, name)
		}
	}

	return hidden
}

func asMap(v any) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]any:
		return bson.M(m), true
	case bson.D:
		return m.Map(), true //nolint:staticcheck // bson.D.Map is fine for small embedded docs
	default:
		return nil, false
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}

	return false
}
