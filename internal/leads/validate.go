package leads

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so errors line up with the payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("nonul", noNullChars); err != nil {
		panic(err)
	}
	return v
}

// noNullChars rejects U+0000, which Postgres text columns cannot store.
func noNullChars(fl validator.FieldLevel) bool {
	return !strings.ContainsRune(fl.Field().String(), 0)
}

// Parse decodes and validates a raw request body. It returns either a Lead
// or a *ValidationError naming every offending field.
func Parse(body []byte) (*Lead, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		verr := newValidationError()
		verr.FormErrors = append(verr.FormErrors, "Expected a JSON object")
		return nil, verr
	}

	var sub Submission
	verr := newValidationError()

	// Decode field by field so one wrong type does not hide the others.
	for _, f := range sub.targets() {
		data, ok := raw[f.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(data, f.target); err != nil {
			verr.addField(f.name, typeErrorMessage(err))
		}
	}
	if data, ok := raw["modules"]; ok {
		sub.Modules = decodeModules(data, verr)
	}
	if data, ok := raw["utm"]; ok {
		sub.UTM = decodeUTM(data, verr)
	}

	if err := validate.Struct(&sub); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("leads: validate submission: %w", err)
		}
		for _, fe := range fieldErrs {
			field := fieldPath(fe.Namespace())
			if _, typed := verr.FieldErrors[field]; typed {
				continue
			}
			verr.addField(field, ruleMessage(fe))
		}
	}

	if !verr.empty() {
		return nil, verr
	}
	return sub.lead(), nil
}

type decodeTarget struct {
	name   string
	target any
}

func (s *Submission) targets() []decodeTarget {
	return []decodeTarget{
		{"product", &s.Product},
		{"form_type", &s.FormType},
		{"name", &s.Name},
		{"role", &s.Role},
		{"municipality_uf", &s.MunicipalityUF},
		{"email", &s.Email},
		{"whatsapp", &s.Whatsapp},
		{"observations", &s.Observations},
		{"interest", &s.Interest},
		{"message", &s.Message},
		{"page_url", &s.PageURL},
		{"hp", &s.Honeypot},
	}
}

func (u *UTM) targets() []decodeTarget {
	return []decodeTarget{
		{"source", &u.Source},
		{"medium", &u.Medium},
		{"campaign", &u.Campaign},
		{"term", &u.Term},
		{"content", &u.Content},
	}
}

// decodeModules rejects non-string elements instead of letting null decode
// to an empty code.
func decodeModules(data json.RawMessage, verr *ValidationError) []string {
	var items []*string
	if err := json.Unmarshal(data, &items); err != nil {
		verr.addField("modules", typeErrorMessage(err))
		return nil
	}
	if items == nil {
		return nil
	}
	codes := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			verr.addField("modules", "Expected string, received null")
			return nil
		}
		codes = append(codes, *item)
	}
	return codes
}

// decodeUTM decodes each campaign key on its own so every bad key is reported.
func decodeUTM(data json.RawMessage, verr *ValidationError) *UTM {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		verr.addField("utm", typeErrorMessage(err))
		return nil
	}
	utm := &UTM{}
	for _, f := range utm.targets() {
		raw, ok := fields[f.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, f.target); err != nil {
			verr.addField("utm."+f.name, typeErrorMessage(err))
		}
	}
	return utm
}

func (s *Submission) lead() *Lead {
	lead := &Lead{
		Product:        s.Product,
		Name:           s.Name,
		Role:           s.Role,
		MunicipalityUF: s.MunicipalityUF,
		Email:          s.Email,
		Whatsapp:       s.Whatsapp,
		PageURL:        s.PageURL,
	}
	if s.UTM != nil {
		lead.UTM = *s.UTM
	}
	if s.Honeypot != nil {
		lead.Honeypot = *s.Honeypot
	}
	switch FormType(s.FormType) {
	case FormDemo:
		lead.Form = DemoForm{Modules: s.Modules, Observations: s.Observations}
	case FormPresentation:
		lead.Form = PresentationForm{Interest: s.Interest, Message: s.Message}
	}
	return lead
}

// fieldPath turns "Submission.utm.source" into "utm.source" and
// "Submission.modules[2]" into "modules".
func fieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		path = namespace
	}
	if i := strings.IndexByte(path, '['); i >= 0 {
		path = path[:i]
	}
	return path
}

func typeErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("Expected %s, received %s", jsonKind(typeErr.Type), typeErr.Value)
	}
	return "Invalid value"
}

func jsonKind(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.Kind().String()
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "min":
		return fmt.Sprintf("Must contain at least %s character(s)", fe.Param())
	case "max":
		return fmt.Sprintf("Must contain at most %s character(s)", fe.Param())
	case "email":
		return "Invalid email"
	case "nonul":
		return "Must not contain null characters"
	case "oneof":
		options := strings.Fields(fe.Param())
		for i, o := range options {
			options[i] = "'" + o + "'"
		}
		return "Invalid enum value. Expected " + strings.Join(options, " | ")
	default:
		return "Invalid value"
	}
}
