// Package validation wraps struct validation for the presentation layer.
// The session core never validates input; forms check what they collected
// before sending it, the server remains authoritative.
package validation

// Validator checks a tagged struct and returns field name -> message for
// every violation, or nil when the value is valid.
type Validator interface {
	ValidateStruct(s any) map[string]string
}
