// Package route turns the annotation dialects found on services, functions
// and fields into HTTP mapping metadata.
package route

import (
	"strings"

	"gopkg.idlgen.dev/generator.go/internal/idl"
)

// DefaultMethod is used when a declaration names a URI but no method.
const DefaultMethod = "GET"

// Annotation key prefixes. The first two are the "new" dialect, the last two
// the "old" dialect nested under an api_method option.
var prefixes = []string{
	"api.",
	"agw.",
	"pb_idl.api_method.",
	"api_method.",
}

var verbs = map[string]string{
	"get":    "GET",
	"post":   "POST",
	"put":    "PUT",
	"delete": "DELETE",
	"patch":  "PATCH",
}

// Request mapping keys apply to fields and never become extension config.
var fieldKeys = map[string]bool{
	"path":     true,
	"query":    true,
	"body":     true,
	"header":   true,
	"cookie":   true,
	"raw_body": true,
	"none":     true,
	"alias":    true,
}

// split returns the suffix of a recognized key.
func split(key string) (string, bool) {
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return strings.TrimPrefix(key, p), true
		}
	}
	return "", false
}

// Normalize builds the extension config of a declaration. Route keys (uri,
// method and the verbs) are only read from own; serializer, group and any
// other recognized key fall back to inherited. Without a route key the
// result is nil.
//
// An explicit method wins over a verb key, and an explicit uri wins over the
// value of a verb key. Later annotations override earlier ones.
func Normalize(own []idl.Annotation, inherited []idl.Annotation) *idl.ExtensionConfig {
	var (
		explicitMethod, explicitURI string
		verbMethod, verbURI         string
		routed                      bool
	)
	for _, a := range own {
		suffix, ok := split(a.Key)
		if !ok {
			continue
		}
		switch suffix {
		case "method":
			explicitMethod = a.Value
			routed = true
		case "uri":
			explicitURI = a.Value
			routed = true
		default:
			if m, ok := verbs[suffix]; ok {
				verbMethod = m
				verbURI = a.Value
				routed = true
			}
		}
	}
	if !routed {
		return nil
	}

	cfg := &idl.ExtensionConfig{}
	switch {
	case explicitMethod != "":
		cfg.Method = strings.ToUpper(explicitMethod)
	case verbMethod != "":
		cfg.Method = verbMethod
	default:
		cfg.Method = DefaultMethod
	}
	cfg.URI = verbURI
	if explicitURI != "" {
		cfg.URI = explicitURI
	}

	for _, set := range [][]idl.Annotation{inherited, own} {
		for _, a := range set {
			suffix, ok := split(a.Key)
			if !ok || fieldKeys[suffix] {
				continue
			}
			switch suffix {
			case "method", "uri":
			case "serializer":
				cfg.Serializer = a.Value
			case "group":
				cfg.Group = a.Value
			default:
				if _, ok := verbs[suffix]; ok {
					continue
				}
				if cfg.Extra == nil {
					cfg.Extra = make(map[string]string)
				}
				cfg.Extra[suffix] = a.Value
			}
		}
	}
	return cfg
}

// Location says where a request field travels.
type Location string

const (
	LocationPath   Location = "path"
	LocationQuery  Location = "query"
	LocationBody   Location = "body"
	LocationHeader Location = "header"
	LocationCookie Location = "cookie"
)

// FieldLocation resolves where a request field is sent and the wire name it
// uses. Fields without a mapping annotation go in the body for methods that
// carry one and in the query string otherwise.
func FieldLocation(field *idl.FieldDefinition, method string) (Location, string) {
	for _, a := range field.Annotations {
		suffix, ok := split(a.Key)
		if !ok {
			continue
		}
		switch Location(suffix) {
		case LocationPath, LocationQuery, LocationBody, LocationHeader, LocationCookie:
			name := a.Value
			if name == "" {
				name = field.Name
			}
			return Location(suffix), name
		}
	}
	switch strings.ToUpper(method) {
	case "POST", "PUT", "PATCH":
		return LocationBody, field.Name
	default:
		return LocationQuery, field.Name
	}
}

// Hidden reports whether a field is excluded from generated types.
func Hidden(as []idl.Annotation) bool {
	for _, a := range as {
		if suffix, ok := split(a.Key); ok && suffix == "none" && a.Value != "false" {
			return true
		}
	}
	return false
}
