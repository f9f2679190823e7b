package cache

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Service namespaces for cache keys. Every key has the shape
// <service>:<resource>[:<identifier>].
const (
	ServiceAirtable = "airtable"
	ServiceClerk    = "clerk"
	ServiceStripe   = "stripe"
)

// Key builds a namespaced cache key from a service, a resource, and optional
// identifier parts.
func Key(service, resource string, parts ...string) string {
	elems := append([]string{service, resource}, parts...)
	return strings.Join(elems, ":")
}

// Pattern builds a glob pattern covering every key under a resource.
func Pattern(service, resource string) string {
	return Key(service, resource) + ":*"
}

// OptionsKey builds a key for a composite query: the options struct is
// serialized and base64-encoded so distinct query shapes map to distinct,
// bounded keys.
func OptionsKey(service, resource string, opts any) string {
	data, err := json.Marshal(opts)
	if err != nil {
		// Marshal only fails for unsupported option types; collapse those
		// onto a shared key rather than failing the read path.
		return Key(service, resource, "default")
	}
	return Key(service, resource, base64.RawURLEncoding.EncodeToString(data))
}
