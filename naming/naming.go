// Package naming parses service identifiers into structured routing
// information. A name like "blahBackendService" decomposes into case-boundary
// tokens which decide the adapter category, the adapter implementation and
// the dot-joined resource name the composer should load.
package naming

import (
	"strings"
	"unicode"

	perrors "github.com/pancakes-web/pancakes/errors"
)

// serviceToken is the required final token of every service name.
const serviceToken = "Service"

// ServiceInfo is the resolved routing information for one service name.
// It is derived and immutable once computed.
type ServiceInfo struct {
	AdapterName  string
	AdapterImpl  string
	ResourceName string
}

// IsCandidate reports whether name can be a service name: it contains no
// path separator and contains the literal substring "Service".
func IsCandidate(name string) bool {
	return !strings.ContainsAny(name, `/\`) && strings.Contains(name, serviceToken)
}

// Tokenize splits a camel-case identifier at upper-case boundaries.
// "blahAnotherBackendService" becomes ["blah", "Another", "Backend", "Service"].
func Tokenize(name string) []string {
	var tokens []string
	start := 0
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			tokens = append(tokens, name[start:i])
			start = i
		}
	}
	if start < len(name) {
		tokens = append(tokens, name[start:])
	}
	return tokens
}

// GetServiceInfo decomposes serviceName and resolves it against adapterMap.
//
// The token before the trailing "Service", lowercased, is tried as an
// adapter-map key. When it matches, it names the adapter and the remaining
// leading tokens form the resource name. When it does not, the adapter
// defaults to "service" and the non-matching token stays part of the
// resource name. Resource names are lowercased and dot-joined.
//
// The function is pure: the same inputs always produce the same ServiceInfo.
func GetServiceInfo(serviceName string, adapterMap map[string]string) (ServiceInfo, error) {
	tokens := Tokenize(serviceName)
	if len(tokens) < 2 || tokens[len(tokens)-1] != serviceToken {
		return ServiceInfo{}, &perrors.ConfigurationError{
			Subject: "invalid service name " + serviceName,
			Detail:  `must be camel case and end in "Service"`,
		}
	}
	tokens = tokens[:len(tokens)-1]

	candidate := strings.ToLower(tokens[len(tokens)-1])
	if impl, ok := adapterMap[candidate]; ok && len(tokens) > 1 {
		return ServiceInfo{
			AdapterName:  candidate,
			AdapterImpl:  impl,
			ResourceName: joinLower(tokens[:len(tokens)-1]),
		}, nil
	}

	return ServiceInfo{
		AdapterName:  "service",
		AdapterImpl:  adapterMap["service"],
		ResourceName: joinLower(tokens),
	}, nil
}

func joinLower(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = strings.ToLower(tok)
	}
	return strings.Join(parts, ".")
}
