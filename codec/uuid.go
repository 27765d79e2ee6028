package codec

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Namespaces are the well-known RFC 4122 name spaces accepted by name
var Namespaces = map[string]uuid.UUID{
	"dns":  uuid.NameSpaceDNS,
	"url":  uuid.NameSpaceURL,
	"oid":  uuid.NameSpaceOID,
	"x500": uuid.NameSpaceX500,
}

// ParseNamespace resolves a well-known namespace name or a literal UUID
func ParseNamespace(s string) (uuid.UUID, error) {
	if ns, ok := Namespaces[strings.ToLower(s)]; ok {
		return ns, nil
	}
	ns, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid uuid namespace %q: %w", s, err)
	}
	return ns, nil
}

// UUID5 returns the hyphenated version 5 UUID of name in namespace ns
func UUID5(ns uuid.UUID, name string) string {
	return uuid.NewSHA1(ns, []byte(name)).String()
}
