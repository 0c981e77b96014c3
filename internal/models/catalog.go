package models

import "strings"

// DefaultCatalog lists the coins tracked when COINS is not configured.
const DefaultCatalog = "bitcoin,matic-network,ethereum"

// Catalog is the fixed set of tracked coin ids, defined at startup.
type Catalog []string

// ParseCatalog builds a catalog from a comma-separated list of coin ids,
// falling back to DefaultCatalog when the list is empty. Blank entries and
// surrounding whitespace are dropped.
func ParseCatalog(s string) Catalog {
	if strings.TrimSpace(s) == "" {
		s = DefaultCatalog
	}
	var catalog Catalog
	for _, id := range strings.Split(s, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			catalog = append(catalog, id)
		}
	}
	return catalog
}

// Contains reports whether the coin id is part of the catalog.
func (c Catalog) Contains(coin string) bool {
	for _, id := range c {
		if id == coin {
			return true
		}
	}
	return false
}
