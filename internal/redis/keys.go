package redis

const (
	collectionInfix    = ":c:"
	collectionsSuffix  = ":collections"
	metaSuffix         = ":meta"
	schemaVersionField = "schema_version"
)

// keys builds the Redis key names under one prefix.
type keys struct {
	prefix string
}

// collection returns the hash holding every record of name.
func (k keys) collection(name string) string {
	return k.prefix + collectionInfix + name
}

// collections returns the set of collection names that exist.
func (k keys) collections() string {
	return k.prefix + collectionsSuffix
}

// meta returns the hash of store metadata.
func (k keys) meta() string {
	return k.prefix + metaSuffix
}
