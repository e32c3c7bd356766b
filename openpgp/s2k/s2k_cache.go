package s2k

import "bytes"

// Cache stores keys derived with s2k functions from one passphrase
// to avoid recomputation if multiple items are encrypted with
// the same parameters.
type Cache struct {
	derivedKeyCache map[string][]byte
}

// NewCache creates a new empty s2k cache for reusing keys.
func NewCache() *Cache {
	return &Cache{
		derivedKeyCache: make(map[string][]byte),
	}
}

// cacheKey returns the serialized s2k specifier, which uniquely
// identifies the derivation parameters.
func cacheKey(params *Params) (string, error) {
	var spec bytes.Buffer
	if err := params.Serialize(&spec); err != nil {
		return "", err
	}
	return spec.String(), nil
}

// GetDerivedKeyOrElseCompute tries to retrieve the key
// for the given s2k parameters from the cache.
// If there is no hit, it derives the key with the s2k function from the passphrase,
// updates the cache, and returns the key.
func (c *Cache) GetDerivedKeyOrElseCompute(passphrase []byte, params *Params, expectedKeySize int) ([]byte, error) {
	lookup, err := cacheKey(params)
	if err != nil {
		return nil, err
	}
	key, found := c.derivedKeyCache[lookup]
	if !found || expectedKeySize != len(key) {
		s2k, err := params.Function()
		if err != nil {
			return nil, err
		}
		derivedKey := make([]byte, expectedKeySize)
		s2k(derivedKey, passphrase)
		c.derivedKeyCache[lookup] = derivedKey
		return derivedKey, nil
	}
	return key, nil
}

// Reset clears the cache.
func (c *Cache) Reset() {
	c.derivedKeyCache = make(map[string][]byte)
}
