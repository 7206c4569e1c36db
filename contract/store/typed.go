package store

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Item is a single JSON-encoded value stored under a fixed key, mirroring cw-storage-plus's Item.
type Item[T any] struct {
	key []byte
}

// NewItem returns an Item stored under key.
func NewItem[T any](key []byte) Item[T] {
	return Item[T]{key: key}
}

// Load reads the value, returning ok=false if nothing has been stored yet.
func (i Item[T]) Load(s KVStore) (T, bool, error) {
	var v T
	raw, ok := s.Get(i.key)
	if !ok {
		return v, false, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, errors.Wrapf(err, "failed to unmarshal item at key %q", i.key)
	}
	return v, true, nil
}

// Save writes the value.
func (i Item[T]) Save(s KVStore, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal item at key %q", i.key)
	}
	s.Set(i.key, raw)
	return nil
}

// Remove deletes the value.
func (i Item[T]) Remove(s KVStore) {
	s.Delete(i.key)
}

// Map is a JSON-encoded value store keyed by an arbitrary string-encodable key, mirroring
// cw-storage-plus's Map. KeyFn converts a typed key into the byte suffix appended to prefix.
type Map[K comparable, T any] struct {
	prefix []byte
	keyFn  func(K) []byte
}

// NewMap returns a Map storing entries under prefix, using keyFn to encode keys.
func NewMap[K comparable, T any](prefix []byte, keyFn func(K) []byte) Map[K, T] {
	return Map[K, T]{prefix: prefix, keyFn: keyFn}
}

func (m Map[K, T]) fullKey(k K) []byte {
	return append(append([]byte{}, m.prefix...), m.keyFn(k)...)
}

// Has reports whether key is present.
func (m Map[K, T]) Has(s KVStore, k K) bool {
	_, ok := s.Get(m.fullKey(k))
	return ok
}

// Load reads the value at key.
func (m Map[K, T]) Load(s KVStore, k K) (T, bool, error) {
	var v T
	raw, ok := s.Get(m.fullKey(k))
	if !ok {
		return v, false, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, errors.Wrapf(err, "failed to unmarshal map entry at key %q", m.fullKey(k))
	}
	return v, true, nil
}

// Save writes the value at key.
func (m Map[K, T]) Save(s KVStore, k K, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal map entry at key %q", m.fullKey(k))
	}
	s.Set(m.fullKey(k), raw)
	return nil
}

// Remove deletes the value at key.
func (m Map[K, T]) Remove(s KVStore, k K) {
	s.Delete(m.fullKey(k))
}

// Range walks every entry in lexicographic key order, decoding into T, stopping early if fn
// returns false.
func (m Map[K, T]) Range(s KVStore, fn func(rawKey []byte, v T) (bool, error)) error {
	end := PrefixRangeEnd(m.prefix)
	it := s.Iterator(m.prefix, end)
	for it.Valid() {
		var v T
		if err := json.Unmarshal(it.Value(), &v); err != nil {
			return errors.Wrapf(err, "failed to unmarshal map entry at key %q", it.Key())
		}
		suffix := it.Key()[len(m.prefix):]
		cont, err := fn(suffix, v)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
		it.Next()
	}
	return nil
}

// Page walks entries starting strictly after startAfterKey (nil/empty means from the beginning),
// decoding up to limit entries into T and reporting the raw suffix key of the last entry visited
// (nil once the map is exhausted), for cursor-based query pagination.
func (m Map[K, T]) Page(s KVStore, startAfterKey []byte, limit uint32, fn func(rawKey []byte, v T) error) ([]byte, error) {
	start := append(append([]byte{}, m.prefix...), startAfterKey...)
	if len(startAfterKey) > 0 {
		start = append(start, 0x00)
	}
	end := PrefixRangeEnd(m.prefix)
	it := s.Iterator(start, end)
	var last []byte
	var count uint32
	for it.Valid() && count < limit {
		var v T
		if err := json.Unmarshal(it.Value(), &v); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal map entry at key %q", it.Key())
		}
		suffix := it.Key()[len(m.prefix):]
		if err := fn(suffix, v); err != nil {
			return nil, err
		}
		last = append([]byte{}, suffix...)
		count++
		it.Next()
	}
	if !it.Valid() {
		return nil, nil
	}
	return last, nil
}
