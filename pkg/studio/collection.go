package studio

import (
	"fmt"
)

// Append returns a new collection with refs added after the elements of c.
func Append(c Collection, refs ...ImageReference) Collection {
	out := make(Collection, 0, len(c)+len(refs))
	out = append(out, c...)
	return append(out, refs...)
}

// Move returns a new collection with the element at source removed and
// reinserted at target. Elements between the two positions shift by one.
func Move(c Collection, source, target int) (Collection, error) {
	if err := checkIndex(c, source); err != nil {
		return nil, err
	}
	if err := checkIndex(c, target); err != nil {
		return nil, err
	}
	moved := c[source]
	out := make(Collection, 0, len(c))
	out = append(out, c[:source]...)
	out = append(out, c[source+1:]...)
	out = append(out[:target], append(Collection{moved}, out[target:]...)...)
	return out, nil
}

// Remove returns a new collection without the element at index.
func Remove(c Collection, index int) (Collection, error) {
	if err := checkIndex(c, index); err != nil {
		return nil, err
	}
	out := make(Collection, 0, len(c)-1)
	out = append(out, c[:index]...)
	return append(out, c[index+1:]...), nil
}

// Keys returns the reference keys in collection order.
func Keys(c Collection) []string {
	keys := make([]string, len(c))
	for i, ref := range c {
		keys[i] = ref.Key
	}
	return keys
}

// HasKey reports whether any reference in c uses key.
func HasKey(c Collection, key string) bool {
	for _, ref := range c {
		if ref.Key == key {
			return true
		}
	}
	return false
}

// Validate checks that every reference has a non-empty, unique key and an
// asset ref.
func Validate(c Collection) error {
	seen := make(map[string]struct{}, len(c))
	for i, ref := range c {
		if ref.Key == "" {
			return &ValidationError{Field: fmt.Sprintf("images[%d].key", i), Reason: "is required"}
		}
		if ref.AssetRef == "" {
			return &ValidationError{Field: fmt.Sprintf("images[%d].asset_ref", i), Reason: "is required"}
		}
		if _, dup := seen[ref.Key]; dup {
			return &ValidationError{Field: fmt.Sprintf("images[%d].key", i), Reason: fmt.Sprintf("duplicate key %q", ref.Key)}
		}
		seen[ref.Key] = struct{}{}
	}
	return nil
}

func checkIndex(c Collection, i int) error {
	if i < 0 || i >= len(c) {
		return fmt.Errorf("index %d of %d: %w", i, len(c), ErrIndexOutOfRange)
	}
	return nil
}
