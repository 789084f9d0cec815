package relation

import (
	"fmt"

	"github.com/SierraSoftworks/connor"

	"github.com/populatedb/populatedb/key"
)

// Restriction narrows which keys a populate call considers. A nil Restriction
// matches everything.
type Restriction interface {
	Match(k key.Key) (bool, error)
}

// Filter is a connor predicate evaluated over the key attributes, with the
// same operators the find filters use ($eq, $gt, $in...).
type Filter map[string]any

func (f Filter) Match(k key.Key) (bool, error) {
	if len(f) == 0 {
		return true, nil
	}
	match, err := connor.Match(f, k.Map())
	if err != nil {
		return false, fmt.Errorf("match restriction: %w", err)
	}
	return match, nil
}

// In restricts to an explicit set of keys.
func In(keys ...key.Key) Restriction {
	return NewKeySet(keys...)
}
