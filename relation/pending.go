package relation

import (
	"errors"
	"fmt"

	"github.com/populatedb/populatedb/key"
)

var ErrInvalidRelation = errors.New("invalid populate relation")

// Pending computes the work list of one populate call:
// (eligible - target) restricted by r, evaluated once, duplicates removed.
// It is a read-only query composition, no transaction is opened here. The
// order of the result is the canonical key order, callers must not rely on
// it for correctness.
func Pending(eligible Relation, target Contains, r Restriction) ([]key.Key, error) {

	if eligible == nil {
		return nil, ErrInvalidRelation
	}

	keys, err := eligible.Keys()
	if err != nil {
		return nil, fmt.Errorf("populate relation keys: %w", err)
	}
	if keys == nil {
		return nil, ErrInvalidRelation
	}

	pending := NewKeySet()
	for _, k := range keys {
		if r != nil {
			match, err := r.Match(k)
			if err != nil {
				return nil, err
			}
			if !match {
				continue
			}
		}
		if target != nil {
			populated, err := target.Contains(k)
			if err != nil {
				return nil, fmt.Errorf("target membership for %s: %w", k, err)
			}
			if populated {
				continue
			}
		}
		pending.Add(k)
	}

	return pending.Keys()
}
