package relation

import (
	"errors"
	"testing"

	. "github.com/fulldump/biff"

	"github.com/populatedb/populatedb/key"
)

func k(m map[string]any) key.Key {
	return key.FromMap(m)
}

func names(t *testing.T, r Relation) []string {
	keys, err := r.Keys()
	AssertNil(err)
	result := []string{}
	for _, k := range keys {
		result = append(result, k.String())
	}
	return result
}

func TestKeySetDeduplicates(t *testing.T) {

	s := NewKeySet(
		k(map[string]any{"id": 1}),
		k(map[string]any{"id": 2}),
		k(map[string]any{"id": 1}),
	)

	AssertEqual(s.Len(), 2)

	exists, err := s.Contains(k(map[string]any{"id": 2}))
	AssertNil(err)
	AssertEqual(exists, true)

	exists, _ = s.Contains(k(map[string]any{"id": 3}))
	AssertEqual(exists, false)
}

func TestJoinSharedAttribute(t *testing.T) {

	subjects := NewKeySet(
		k(map[string]any{"subject_id": 1}),
		k(map[string]any{"subject_id": 2}),
	)
	sessions := NewKeySet(
		k(map[string]any{"subject_id": 1, "session": "a"}),
		k(map[string]any{"subject_id": 1, "session": "b"}),
		k(map[string]any{"subject_id": 3, "session": "c"}),
	)

	joined := names(t, Join(subjects, sessions))
	AssertEqual(joined, []string{
		"(session=a, subject_id=1)",
		"(session=b, subject_id=1)",
	})
}

func TestJoinNoSharedAttributeIsProduct(t *testing.T) {

	a := NewKeySet(k(map[string]any{"a": 1}), k(map[string]any{"a": 2}))
	b := NewKeySet(k(map[string]any{"b": "x"}))

	joined, err := Join(a, b).Keys()
	AssertNil(err)
	AssertEqual(len(joined), 2)
}

func TestProject(t *testing.T) {

	r := NewKeySet(
		k(map[string]any{"subject_id": 1, "session": "a"}),
		k(map[string]any{"subject_id": 1, "session": "b"}),
	)

	projected := names(t, Project(r, "subject_id"))
	AssertEqual(projected, []string{"(subject_id=1)"})
}

func TestFilterRestriction(t *testing.T) {

	f := Filter{"subject_id": 1}

	match, err := f.Match(k(map[string]any{"subject_id": 1, "session": "a"}))
	AssertNil(err)
	AssertEqual(match, true)

	match, _ = f.Match(k(map[string]any{"subject_id": 2}))
	AssertEqual(match, false)

	// empty filter matches everything
	match, _ = Filter{}.Match(k(map[string]any{"whatever": true}))
	AssertEqual(match, true)
}

func TestPending(t *testing.T) {

	eligible := NewKeySet(
		k(map[string]any{"id": 1}),
		k(map[string]any{"id": 2}),
		k(map[string]any{"id": 3}),
	)
	target := NewKeySet(
		k(map[string]any{"id": 2}),
	)

	pending := NewKeySet()
	keys, err := Pending(eligible, target, nil)
	AssertNil(err)
	for _, kk := range keys {
		pending.Add(kk)
	}

	AssertEqual(pending.Len(), 2)
	exists, _ := pending.Contains(k(map[string]any{"id": 2}))
	AssertEqual(exists, false)
}

func TestPendingWithRestriction(t *testing.T) {

	eligible := NewKeySet(
		k(map[string]any{"id": 1}),
		k(map[string]any{"id": 2}),
	)

	keys, err := Pending(eligible, NewKeySet(), In(k(map[string]any{"id": 1})))
	AssertNil(err)
	AssertEqual(len(keys), 1)
	AssertEqual(keys[0].String(), "(id=1)")
}

func TestPendingNilRelation(t *testing.T) {

	_, err := Pending(nil, NewKeySet(), nil)
	AssertEqual(errors.Is(err, ErrInvalidRelation), true)
}

type brokenRelation struct{}

func (brokenRelation) Keys() ([]key.Key, error) {
	return nil, nil
}

func TestPendingMalformedRelation(t *testing.T) {

	_, err := Pending(brokenRelation{}, NewKeySet(), nil)
	AssertEqual(errors.Is(err, ErrInvalidRelation), true)
}
