package relation

import (
	"github.com/google/btree"

	"github.com/populatedb/populatedb/key"
)

// Relation is a queryable set of computation keys. Implementations are
// expected to return a fresh snapshot on every call and must not be mutated
// by consumers.
type Relation interface {
	Keys() ([]key.Key, error)
}

// Contains is the membership test offered by a populate target.
type Contains interface {
	Contains(k key.Key) (bool, error)
}

// KeySet is a literal relation: an ordered set of keys with no duplicates.
type KeySet struct {
	tree *btree.BTreeG[key.Key]
}

func NewKeySet(keys ...key.Key) *KeySet {
	s := &KeySet{
		tree: btree.NewG(32, func(a, b key.Key) bool {
			return a.Less(b)
		}),
	}
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

func (s *KeySet) Add(k key.Key) {
	s.tree.ReplaceOrInsert(k)
}

func (s *KeySet) Len() int {
	return s.tree.Len()
}

func (s *KeySet) Contains(k key.Key) (bool, error) {
	_, exists := s.tree.Get(k)
	return exists, nil
}

// Match makes a KeySet usable as a Restriction.
func (s *KeySet) Match(k key.Key) (bool, error) {
	return s.Contains(k)
}

func (s *KeySet) Keys() ([]key.Key, error) {
	keys := make([]key.Key, 0, s.tree.Len())
	s.tree.Ascend(func(k key.Key) bool {
		keys = append(keys, k)
		return true
	})
	return keys, nil
}

// Join is the natural join of two relations: pairs that agree on every
// shared attribute name, merged into one key carrying the union of
// attributes. With no shared names it degenerates into the cartesian
// product, which is how independent upstream dependencies combine.
func Join(a, b Relation) Relation {
	return &join{a: a, b: b}
}

type join struct {
	a Relation
	b Relation
}

func (j *join) Keys() ([]key.Key, error) {

	keysA, err := j.a.Keys()
	if err != nil {
		return nil, err
	}
	keysB, err := j.b.Keys()
	if err != nil {
		return nil, err
	}

	result := NewKeySet()
	for _, ka := range keysA {
		for _, kb := range keysB {
			shared := sharedNames(ka, kb)
			if !ka.Project(shared...).Equal(kb.Project(shared...)) {
				continue
			}
			merged := ka.Map()
			for name, value := range kb.Map() {
				merged[name] = value
			}
			result.Add(key.FromMap(merged))
		}
	}

	return result.Keys()
}

func sharedNames(a, b key.Key) []string {
	names := []string{}
	for _, name := range a.Names() {
		if _, exists := b.Get(name); exists {
			names = append(names, name)
		}
	}
	return names
}

// Project keeps only the given attributes of every key, removing duplicates.
func Project(r Relation, names ...string) Relation {
	return &project{r: r, names: names}
}

type project struct {
	r     Relation
	names []string
}

func (p *project) Keys() ([]key.Key, error) {
	keys, err := p.r.Keys()
	if err != nil {
		return nil, err
	}

	result := NewKeySet()
	for _, k := range keys {
		result.Add(k.Project(p.names...))
	}

	return result.Keys()
}
