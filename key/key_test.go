package key

import (
	"testing"

	. "github.com/fulldump/biff"
)

func TestKeyEncodeIsCanonical(t *testing.T) {

	a := New(Attr{"subject_id", 1}, Attr{"session", "s01"})
	b := FromMap(map[string]any{
		"session":    "s01",
		"subject_id": 1,
	})

	ea, err := a.Encode()
	AssertNil(err)
	eb, err := b.Encode()
	AssertNil(err)

	AssertEqual(string(ea), `{"session":"s01","subject_id":1}`)
	AssertEqual(string(ea), string(eb))
}

func TestKeyDecodeRoundtrip(t *testing.T) {

	original := New(Attr{"subject_id", 1}, Attr{"session", "s01"})

	encoded, err := original.Encode()
	AssertNil(err)

	decoded, err := Decode(encoded)
	AssertNil(err)

	// numbers come back as float64, equality is by canonical content
	AssertEqual(decoded.Equal(original), true)
}

func TestKeyAccessors(t *testing.T) {

	k := New(Attr{"b", 2}, Attr{"a", "x"})

	AssertEqual(k.Len(), 2)
	AssertEqual(k.Names(), []string{"a", "b"})

	value, exists := k.Get("b")
	AssertEqual(exists, true)
	AssertEqual(value, 2)

	_, exists = k.Get("nope")
	AssertEqual(exists, false)

	AssertEqual(k.Map(), map[string]any{"a": "x", "b": 2})
	AssertEqual(k.String(), "(a=x, b=2)")
}

func TestKeyProject(t *testing.T) {

	k := New(Attr{"subject_id", 1}, Attr{"session", "s01"}, Attr{"trial", 7})

	p := k.Project("subject_id", "session")
	AssertEqual(p.Names(), []string{"session", "subject_id"})

	// missing attributes are skipped
	p = k.Project("subject_id", "nope")
	AssertEqual(p.Names(), []string{"subject_id"})
}

func TestKeyLess(t *testing.T) {

	a := New(Attr{"id", 1})
	b := New(Attr{"id", 2})

	AssertEqual(a.Less(b), true)
	AssertEqual(b.Less(a), false)
	AssertEqual(a.Less(a), false)
}

func TestKeyDecodeInvalid(t *testing.T) {

	_, err := Decode([]byte(`{broken`))
	AssertNotNil(err)
}
