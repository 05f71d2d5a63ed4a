package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Deterministic(t *testing.T) {
	q := Query{Text: "happy", TopK: 10, Alpha: 0.7, FamilyFriendly: true}
	assert.Equal(t, Fingerprint(q), Fingerprint(q))
}

func TestFingerprint_Quoted(t *testing.T) {
	token := Fingerprint(Query{Text: "happy", TopK: 10, Alpha: 0.7})
	assert.True(t, strings.HasPrefix(token, `"`))
	assert.True(t, strings.HasSuffix(token, `"`))
}

func TestFingerprint_SensitiveToEveryField(t *testing.T) {
	base := Query{Text: "happy", TopK: 10, Alpha: 0.7, FamilyFriendly: true, Exclude: "a", Include: "b"}

	variants := []Query{
		{Text: "sad", TopK: 10, Alpha: 0.7, FamilyFriendly: true, Exclude: "a", Include: "b"},
		{Text: "happy", TopK: 11, Alpha: 0.7, FamilyFriendly: true, Exclude: "a", Include: "b"},
		{Text: "happy", TopK: 10, Alpha: 0.71, FamilyFriendly: true, Exclude: "a", Include: "b"},
		{Text: "happy", TopK: 10, Alpha: 0.7, FamilyFriendly: false, Exclude: "a", Include: "b"},
		{Text: "happy", TopK: 10, Alpha: 0.7, FamilyFriendly: true, Exclude: "x", Include: "b"},
		{Text: "happy", TopK: 10, Alpha: 0.7, FamilyFriendly: true, Exclude: "a", Include: "x"},
	}
	for i, v := range variants {
		assert.NotEqual(t, Fingerprint(base), Fingerprint(v), "variant %d", i)
	}
}

func TestFingerprint_StringFieldsDoNotAlias(t *testing.T) {
	a := Query{Text: "ab", TopK: 1, Alpha: 0.5, Exclude: "c"}
	b := Query{Text: "a", TopK: 1, Alpha: 0.5, Exclude: "bc"}
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}
