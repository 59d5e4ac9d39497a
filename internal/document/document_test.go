package document

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CanonicalSuite struct {
	suite.Suite
}

func TestCanonicalSuite(t *testing.T) {
	suite.Run(t, new(CanonicalSuite))
}

func (s *CanonicalSuite) TestRepresentationsCollapse() {
	s.Run("string and number compare equal", func() {
		a, ok := Canonical("1")
		s.Require().True(ok)
		b, ok := Canonical(json.Number("1"))
		s.Require().True(ok)
		c, ok := Canonical(float64(1))
		s.Require().True(ok)
		s.Equal(a, b)
		s.Equal(a, c)
	})

	s.Run("opaque identifier unwraps to its hex", func() {
		k, ok := Canonical(map[string]any{"$oid": "65f1c0ffee"})
		s.Require().True(ok)
		s.Equal("65f1c0ffee", k)
	})

	s.Run("leading zeros are significant for strings", func() {
		a, _ := Canonical("01")
		b, _ := Canonical(json.Number("1"))
		s.NotEqual(a, b)
	})
}

func (s *CanonicalSuite) TestValuesWithoutCanonicalForm() {
	for name, v := range map[string]any{
		"nil":           nil,
		"array":         []any{"1"},
		"plain object":  map[string]any{"a": "1"},
		"two-key oid":   map[string]any{"$oid": "x", "b": 1},
		"nan":           math.NaN(),
		"unknown types": struct{}{},
	} {
		s.Run(name, func() {
			_, ok := Canonical(v)
			s.False(ok)
		})
	}
}

func TestDocumentKeyEquals(t *testing.T) {
	d := Document{"PTY_ID": json.Number("7"), "Add_State": nil}

	assert.True(t, d.KeyEquals("PTY_ID", "7"))
	assert.False(t, d.KeyEquals("PTY_ID", "07"))
	assert.False(t, d.KeyEquals("Add_State", ""))
	assert.False(t, d.KeyEquals("missing", ""))
	assert.False(t, Document(nil).KeyEquals("PTY_ID", "7"))
}

func TestDecodeKeepsNumbersTextual(t *testing.T) {
	d, err := Decode([]byte(`{"PTY_ID": 12345678901234567890, "PTY_Name": "ABC Corp"}`))
	require.NoError(t, err)

	k, ok := d.Key("PTY_ID")
	require.True(t, ok)
	assert.Equal(t, "12345678901234567890", k)
}

func TestCloneIsDeep(t *testing.T) {
	orig := Document{"nested": map[string]any{"a": []any{"x"}}}
	cp := orig.Clone()
	cp["nested"].(map[string]any)["a"].([]any)[0] = "y"

	assert.Equal(t, "x", orig["nested"].(map[string]any)["a"].([]any)[0])
}

func TestNormalizeRewritesKeyFields(t *testing.T) {
	d := Document{
		"Add_PartyID": json.Number("2"),
		"Add_State":   map[string]any{"$oid": "abc"},
		"Add_ID":      []any{"weird"},
	}
	d.Normalize("Add_PartyID", "Add_State", "Add_ID", "Add_Missing")

	assert.Equal(t, "2", d["Add_PartyID"])
	assert.Equal(t, "abc", d["Add_State"])
	assert.Equal(t, []any{"weird"}, d["Add_ID"])
	assert.NotContains(t, d, "Add_Missing")
}

func TestFilterMatches(t *testing.T) {
	d := Document{"Add_PartyID": "01", "Add_ID": json.Number("3"), "Add_Line2": nil}

	assert.True(t, Filter{}.Matches(d))
	assert.True(t, Filter{"Add_PartyID": "01", "Add_ID": "3"}.Matches(d))
	assert.True(t, Filter{"Add_ID": float64(3)}.Matches(d))
	assert.False(t, Filter{"Add_PartyID": "1"}.Matches(d))
	assert.True(t, Filter{"Add_Line2": nil}.Matches(d))
	assert.True(t, Filter{"Add_Zip": nil}.Matches(d))
	assert.False(t, Filter{"Add_PartyID": nil}.Matches(d))
	assert.False(t, Filter{"Add_Zip": "500001"}.Matches(d))
}

func TestUpdateApplyReportsChange(t *testing.T) {
	d := Document{"PTY_FirstName": "Olivia", "PTY_SSN": "SSN002"}

	changed := Update{Set: Document{"PTY_FirstName": "Olivia"}}.Apply(d)
	assert.False(t, changed)

	changed = Update{Unset: []string{"PTY_SSN", "PTY_Email"}}.Apply(d)
	assert.True(t, changed)
	assert.NotContains(t, d, "PTY_SSN")

	changed = Update{Set: Document{"PTY_Phone": "9000000002"}}.Apply(d)
	assert.True(t, changed)
	assert.Equal(t, "9000000002", d["PTY_Phone"])
}
