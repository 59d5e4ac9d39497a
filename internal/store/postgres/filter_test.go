package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientview/internal/document"
	"clientview/internal/store"
)

func TestWhere(t *testing.T) {
	t.Run("key fields of known collections are inlined", func(t *testing.T) {
		var a args
		cond, err := where(&a, store.PartyCollection, document.Filter{"PTY_ID": 7})
		require.NoError(t, err)
		assert.Equal(t, "collection = 'OPT_Party' AND clientview_key(doc -> 'PTY_ID') = $1", cond)
		assert.Equal(t, args{"7"}, a)
	})

	t.Run("address party key matches its index expression", func(t *testing.T) {
		var a args
		cond, err := where(&a, store.AddressCollection, document.Filter{"Add_PartyID": "01"})
		require.NoError(t, err)
		assert.Contains(t, cond, "collection = 'OPT_Address'")
		assert.Contains(t, cond, "clientview_key(doc -> 'Add_PartyID') = $1")
	})

	t.Run("other fields stay bound", func(t *testing.T) {
		var a args
		cond, err := where(&a, store.PartyCollection, document.Filter{"Pty_Name": "x'); DROP TABLE documents; --"})
		require.NoError(t, err)
		assert.Equal(t, "collection = 'OPT_Party' AND clientview_key(doc -> $1::text) = $2", cond)
		assert.Equal(t, args{"Pty_Name", "x'); DROP TABLE documents; --"}, a)
	})

	t.Run("unknown collections are bound", func(t *testing.T) {
		var a args
		cond, err := where(&a, "scratch", document.Filter{"PTY_ID": nil})
		require.NoError(t, err)
		assert.Equal(t, "collection = $1 AND (doc -> $2::text IS NULL OR jsonb_typeof(doc -> $2::text) = 'null')", cond)
		assert.Equal(t, args{"scratch", "PTY_ID"}, a)
	})
}

func TestLiteralEscapesQuotes(t *testing.T) {
	assert.Equal(t, "'it''s'", literal("it's"))
}
