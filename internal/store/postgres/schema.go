package postgres

import (
	"context"
	"fmt"
)

// schema is applied idempotently on connect. clientview_key mirrors
// document.Canonical so that filters and expression indexes agree with the
// in-memory comparison rules.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id BIGSERIAL PRIMARY KEY,
	collection TEXT NOT NULL,
	doc JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection, id);

CREATE OR REPLACE FUNCTION clientview_key(v jsonb) RETURNS text
LANGUAGE sql IMMUTABLE PARALLEL SAFE AS $fn$
	SELECT CASE jsonb_typeof(v)
		WHEN 'string' THEN v #>> '{}'
		WHEN 'number' THEN v #>> '{}'
		WHEN 'boolean' THEN v #>> '{}'
		WHEN 'object' THEN
			CASE WHEN (SELECT count(*) FROM jsonb_object_keys(v)) = 1
				AND jsonb_typeof(v -> '$oid') = 'string'
			THEN v ->> '$oid' END
	END
$fn$;

CREATE INDEX IF NOT EXISTS documents_party_key_idx
	ON documents (clientview_key(doc -> 'PTY_ID')) WHERE collection = 'OPT_Party';
CREATE INDEX IF NOT EXISTS documents_address_party_idx
	ON documents (clientview_key(doc -> 'Add_PartyID')) WHERE collection = 'OPT_Address';
CREATE INDEX IF NOT EXISTS documents_state_key_idx
	ON documents (clientview_key(doc -> 'Stt_ID')) WHERE collection = 'SYS_State';
`

// Migrate creates the documents table, key function and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return wrapErr("apply schema", err)
	}
	return nil
}
