package attrs

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractString(t *testing.T) {
	list := []any{"party_id", "01", "count", 3, slog.String("ip", "203.0.113.9"), "reason"}

	assert.Equal(t, "01", ExtractString(list, "party_id"))
	assert.Equal(t, "203.0.113.9", ExtractString(list, "ip"))
	assert.Empty(t, ExtractString(list, "count"), "non-string value")
	assert.Empty(t, ExtractString(list, "reason"), "dangling key")
	assert.Empty(t, ExtractString(nil, "party_id"))
}
