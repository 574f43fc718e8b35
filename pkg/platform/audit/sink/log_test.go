package sink

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ledger/pkg/domain"
	audit "ledger/pkg/platform/audit"
)

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := NewLog(logger).Deliver(context.Background(), audit.Event{
		Kind:       audit.KindConsentRevoked,
		Audience:   audit.ToOrganization(id.NewOrganizationID()),
		Message:    "consent revoked",
		Attributes: map[string]string{"consent_id": "c-1"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"consent revoked"`)
	assert.Contains(t, out, `"kind":"consent_revoked"`)
	assert.Contains(t, out, `"consent_id":"c-1"`)
}
