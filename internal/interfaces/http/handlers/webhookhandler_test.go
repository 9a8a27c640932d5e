package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/domain/webhook"
	"github.com/staffhub/staffhub/internal/interfaces/http/handlers/testutil"
	"github.com/staffhub/staffhub/internal/shared/constants"
	"github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

type mockIngestUC struct {
	result *usecases.IngestWebhookResult
	err    error
	cmd    usecases.IngestWebhookCommand
}

func (m *mockIngestUC) Execute(_ context.Context, cmd usecases.IngestWebhookCommand) (*usecases.IngestWebhookResult, error) {
	m.cmd = cmd
	return m.result, m.err
}

func TestWebhookPassesRawBodyAndHeaders(t *testing.T) {
	uc := &mockIngestUC{result: &usecases.IngestWebhookResult{EventType: "payment.captured", Outcome: webhook.OutcomeApplied}}
	h := NewWebhookHandler(uc, logger.NewNopLogger())

	raw := []byte(`{"event":"payment.captured",  "payload":{}}`)
	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/webhooks/payments", raw)
	c.Request.Header.Set(constants.HeaderWebhookSignature, "deadbeef")
	c.Request.Header.Set(constants.HeaderWebhookEventID, "evt_1")
	h.HandlePayments(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, raw, uc.cmd.RawBody, "body must reach the verifier byte for byte")
	assert.Equal(t, "deadbeef", uc.cmd.Signature)
	assert.Equal(t, "evt_1", uc.cmd.EventID)
}

func TestWebhookStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		result *usecases.IngestWebhookResult
		err    error
		status int
	}{
		{"duplicate", &usecases.IngestWebhookResult{EventType: "payment.captured", Outcome: webhook.OutcomeDuplicate}, nil, http.StatusOK},
		{"ignored", &usecases.IngestWebhookResult{EventType: "order.paid", Outcome: webhook.OutcomeIgnored}, nil, http.StatusOK},
		{"failed processing", &usecases.IngestWebhookResult{EventType: "payment.captured", Outcome: webhook.OutcomeFailed}, nil, http.StatusOK},
		{"unexpected error", nil, fmt.Errorf("database gone"), http.StatusOK},
		{"bad signature", nil, errors.NewSignatureError("webhook signature verification failed"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWebhookHandler(&mockIngestUC{result: tt.result, err: tt.err}, logger.NewNopLogger())
			c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/webhooks/payments", []byte(`{}`))
			h.HandlePayments(c)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
