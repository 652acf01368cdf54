package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

func newTestService() *Service {
	client := &http.Client{Timeout: time.Second}
	httpmock.ActivateNonDefault(client)
	return &Service{
		url:        "https://sms.example.com/broker-api/send",
		token:      "test-token",
		originator: "3700",
		client:     client,
	}
}

func TestSendBuildsGatewayPayload(t *testing.T) {
	svc := newTestService()
	defer httpmock.DeactivateAndReset()

	var captured gatewayPayload
	httpmock.RegisterResponder("POST", svc.url,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				return nil, err
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"status":"ok"}`), nil
		})

	err := svc.Send(context.Background(), []string{"998901234567", "998907654321"}, "Оплата принята")
	assert.NoError(t, err)
	assert.Len(t, captured.Messages, 2)
	assert.Equal(t, "998901234567", captured.Messages[0].Recipient)
	assert.Equal(t, "3700", captured.Messages[0].Sms.Originator)
	assert.Equal(t, "Оплата принята", captured.Messages[0].Sms.Content.Text)
}

func TestSendRetriesOnServerError(t *testing.T) {
	svc := newTestService()
	defer httpmock.DeactivateAndReset()

	calls := 0
	httpmock.RegisterResponder("POST", svc.url,
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return httpmock.NewStringResponse(http.StatusBadGateway, ""), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, ""), nil
		})

	err := svc.Send(context.Background(), []string{"998901234567"}, "test")
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestSendDoesNotRetryOnClientError(t *testing.T) {
	svc := newTestService()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", svc.url,
		httpmock.NewStringResponder(http.StatusUnauthorized, ""))

	err := svc.Send(context.Background(), []string{"998901234567"}, "test")
	assert.Error(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSendIndividualCarriesDistinctTexts(t *testing.T) {
	svc := newTestService()
	defer httpmock.DeactivateAndReset()

	var captured gatewayPayload
	httpmock.RegisterResponder("POST", svc.url,
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				return nil, err
			}
			return httpmock.NewStringResponse(http.StatusOK, ""), nil
		})

	err := svc.SendIndividual(context.Background(), []Message{
		{Recipient: "998901111111", Text: "Задолженность: 150 000"},
		{Recipient: "998902222222", Text: "Задолженность: 80 000"},
	})
	assert.NoError(t, err)
	assert.Len(t, captured.Messages, 2)
	assert.Equal(t, "Задолженность: 150 000", captured.Messages[0].Sms.Content.Text)
	assert.Equal(t, "Задолженность: 80 000", captured.Messages[1].Sms.Content.Text)
}

func TestSendSkipsWhenGatewayUnconfigured(t *testing.T) {
	svc := &Service{client: http.DefaultClient}
	err := svc.Send(context.Background(), []string{"998901234567"}, "test")
	assert.NoError(t, err)
}
