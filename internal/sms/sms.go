/*
Copyright 2024 Daftar Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package sms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/polica/daftar/config"
	"github.com/polica/daftar/internal/request"
)

// defaultOriginator is the fallback short number used when the gateway sender
// is not configured.
const defaultOriginator = "3700"

// Message is a single SMS addressed to one phone number.
type Message struct {
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
}

// Service talks to the HTTP SMS gateway used for payment receipts and debtor
// reminders. Delivery is retried with exponential backoff on transport and
// 5xx failures; a 4xx response is treated as permanent.
type Service struct {
	url        string
	token      string
	originator string
	client     *http.Client
}

// NewService builds a Service from the loaded configuration.
func NewService() (*Service, error) {
	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	originator := conf.Sms.Sender
	if originator == "" {
		originator = defaultOriginator
	}
	return &Service{
		url:        conf.Sms.Url,
		token:      conf.Sms.Token,
		originator: originator,
		client:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type gatewayMessage struct {
	Recipient string `json:"recipient"`
	MessageID string `json:"message-id"`
	Sms       struct {
		Originator string `json:"originator"`
		Content    struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"sms"`
}

type gatewayPayload struct {
	Messages []gatewayMessage `json:"messages"`
}

func (s *Service) newGatewayMessage(recipient, text string) gatewayMessage {
	m := gatewayMessage{
		Recipient: recipient,
		MessageID: fmt.Sprintf("daftar_%d", time.Now().UnixNano()),
	}
	m.Sms.Originator = s.originator
	m.Sms.Content.Text = text
	return m
}

// Send delivers the same text to every phone number in recipients.
func (s *Service) Send(ctx context.Context, recipients []string, text string) error {
	messages := make([]gatewayMessage, 0, len(recipients))
	for _, number := range recipients {
		messages = append(messages, s.newGatewayMessage(number, text))
	}
	return s.deliver(ctx, gatewayPayload{Messages: messages})
}

// SendIndividual delivers a distinct text per recipient, used for debtor
// reminders where the message carries the student's own debt amount.
func (s *Service) SendIndividual(ctx context.Context, msgs []Message) error {
	messages := make([]gatewayMessage, 0, len(msgs))
	for _, m := range msgs {
		messages = append(messages, s.newGatewayMessage(m.Recipient, m.Text))
	}
	return s.deliver(ctx, gatewayPayload{Messages: messages})
}

func (s *Service) deliver(ctx context.Context, payload gatewayPayload) error {
	if s.url == "" {
		// SMS gateway not configured; silently skip, same as an empty
		// recipient list.
		return nil
	}
	if len(payload.Messages) == 0 {
		return nil
	}

	operation := func() error {
		body, err := request.ToJsonReq(&payload)
		if err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", request.BearerAuth(s.token))
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("sms gateway returned %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("sms gateway rejected request with %d", resp.StatusCode))
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return errors.Wrap(err, "sms delivery failed")
	}
	return nil
}
