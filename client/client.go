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

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/polica/daftar/internal/request"
	"github.com/polica/daftar/model"
)

// ErrStudyImmutable is returned for any mutation attempted against a STUDY
// row. Study charges derive from group enrollment and are only removed by
// taking the student out of the group.
var ErrStudyImmutable = errors.New("study charges cannot be changed here; remove the student from the group instead")

// Correction is the body of the flag/comment mutations. ID always carries the
// original transaction id, whatever the form was changed to.
type Correction struct {
	ID            int64  `json:"id"`
	MarkForDelete bool   `json:"mark_for_delete"`
	Comment       string `json:"comment"`
}

// mutationSet groups the operations valid for one reason.
type mutationSet struct {
	Update func(ctx context.Context, id int64, patch Correction) (*model.ReportEntry, error)
	Delete func(ctx context.Context, id int64) error
}

// Client talks to the ledger API. Each reason maps to its own sub-resource;
// the mapping is a closed table rather than per-call-site branching.
type Client struct {
	baseURL string
	session *Session
	client  *http.Client

	mutations map[model.Reason]mutationSet
}

func NewClient(baseURL string, session *Session) *Client {
	c := &Client{
		baseURL: baseURL,
		session: session,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	c.mutations = map[model.Reason]mutationSet{
		model.ReasonPayment:    c.resourceMutations("payments"),
		model.ReasonBonus:      c.resourceMutations("student-bonuses"),
		model.ReasonAdjustment: c.resourceMutations("balance-changes"),
	}
	return c
}

// HTTPClient overrides the transport, mainly for tests.
func (c *Client) HTTPClient(client *http.Client) {
	c.client = client
}

// BalanceReport fetches the student's full transaction history in server
// order. The history is loaded in one request; this view has no pagination.
func (c *Client) BalanceReport(ctx context.Context, studentID int64) ([]model.ReportEntry, error) {
	url := fmt.Sprintf("%s/students/%d/balance-report", c.baseURL, studentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create balance report request")
	}

	var entries []model.ReportEntry
	if err := c.do(req, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Correct applies a flag/comment mutation to the transaction, routed by its
// reason. STUDY rows are refused without a request.
func (c *Client) Correct(ctx context.Context, reason model.Reason, patch Correction) (*model.ReportEntry, error) {
	ops, ok := c.mutations[reason]
	if !ok {
		if reason == model.ReasonStudy {
			return nil, ErrStudyImmutable
		}
		return nil, errors.Errorf("no mutations defined for reason %q", reason)
	}
	return ops.Update(ctx, patch.ID, patch)
}

// Delete removes the transaction, routed by its reason. STUDY rows are
// refused without a request.
func (c *Client) Delete(ctx context.Context, reason model.Reason, id int64) error {
	ops, ok := c.mutations[reason]
	if !ok {
		if reason == model.ReasonStudy {
			return ErrStudyImmutable
		}
		return errors.Errorf("no mutations defined for reason %q", reason)
	}
	return ops.Delete(ctx, id)
}

func (c *Client) resourceMutations(resource string) mutationSet {
	return mutationSet{
		Update: func(ctx context.Context, id int64, patch Correction) (*model.ReportEntry, error) {
			payload, err := request.ToJsonReq(patch)
			if err != nil {
				return nil, errors.Wrap(err, "failed to encode correction")
			}
			url := fmt.Sprintf("%s/%s/%d", c.baseURL, resource, id)
			req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, payload)
			if err != nil {
				return nil, errors.Wrap(err, "failed to create correction request")
			}

			var updated model.ReportEntry
			if err := c.do(req, &updated); err != nil {
				return nil, err
			}
			return &updated, nil
		},
		Delete: func(ctx context.Context, id int64) error {
			url := fmt.Sprintf("%s/%s/%d", c.baseURL, resource, id)
			req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
			if err != nil {
				return errors.Wrap(err, "failed to create delete request")
			}
			return c.do(req, nil)
		},
	}
}

func (c *Client) do(req *http.Request, response interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	if c.session.Authenticated() {
		req.Header.Set("Authorization", request.BearerAuth(c.session.Token()))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "ledger request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Error != "" {
			return errors.Errorf("ledger API returned %d: %s", resp.StatusCode, body.Error)
		}
		return errors.Errorf("ledger API returned %d", resp.StatusCode)
	}

	if response == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return errors.Wrap(err, "failed to decode ledger response")
	}
	return nil
}
