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
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/polica/daftar/model"
)

const testBaseURL = "http://ledger.test"

func newTestClient() *Client {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	c := NewClient(testBaseURL, NewSession("test-token"))
	c.HTTPClient(httpClient)
	return c
}

func entry(id int64, reason model.Reason, changeType model.BalanceChangeType, total string, flagged bool) model.ReportEntry {
	return model.ReportEntry{
		ID:                id,
		Date:              time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC),
		Reason:            reason,
		BalanceChangeType: changeType,
		Total:             decimal.RequireFromString(total),
		MarkForDelete:     flagged,
	}
}

func registerReport(t *testing.T, entries []model.ReportEntry) {
	t.Helper()
	responder, err := httpmock.NewJsonResponder(http.StatusOK, entries)
	if err != nil {
		t.Fatalf("Failed to build report responder: %v", err)
	}
	httpmock.RegisterResponder("GET", testBaseURL+"/students/42/balance-report", responder)
}

func studentLedger() []model.ReportEntry {
	return []model.ReportEntry{
		entry(7, model.ReasonPayment, model.ChangeIncome, "500000", false),
		entry(8, model.ReasonPayment, model.ChangeIncome, "300000", false),
		entry(9, model.ReasonPayment, model.ChangeIncome, "200000", false),
		entry(3, model.ReasonStudy, model.ChangeOutcome, "400000", false),
	}
}

func TestStudyDeleteNeverIssuesRequest(t *testing.T) {
	c := newTestClient()
	defer httpmock.DeactivateAndReset()

	registerReport(t, studentLedger())

	view := NewLedgerView(c, 42)
	assert.NoError(t, view.Refetch(context.Background()))
	assert.Len(t, view.Rows(), 4)

	confirm, err := view.RequestDelete(model.ReasonStudy, 3)
	assert.False(t, confirm)
	assert.ErrorIs(t, err, ErrStudyImmutable)
	assert.Equal(t, StudyImmutableNotice, view.Notice())

	// Confirming anyway must be a no-op; nothing is pending.
	assert.Error(t, view.ConfirmDelete(context.Background()))

	info := httpmock.GetCallCountInfo()
	for key, count := range info {
		if key != "GET "+testBaseURL+"/students/42/balance-report" {
			t.Errorf("unexpected request %s (%d calls)", key, count)
		}
	}
}

func TestDeletePaymentIssuesRequestAndRefetches(t *testing.T) {
	c := newTestClient()
	defer httpmock.DeactivateAndReset()

	registerReport(t, studentLedger())
	httpmock.RegisterResponder("DELETE", testBaseURL+"/payments/7",
		httpmock.NewStringResponder(http.StatusOK, `{"message":"payment deleted"}`))

	view := NewLedgerView(c, 42)
	assert.NoError(t, view.Refetch(context.Background()))

	confirm, err := view.RequestDelete(model.ReasonPayment, 7)
	assert.True(t, confirm)
	assert.NoError(t, err)
	assert.NoError(t, view.ConfirmDelete(context.Background()))

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["DELETE "+testBaseURL+"/payments/7"])
	assert.Equal(t, 2, info["GET "+testBaseURL+"/students/42/balance-report"])
}

func TestDeleteCancelSendsNothing(t *testing.T) {
	c := newTestClient()
	defer httpmock.DeactivateAndReset()

	registerReport(t, studentLedger())

	view := NewLedgerView(c, 42)
	assert.NoError(t, view.Refetch(context.Background()))

	confirm, err := view.RequestDelete(model.ReasonPayment, 7)
	assert.True(t, confirm)
	assert.NoError(t, err)
	view.CancelDelete()

	info := httpmock.GetCallCountInfo()
	assert.Zero(t, info["DELETE "+testBaseURL+"/payments/7"])
}

func TestCorrectionPayloadCarriesOriginalID(t *testing.T) {
	c := newTestClient()
	defer httpmock.DeactivateAndReset()

	registerReport(t, studentLedger())

	var captured Correction
	httpmock.RegisterResponder("PUT", testBaseURL+"/payments/7",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				return nil, err
			}
			return httpmock.NewJsonResponse(http.StatusOK, entry(7, model.ReasonPayment, model.ChangeIncome, "500000", true))
		})

	view := NewLedgerView(c, 42)
	assert.NoError(t, view.Refetch(context.Background()))

	assert.NoError(t, view.OpenCorrection(model.ReasonPayment, 7))
	view.SetMarkForDelete(true)
	view.SetComment("двойная оплата")
	assert.NoError(t, view.SubmitCorrection(context.Background()))

	assert.Equal(t, int64(7), captured.ID)
	assert.True(t, captured.MarkForDelete)
	assert.Equal(t, "двойная оплата", captured.Comment)
	assert.Equal(t, DialogClosed, view.Dialog())
}

func TestCorrectionFailureKeepsDialogOpen(t *testing.T) {
	c := newTestClient()
	defer httpmock.DeactivateAndReset()

	registerReport(t, studentLedger())
	// An empty success body is as good as a failure; the dialog must not
	// close and no refetch may happen.
	httpmock.RegisterResponder("PUT", testBaseURL+"/payments/7",
		httpmock.NewStringResponder(http.StatusOK, ""))

	view := NewLedgerView(c, 42)
	assert.NoError(t, view.Refetch(context.Background()))

	assert.NoError(t, view.OpenCorrection(model.ReasonPayment, 7))
	view.SetMarkForDelete(true)

	err := view.SubmitCorrection(context.Background())
	assert.Error(t, err)
	assert.Equal(t, DialogOpen, view.Dialog())
	assert.Error(t, view.Err())

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["GET "+testBaseURL+"/students/42/balance-report"])
}

func TestCorrectionRoundTripUpdatesRowFlag(t *testing.T) {
	c := newTestClient()
	defer httpmock.DeactivateAndReset()

	before := studentLedger()
	after := studentLedger()
	after[0].MarkForDelete = true
	after[0].CommentText = "ошибочная запись"

	fetches := 0
	httpmock.RegisterResponder("GET", testBaseURL+"/students/42/balance-report",
		func(req *http.Request) (*http.Response, error) {
			fetches++
			if fetches == 1 {
				return httpmock.NewJsonResponse(http.StatusOK, before)
			}
			return httpmock.NewJsonResponse(http.StatusOK, after)
		})
	httpmock.RegisterResponder("PUT", testBaseURL+"/payments/7",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, after[0]))

	view := NewLedgerView(c, 42)
	assert.NoError(t, view.Refetch(context.Background()))
	assert.False(t, view.Rows()[0].Flagged)

	assert.NoError(t, view.OpenCorrection(model.ReasonPayment, 7))
	view.SetMarkForDelete(true)
	view.SetComment("ошибочная запись")
	assert.NoError(t, view.SubmitCorrection(context.Background()))

	assert.True(t, view.Rows()[0].Flagged)
	assert.Equal(t, "ошибочная запись", view.Rows()[0].Comment)
}

func TestStudyCorrectionShowsNotice(t *testing.T) {
	c := newTestClient()
	defer httpmock.DeactivateAndReset()

	registerReport(t, studentLedger())

	view := NewLedgerView(c, 42)
	assert.NoError(t, view.Refetch(context.Background()))

	err := view.OpenCorrection(model.ReasonStudy, 3)
	assert.ErrorIs(t, err, ErrStudyImmutable)
	assert.Equal(t, DialogClosed, view.Dialog())
	assert.Equal(t, StudyImmutableNotice, view.Notice())

	view.ClearNotice()
	assert.Empty(t, view.Notice())
}

func TestCorrectionDialogSeedsFormFromRow(t *testing.T) {
	c := newTestClient()
	defer httpmock.DeactivateAndReset()

	ledger := studentLedger()
	ledger[1].MarkForDelete = true
	ledger[1].CommentText = "внесено дважды"
	registerReport(t, ledger)

	var captured Correction
	httpmock.RegisterResponder("PUT", testBaseURL+"/payments/8",
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				return nil, err
			}
			return httpmock.NewJsonResponse(http.StatusOK, ledger[1])
		})

	view := NewLedgerView(c, 42)
	assert.NoError(t, view.Refetch(context.Background()))

	// Submitting without touching the form re-sends the stored values.
	assert.NoError(t, view.OpenCorrection(model.ReasonPayment, 8))
	assert.NoError(t, view.SubmitCorrection(context.Background()))
	assert.Equal(t, int64(8), captured.ID)
	assert.True(t, captured.MarkForDelete)
	assert.Equal(t, "внесено дважды", captured.Comment)
}

func TestBalanceReportUnauthorized(t *testing.T) {
	c := newTestClient()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testBaseURL+"/students/42/balance-report",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"error":"Invalid token"}`))

	view := NewLedgerView(c, 42)
	err := view.Refetch(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
