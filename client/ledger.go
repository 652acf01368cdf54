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

	"github.com/pkg/errors"

	"github.com/polica/daftar/model"
)

// DialogState tracks the correction dialog lifecycle.
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogOpen
	DialogSubmitting
)

// StudyImmutableNotice is shown when an operator tries to remove or edit a
// study charge from the ledger.
const StudyImmutableNotice = "Это оплата за обучение. Чтобы убрать её, удалите студента из группы."

// LedgerView drives the balance ledger screen for one student: the fetched
// entries, the correction dialog state machine and the deletion flow. It is
// not safe for concurrent use; a view belongs to one operator screen.
type LedgerView struct {
	client    *Client
	studentID int64

	entries []model.ReportEntry

	dialog  DialogState
	current *model.ReportEntry
	form    Correction

	pendingDelete *model.ReportEntry
	notice        string
	lastErr       error
}

func NewLedgerView(client *Client, studentID int64) *LedgerView {
	return &LedgerView{client: client, studentID: studentID}
}

// Refetch reloads the ledger from the server. There is no local mutation of
// the entry list; rows change only when the server returns something new.
func (v *LedgerView) Refetch(ctx context.Context) error {
	entries, err := v.client.BalanceReport(ctx, v.studentID)
	if err != nil {
		v.lastErr = err
		return err
	}
	v.entries = entries
	v.lastErr = nil
	return nil
}

// Rows returns the rendered ledger lines in server order.
func (v *LedgerView) Rows() []Row {
	rows := make([]Row, len(v.entries))
	for i, entry := range v.entries {
		rows[i] = RenderRow(entry)
	}
	return rows
}

func (v *LedgerView) Dialog() DialogState {
	return v.dialog
}

// Notice returns the pending operator notice, if any.
func (v *LedgerView) Notice() string {
	return v.notice
}

func (v *LedgerView) ClearNotice() {
	v.notice = ""
}

// Err returns the last surfaced failure.
func (v *LedgerView) Err() error {
	return v.lastErr
}

func (v *LedgerView) findEntry(reason model.Reason, id int64) *model.ReportEntry {
	for i := range v.entries {
		if v.entries[i].Reason == reason && v.entries[i].ID == id {
			return &v.entries[i]
		}
	}
	return nil
}

// OpenCorrection opens the correction dialog for the given row, seeding the
// form with the row's current flag and comment. Study rows never open the
// dialog; the immutability notice is shown instead.
func (v *LedgerView) OpenCorrection(reason model.Reason, id int64) error {
	entry := v.findEntry(reason, id)
	if entry == nil {
		return errors.Errorf("no %s transaction with id %d in the ledger", reason, id)
	}

	if entry.Reason == model.ReasonStudy {
		v.notice = StudyImmutableNotice
		return ErrStudyImmutable
	}

	v.current = entry
	v.form = Correction{
		ID:            entry.ID,
		MarkForDelete: entry.MarkForDelete,
		Comment:       entry.CommentText,
	}
	v.dialog = DialogOpen
	return nil
}

// SetMarkForDelete updates the dialog checkbox.
func (v *LedgerView) SetMarkForDelete(mark bool) {
	if v.dialog == DialogOpen {
		v.form.MarkForDelete = mark
	}
}

// SetComment updates the dialog comment field.
func (v *LedgerView) SetComment(comment string) {
	if v.dialog == DialogOpen {
		v.form.Comment = comment
	}
}

// SubmitCorrection dispatches the flag/comment mutation for the open dialog.
// The payload always carries the original transaction id. On success the
// dialog closes and the ledger is refetched; on failure the dialog stays open
// and the error is surfaced to the operator.
func (v *LedgerView) SubmitCorrection(ctx context.Context) error {
	if v.dialog != DialogOpen {
		return errors.New("no correction dialog is open")
	}

	v.dialog = DialogSubmitting
	_, err := v.client.Correct(ctx, v.current.Reason, v.form)
	if err != nil {
		v.dialog = DialogOpen
		v.lastErr = err
		return err
	}

	v.dialog = DialogClosed
	v.current = nil
	return v.Refetch(ctx)
}

// CloseCorrection abandons the open dialog without sending anything.
func (v *LedgerView) CloseCorrection() {
	if v.dialog == DialogOpen {
		v.dialog = DialogClosed
		v.current = nil
	}
}

// RequestDelete starts the deletion flow for a row. Study rows are refused
// outright with the immutability notice and no confirmation prompt. For other
// rows the caller must follow up with ConfirmDelete or CancelDelete; nothing
// is sent until confirmed.
func (v *LedgerView) RequestDelete(reason model.Reason, id int64) (bool, error) {
	entry := v.findEntry(reason, id)
	if entry == nil {
		return false, errors.Errorf("no %s transaction with id %d in the ledger", reason, id)
	}

	if entry.Reason == model.ReasonStudy {
		v.notice = StudyImmutableNotice
		return false, ErrStudyImmutable
	}

	v.pendingDelete = entry
	return true, nil
}

// ConfirmDelete sends the delete mutation for the pending row and refetches
// on success. Failures leave the ledger untouched and are surfaced.
func (v *LedgerView) ConfirmDelete(ctx context.Context) error {
	if v.pendingDelete == nil {
		return errors.New("no deletion is pending")
	}

	entry := v.pendingDelete
	if err := v.client.Delete(ctx, entry.Reason, entry.ID); err != nil {
		v.pendingDelete = nil
		v.lastErr = err
		return err
	}

	v.pendingDelete = nil
	return v.Refetch(ctx)
}

// CancelDelete abandons the pending deletion without sending anything.
func (v *LedgerView) CancelDelete() {
	v.pendingDelete = nil
}
