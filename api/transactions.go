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
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/polica/daftar/api/model"
)

func (a Api) RecordPayment(c *gin.Context) {
	var newPayment model2.RecordPayment
	if err := c.ShouldBindJSON(&newPayment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newPayment.ValidateRecordPayment(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	payment, err := a.daftar.RecordPayment(c.Request.Context(), newPayment.ToPayment())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

func (a Api) GetPayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	payment, err := a.daftar.GetPayment(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// bindCorrection reads the shared flag/comment body. Missing fields fall back
// to the stored values so a partial body never clears the other field.
func bindCorrection(c *gin.Context, currentMark bool, currentComment string) (bool, string, bool) {
	var correction model2.CorrectTransaction
	if err := c.ShouldBindJSON(&correction); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return false, "", false
	}

	mark := currentMark
	if correction.MarkForDelete != nil {
		mark = *correction.MarkForDelete
	}
	comment := currentComment
	if correction.Comment != nil {
		comment = *correction.Comment
	}
	return mark, comment, true
}

func (a Api) CorrectPayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	current, err := a.daftar.GetPayment(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	mark, comment, ok := bindCorrection(c, current.MarkForDelete, current.Comment)
	if !ok {
		return
	}

	updated, err := a.daftar.FlagPayment(c.Request.Context(), id, mark, comment)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (a Api) DeletePayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := a.daftar.DeletePayment(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "payment deleted"})
}

func (a Api) RecordBonus(c *gin.Context) {
	var newBonus model2.RecordBonus
	if err := c.ShouldBindJSON(&newBonus); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newBonus.ValidateRecordBonus(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	bonus, err := a.daftar.RecordBonus(c.Request.Context(), newBonus.ToBonus())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bonus)
}

func (a Api) GetBonus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	bonus, err := a.daftar.GetBonus(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, bonus)
}

func (a Api) CorrectBonus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	current, err := a.daftar.GetBonus(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	mark, comment, ok := bindCorrection(c, current.MarkForDelete, current.Comment)
	if !ok {
		return
	}

	updated, err := a.daftar.FlagBonus(c.Request.Context(), id, mark, comment)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (a Api) DeleteBonus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := a.daftar.DeleteBonus(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "bonus deleted"})
}

func (a Api) RecordAdjustment(c *gin.Context) {
	var newAdjustment model2.RecordAdjustment
	if err := c.ShouldBindJSON(&newAdjustment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newAdjustment.ValidateRecordAdjustment(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	adjustment, err := a.daftar.RecordAdjustment(c.Request.Context(), newAdjustment.StudentID, newAdjustment.NewBalance, newAdjustment.Comment)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, adjustment)
}

func (a Api) GetAdjustment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	adjustment, err := a.daftar.GetAdjustment(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, adjustment)
}

func (a Api) CorrectAdjustment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	current, err := a.daftar.GetAdjustment(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	mark, comment, ok := bindCorrection(c, current.MarkForDelete, current.Comment)
	if !ok {
		return
	}

	updated, err := a.daftar.FlagAdjustment(c.Request.Context(), id, mark, comment)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (a Api) DeleteAdjustment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := a.daftar.DeleteAdjustment(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "balance change deleted"})
}

func (a Api) GetStudyCharge(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	charge, err := a.daftar.GetStudyCharge(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, charge)
}

func (a Api) DeleteStudyCharge(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := a.daftar.DeleteStudyCharge(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "study charge deleted"})
}

func (a Api) GetDrawers(c *gin.Context) {
	drawers, err := a.daftar.GetDrawers(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, drawers)
}

func (a Api) GenerateMonthlyCharges(c *gin.Context) {
	queued, err := a.daftar.GenerateMonthlyCharges(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"queued": queued})
}

func (a Api) GetQueues(c *gin.Context) {
	queues, err := a.daftar.ActiveQueues()
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"queues": queues})
}

func (a Api) NotifyDebtors(c *gin.Context) {
	notified, err := a.daftar.NotifyDebtors(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notified": notified})
}
