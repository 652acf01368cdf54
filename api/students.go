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
	"strconv"

	"github.com/gin-gonic/gin"

	model2 "github.com/polica/daftar/api/model"
)

func idParam(c *gin.Context, name string) (int64, bool) {
	raw, passed := c.Params.Get(name)
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " is required. pass it in the route"})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be numeric"})
		return 0, false
	}
	return id, true
}

func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (a Api) CreateStudent(c *gin.Context) {
	var newStudent model2.CreateStudent
	if err := c.ShouldBindJSON(&newStudent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newStudent.ValidateCreateStudent(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	student, similar, err := a.daftar.CreateStudent(c.Request.Context(), newStudent.ToStudent())
	if err != nil {
		handleError(c, err)
		return
	}

	if len(similar) > 0 {
		c.JSON(http.StatusCreated, gin.H{"student": student, "similar_names": similar})
		return
	}
	c.JSON(http.StatusCreated, student)
}

func (a Api) GetStudent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	student, err := a.daftar.GetStudent(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

func (a Api) GetAllStudents(c *gin.Context) {
	limit, offset := pagination(c)
	students, err := a.daftar.GetAllStudents(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

func (a Api) UpdateStudent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	student, err := a.daftar.GetStudent(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	if err := c.ShouldBindJSON(student); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	student.ID = id

	if err := a.daftar.UpdateStudent(c.Request.Context(), student); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

func (a Api) DeleteStudent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := a.daftar.DeleteStudent(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "student deleted"})
}

func (a Api) GetBalanceReport(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	report, err := a.daftar.BalanceReport(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (a Api) GetStudentEnrollments(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	enrollments, err := a.daftar.GetStudentEnrollments(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}
