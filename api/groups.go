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

func (a Api) CreateStudyGroup(c *gin.Context) {
	var newGroup model2.CreateStudyGroup
	if err := c.ShouldBindJSON(&newGroup); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newGroup.ValidateCreateStudyGroup(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	group, err := a.daftar.CreateStudyGroup(c.Request.Context(), newGroup.ToStudyGroup())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

func (a Api) GetStudyGroup(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	group, err := a.daftar.GetStudyGroup(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

func (a Api) GetAllStudyGroups(c *gin.Context) {
	limit, offset := pagination(c)
	groups, err := a.daftar.GetAllStudyGroups(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

func (a Api) UpdateStudyGroup(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	group, err := a.daftar.GetStudyGroup(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	if err := c.ShouldBindJSON(group); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	group.ID = id

	if err := a.daftar.UpdateStudyGroup(c.Request.Context(), group); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

func (a Api) DeleteStudyGroup(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := a.daftar.DeleteStudyGroup(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "group deleted"})
}

func (a Api) EnrollStudent(c *gin.Context) {
	var enroll model2.EnrollStudent
	if err := c.ShouldBindJSON(&enroll); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := enroll.ValidateEnrollStudent(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	enrollment, err := a.daftar.EnrollStudent(c.Request.Context(), enroll.GroupID, enroll.StudentID, enroll.JoinedDateTime())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

func (a Api) UnenrollStudent(c *gin.Context) {
	groupID, ok := idParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := idParam(c, "student_id")
	if !ok {
		return
	}

	if err := a.daftar.UnenrollStudent(c.Request.Context(), groupID, studentID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "student removed from group"})
}
