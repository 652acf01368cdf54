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

package daftar

import (
	"context"

	"github.com/polica/daftar/model"
)

func (d *Daftar) CreateStudyGroup(ctx context.Context, group *model.StudyGroup) (*model.StudyGroup, error) {
	return d.datasource.CreateStudyGroup(ctx, group)
}

func (d *Daftar) GetStudyGroup(ctx context.Context, id int64) (*model.StudyGroup, error) {
	return d.datasource.GetStudyGroup(ctx, id)
}

func (d *Daftar) GetAllStudyGroups(ctx context.Context, limit, offset int) ([]model.StudyGroup, error) {
	return d.datasource.GetAllStudyGroups(ctx, limit, offset)
}

func (d *Daftar) UpdateStudyGroup(ctx context.Context, group *model.StudyGroup) error {
	return d.datasource.UpdateStudyGroup(ctx, group)
}

func (d *Daftar) DeleteStudyGroup(ctx context.Context, id int64) error {
	return d.datasource.DeleteStudyGroup(ctx, id)
}

func (d *Daftar) GetStudentEnrollments(ctx context.Context, studentID int64) ([]model.Enrollment, error) {
	return d.datasource.GetStudentEnrollments(ctx, studentID)
}
