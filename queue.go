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
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log"

	"github.com/hibiken/asynq"

	"github.com/polica/daftar/config"
	redis_db "github.com/polica/daftar/internal/redis-db"
	"github.com/polica/daftar/internal/sms"
)

// Queue hands monthly charge generation and SMS delivery off to asynq
// workers.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// ChargeTaskPayload identifies one enrollment to bill during a monthly run.
type ChargeTaskPayload struct {
	EnrollmentID int64 `json:"enrollment_id"`
	StudentID    int64 `json:"student_id"`
	GroupID      int64 `json:"group_id"`
}

// SmsTaskPayload carries one outbound SMS batch: either the same Text for
// every number in Recipients, or per-recipient Messages when each text
// differs (debtor reminders carry the student's own debt amount).
type SmsTaskPayload struct {
	Recipients []string      `json:"recipients,omitempty"`
	Text       string        `json:"text,omitempty"`
	Messages   []sms.Message `json:"messages,omitempty"`
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// EnqueueCharge queues a billing task for one enrollment. Tasks for the same
// student always hash to the same queue so its balance updates are applied
// serially.
func (q *Queue) EnqueueCharge(ctx context.Context, task ChargeTaskPayload) error {
	cnf, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	queueIndex := hashStudentID(task.StudentID) % cnf.Queue.NumberOfQueues
	queueName := fmt.Sprintf("%s_%d", cnf.Queue.ChargeQueue, queueIndex+1)

	taskOptions := []asynq.Option{
		asynq.TaskID(fmt.Sprintf("charge_%d", task.EnrollmentID)),
		asynq.Queue(queueName),
		asynq.MaxRetry(5),
	}
	info, err := q.Client.EnqueueContext(ctx, asynq.NewTask(queueName, payload, taskOptions...))
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued charge task for enrollment: %d", task.EnrollmentID)
	return nil
}

// EnqueueSms queues an SMS batch for background delivery.
func (q *Queue) EnqueueSms(ctx context.Context, task SmsTaskPayload) error {
	cnf, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	taskOptions := []asynq.Option{asynq.Queue(cnf.Queue.SmsQueue), asynq.MaxRetry(5)}
	info, err := q.Client.EnqueueContext(ctx, asynq.NewTask(cnf.Queue.SmsQueue, payload, taskOptions...))
	if err != nil {
		log.Println(err, info)
		return err
	}
	return nil
}

// ActiveQueues lists the queues currently known to Redis, for the
// operational health endpoint.
func (q *Queue) ActiveQueues() ([]string, error) {
	return q.Inspector.Queues()
}

func hashStudentID(id int64) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%d", id)
	return int(h.Sum32() % 1000)
}
