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
	"embed"

	"github.com/redis/go-redis/v9"

	"github.com/polica/daftar/config"
	"github.com/polica/daftar/database"
	"github.com/polica/daftar/internal/cache"
	redis_db "github.com/polica/daftar/internal/redis-db"
	"github.com/polica/daftar/internal/sms"
)

// Daftar is the service facade for the tutoring-center ledger.
type Daftar struct {
	queue      *Queue
	redis      redis.UniversalClient
	datasource database.IDataSource
	cache      cache.Cache
	sms        *sms.Service
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewDaftar initializes the service with the provided datasource, wiring the
// Redis client, report cache, task queue and SMS gateway from configuration.
func NewDaftar(db database.IDataSource) (*Daftar, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient(configuration.Redis.Dns)
	if err != nil {
		return nil, err
	}
	reportCache, err := cache.NewCache()
	if err != nil {
		return nil, err
	}
	smsService, err := sms.NewService()
	if err != nil {
		return nil, err
	}
	newQueue := NewQueue(configuration)

	return &Daftar{
		datasource: db,
		queue:      newQueue,
		redis:      redisClient.Client(),
		cache:      reportCache,
		sms:        smsService,
	}, nil
}

// ActiveQueues reports which task queues currently exist, so operators can
// see whether the workers have anything to drain.
func (d *Daftar) ActiveQueues() ([]string, error) {
	return d.queue.ActiveQueues()
}

// ProcessSmsTask delivers a queued batch through the SMS gateway. Batches
// with per-recipient texts go through the individual path; uniform batches
// fan the shared text out to every recipient.
func (d *Daftar) ProcessSmsTask(ctx context.Context, task SmsTaskPayload) error {
	if len(task.Messages) > 0 {
		return d.sms.SendIndividual(ctx, task.Messages)
	}
	return d.sms.Send(ctx, task.Recipients, task.Text)
}
