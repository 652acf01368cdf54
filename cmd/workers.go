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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/polica/daftar"
	"github.com/polica/daftar/config"
	redis_db "github.com/polica/daftar/internal/redis-db"
)

// Periodic task types, enqueued by the scheduler onto the default queue.
const (
	generateChargesTask = "charges:generate"
	notifyDebtorsTask   = "debtors:notify"
)

// processCharge bills one enrollment for the current month.
func (d *daftarInstance) processCharge(ctx context.Context, t *asynq.Task) error {
	var task daftar.ChargeTaskPayload
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		logrus.Error(err)
		return err
	}

	if err := d.daftar.ProcessChargeTask(ctx, task); err != nil {
		logrus.Errorf("Charge for student %d in group %d pushed back for retry: %v", task.StudentID, task.GroupID, err)
		return err
	}

	log.Println(" [*] Charge Processed", task.EnrollmentID)
	return nil
}

// processSms delivers one queued SMS through the gateway.
func (d *daftarInstance) processSms(ctx context.Context, t *asynq.Task) error {
	var task daftar.SmsTaskPayload
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		logrus.Error(err)
		return err
	}

	if err := d.daftar.ProcessSmsTask(ctx, task); err != nil {
		return err
	}

	log.Println(" [*] SMS Delivered to", len(task.Recipients), "recipients")
	return nil
}

// generateCharges fans out the monthly billing over the charge queues.
func (d *daftarInstance) generateCharges(ctx context.Context, _ *asynq.Task) error {
	queued, err := d.daftar.GenerateMonthlyCharges(ctx)
	if err != nil {
		return err
	}
	log.Println(" [*] Monthly Charges Queued", queued)
	return nil
}

// notifyDebtors queues reminder messages for students with negative balances.
func (d *daftarInstance) notifyDebtors(ctx context.Context, _ *asynq.Task) error {
	notified, err := d.daftar.NotifyDebtors(ctx)
	if err != nil {
		return err
	}
	log.Println(" [*] Debtor Reminders Queued", notified)
	return nil
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues["default"] = 1
	queues[cfg.Queue.SmsQueue] = 2

	for i := 1; i <= cfg.Queue.NumberOfQueues; i++ {
		queueName := fmt.Sprintf("%s_%d", cfg.Queue.ChargeQueue, i)
		queues[queueName] = 1
	}
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(d *daftarInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return
	}

	for i := 1; i <= cfg.Queue.NumberOfQueues; i++ {
		queueName := fmt.Sprintf("%s_%d", cfg.Queue.ChargeQueue, i)
		mux.HandleFunc(queueName, d.processCharge)
	}

	mux.HandleFunc(cfg.Queue.SmsQueue, d.processSms)
	mux.HandleFunc(generateChargesTask, d.generateCharges)
	mux.HandleFunc(notifyDebtorsTask, d.notifyDebtors)
}

// initializeScheduler registers the periodic billing and reminder tasks.
// Charges run on the first of every month, debtor reminders every morning.
func initializeScheduler(conf *config.Configuration) (*asynq.Scheduler, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		nil,
	)

	if _, err := scheduler.Register("0 3 1 * *", asynq.NewTask(generateChargesTask, nil)); err != nil {
		return nil, err
	}
	if _, err := scheduler.Register("0 10 * * *", asynq.NewTask(notifyDebtorsTask, nil)); err != nil {
		return nil, err
	}
	return scheduler, nil
}

func workerCommands(d *daftarInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start daftar workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			phClient, shutdown, err := initializeObservability(ctx, conf)
			if err != nil {
				log.Fatal(err)
			}
			if shutdown != nil {
				defer func() {
					if err := shutdown(ctx); err != nil {
						log.Printf("Error during shutdown: %v", err)
					}
				}()
			}
			if phClient != nil {
				defer phClient.Close()
			}

			queues := initializeQueues()

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(d, mux)

			scheduler, err := initializeScheduler(conf)
			if err != nil {
				log.Fatal(err)
			}
			go func() {
				if err := scheduler.Run(); err != nil {
					log.Fatalf("could not run scheduler: %v", err)
				}
			}()

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
