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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5002"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"DAFTAR_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"DAFTAR_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"DAFTAR_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"DAFTAR_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"DAFTAR_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"DAFTAR_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"DAFTAR_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"DAFTAR_REDIS_DNS"`
}

// SmsConfig describes the HTTP SMS gateway used for payment receipts and
// debtor reminders. Templates are formatted with fmt.Sprintf; PaymentTemplate
// receives (amount, student name), DebtorTemplate receives the debt amount.
type SmsConfig struct {
	Url             string `json:"url" envconfig:"DAFTAR_SMS_URL"`
	Token           string `json:"token" envconfig:"DAFTAR_SMS_TOKEN"`
	Sender          string `json:"sender" envconfig:"DAFTAR_SMS_SENDER"`
	PaymentTemplate string `json:"payment_template"`
	DebtorTemplate  string `json:"debtor_template"`
}

type QueueConfig struct {
	ChargeQueue    string `json:"charge_queue" envconfig:"DAFTAR_CHARGE_QUEUE"`
	SmsQueue       string `json:"sms_queue" envconfig:"DAFTAR_SMS_QUEUE"`
	NumberOfQueues int    `json:"number_of_queues" envconfig:"DAFTAR_NUMBER_OF_QUEUES"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"DAFTAR_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"DAFTAR_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"DAFTAR_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type OtelConfig struct {
	Endpoint string `json:"endpoint" envconfig:"DAFTAR_OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type BackupConfig struct {
	Dir                string `json:"dir" envconfig:"DAFTAR_BACKUP_DIR"`
	AwsAccessKeyId     string `json:"aws_access_key_id"`
	AwsSecretAccessKey string `json:"aws_secret_access_key"`
	S3Endpoint         string `json:"s3_endpoint"`
	S3BucketName       string `json:"s3_bucket_name"`
	S3Region           string `json:"s3_region"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"DAFTAR_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Sms          SmsConfig        `json:"sms"`
	Queue        QueueConfig      `json:"queue"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
	Otel         OtelConfig       `json:"otel"`
	Backup       BackupConfig     `json:"backup"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("daftar", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called daftar.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Daftar Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Queue.ChargeQueue == "" {
		cnf.Queue.ChargeQueue = "new:charge"
	}
	if cnf.Queue.SmsQueue == "" {
		cnf.Queue.SmsQueue = "new:sms"
	}
	if cnf.Queue.NumberOfQueues == 0 {
		cnf.Queue.NumberOfQueues = 4
	}

	if cnf.Sms.PaymentTemplate == "" {
		cnf.Sms.PaymentTemplate = "Оплата на сумму %v принята. Студент: %v"
	}
	if cnf.Sms.DebtorTemplate == "" {
		cnf.Sms.DebtorTemplate = "Уважаемый клиент! Ваша задолженность составляет %v. Просим погасить её в ближайшее время."
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	// Set default cleanup interval if not specified
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
		log.Printf("Warning: Rate limit cleanup interval not specified. Setting default value: %d seconds", defaultCleanup)
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
