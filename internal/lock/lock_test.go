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

package redlock

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestLockAcquired(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "monthly-charges-lock", "worker-1")

	mock.ExpectSetNX("monthly-charges-lock", "worker-1", 10*time.Minute).SetVal(true)

	err := locker.Lock(context.Background(), 10*time.Minute)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockAlreadyHeld(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "monthly-charges-lock", "worker-1")

	mock.ExpectSetNX("monthly-charges-lock", "worker-1", 10*time.Minute).SetVal(false)

	err := locker.Lock(context.Background(), 10*time.Minute)
	assert.EqualError(t, err, "lock for key monthly-charges-lock is already held")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlockByHolder(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "monthly-charges-lock", "worker-1")

	script := "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"
	mock.ExpectEval(script, []string{"monthly-charges-lock"}, "worker-1").SetVal(int64(1))

	assert.NoError(t, locker.Unlock(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlockByNonHolder(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "monthly-charges-lock", "worker-2")

	script := "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"
	mock.ExpectEval(script, []string{"monthly-charges-lock"}, "worker-2").SetVal(int64(0))

	assert.Error(t, locker.Unlock(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtendLock(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "monthly-charges-lock", "worker-1")

	script := "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('pexpire', KEYS[1], ARGV[2]) else return 0 end"
	mock.ExpectEval(script, []string{"monthly-charges-lock"}, "worker-1", "60000").SetVal(int64(1))

	assert.NoError(t, locker.ExtendLock(context.Background(), time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}
