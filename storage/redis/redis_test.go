// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis"
	"github.com/google/go-cmp/cmp"
	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/storage"
	"github.com/transparency-dev/ctverify/storage/testonly"
)

// RedisAddrEnv names the variable holding the address of a Redis server for
// tests. Defaults to localhost:6379; tests are skipped if it is unreachable.
const RedisAddrEnv = "TEST_REDIS_ADDR"

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv(RedisAddrEnv)
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: time.Second})
	if err := rdb.Ping().Err(); err != nil {
		rdb.Close()
		t.Skipf("Redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

// newStore returns a store under a key prefix unique to the test.
func newStore(t *testing.T) *STHStore {
	rdb := redisClient(t)
	prefix := fmt.Sprintf("ctverify-test/%d/", time.Now().UnixNano())
	t.Cleanup(func() {
		keys, err := rdb.Keys(prefix + "*").Result()
		if err == nil && len(keys) > 0 {
			rdb.Del(keys...)
		}
	})
	s := New(rdb, prefix)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load(): %v", err)
	}
	return s
}

func TestSTHStore(t *testing.T) {
	tester := &testonly.STHStoreTester{
		NewStore: func(t *testing.T) storage.STHStore { return newStore(t) },
	}
	tester.RunAllTests(t)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	id := testonly.LogID("argon")
	want := []*ct.SignedTreeHead{testonly.STH(1, 10), testonly.STH(5, 20), testonly.STH(8, 30)}
	for _, sth := range want {
		if err := s.SetTrustedSTH(ctx, id, sth); err != nil {
			t.Fatalf("SetTrustedSTH(%v): %v", sth, err)
		}
	}
	got, err := s.History(ctx, id)
	if err != nil {
		t.Fatalf("History(): %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("History() diff (-want +got):\n%s", diff)
	}
}
