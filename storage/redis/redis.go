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


// Package redis provides an STHStore kept in Redis, so that several monitor
// replicas can share trusted state.
package redis

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/go-redis/redis"
	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
	"github.com/transparency-dev/ctverify/storage"
	"k8s.io/klog/v2"
)

// Client is the subset of the Redis client API used by STHStore. It is
// satisfied by *redis.Client, *redis.ClusterClient and *redis.Ring.
type Client interface {
	// Required to load and execute scripts
	Eval(script string, keys []string, args ...interface{}) *redis.Cmd
	EvalSha(sha1 string, keys []string, args ...interface{}) *redis.Cmd
	ScriptExists(hashes ...string) *redis.BoolSliceCmd
	ScriptLoad(script string) *redis.StringCmd

	HGet(key, field string) *redis.StringCmd
	ZRange(key string, start, stop int64) *redis.StringSliceCmd
}

// Results of setSTHScript.
const (
	setStored = iota
	setUnchanged
	setSizeRegression
	setTimestampRegression
	setConflict
)

// setSTHScript atomically checks and replaces the trusted STH.
//
// KEYS[1] is a hash holding the trusted STH and its size, timestamp and
// root. KEYS[2] is a sorted set of every trusted STH, scored by tree size.
// ARGV is size, timestamp, root (hex) and the binary STH.
var setSTHScript = redis.NewScript(`
local size = tonumber(ARGV[1])
local ts = tonumber(ARGV[2])
local cur = redis.call("HMGET", KEYS[1], "size", "timestamp", "root")
if cur[1] then
	local csize = tonumber(cur[1])
	local cts = tonumber(cur[2])
	if size < csize then return 2 end
	if ts < cts then return 3 end
	if size == csize and ts == cts then
		if ARGV[3] == cur[3] then return 1 end
		return 4
	end
end
redis.call("HSET", KEYS[1], "size", ARGV[1], "timestamp", ARGV[2], "root", ARGV[3], "sth", ARGV[4])
redis.call("ZADD", KEYS[2], ARGV[1], ARGV[4])
return 0
`)

// STHStore keeps trusted STHs in Redis under keys starting with Prefix.
type STHStore struct {
	c      Client
	prefix string
}

// New returns a store using c. Keys are namespaced with prefix, which may be
// empty.
func New(c Client, prefix string) *STHStore {
	return &STHStore{c: c, prefix: prefix}
}

// Load preloads the update script. Calling it is optional, but saves sending
// the script on the first update.
func (s *STHStore) Load(ctx context.Context) error {
	return setSTHScript.Load(withClientContext(ctx, s.c)).Err()
}

func (s *STHStore) keys(logID ct.LogID) (trusted, history string) {
	id := hex.EncodeToString(logID[:])
	return fmt.Sprintf("%ssth/%s", s.prefix, id), fmt.Sprintf("%ssth-history/%s", s.prefix, id)
}

// GetTrustedSTH implements storage.STHStore.
func (s *STHStore) GetTrustedSTH(ctx context.Context, logID ct.LogID) (*ct.SignedTreeHead, error) {
	key, _ := s.keys(logID)
	data, err := withClientContext(ctx, s.c).HGet(key, "sth").Bytes()
	switch {
	case err == redis.Nil:
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("redis HGET %s: %v", key, err)
	}
	return storage.UnmarshalSTH(data)
}

// SetTrustedSTH implements storage.STHStore.
func (s *STHStore) SetTrustedSTH(ctx context.Context, logID ct.LogID, sth *ct.SignedTreeHead) error {
	data, err := storage.MarshalSTH(sth)
	if err != nil {
		return err
	}
	key, history := s.keys(logID)
	args := []interface{}{sth.TreeSize, sth.Timestamp, sth.SHA256RootHash.String(), data}
	res, err := setSTHScript.Run(withClientContext(ctx, s.c), []string{key, history}, args...).Int64()
	if err != nil {
		return fmt.Errorf("redis: updating %s: %v", key, err)
	}
	switch res {
	case setStored:
		klog.V(2).Infof("redis: log %v trusted STH now %v", logID, sth)
		return nil
	case setUnchanged:
		return nil
	case setSizeRegression, setTimestampRegression, setConflict:
		// Report the same error as the other stores would.
		prev, err := s.GetTrustedSTH(ctx, logID)
		if err != nil {
			return err
		}
		if err := storage.CheckUpdate(prev, sth); err != nil {
			return err
		}
		return errors.Errorf(errors.InconsistentOrdering, "STH %v rejected by redis (result %d)", sth, res)
	default:
		return fmt.Errorf("redis: unexpected update result %d", res)
	}
}

// History returns every STH trusted for logID, in increasing tree size.
func (s *STHStore) History(ctx context.Context, logID ct.LogID) ([]*ct.SignedTreeHead, error) {
	_, history := s.keys(logID)
	members, err := withClientContext(ctx, s.c).ZRange(history, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis ZRANGE %s: %v", history, err)
	}
	ret := make([]*ct.SignedTreeHead, 0, len(members))
	for _, m := range members {
		sth, err := storage.UnmarshalSTH([]byte(m))
		if err != nil {
			return nil, err
		}
		ret = append(ret, sth)
	}
	return ret, nil
}

func withClientContext(ctx context.Context, client Client) Client {
	type withContextable interface {
		WithContext(context.Context) Client
	}

	switch c := client.(type) {
	case *redis.Client:
		return c.WithContext(ctx)
	case *redis.ClusterClient:
		return c.WithContext(ctx)
	case *redis.Ring:
		return c.WithContext(ctx)
	case withContextable:
		return c.WithContext(ctx)
	}
	return client
}
