/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package remote

import (
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/store"
)

type RedisConfig struct {
	Host      string
	Port      int
	KeyPrefix string `mapstructure:"key_prefix"`
}

func NewRedisClient(conf RedisConfig) store.Client {
	return &redisClient{
		Client: redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%d", conf.Host, conf.Port)}),
		prefix: conf.KeyPrefix,
	}
}

type redisClient struct {
	*redis.Client
	prefix string
}

type redisGetPipeline struct {
	pipe   redis.Pipeliner
	prefix string
	codes  []string
	cmds   []*redis.StringCmd
}

type redisSetPipeline struct {
	pipe   redis.Pipeliner
	prefix string
	values map[string][]codes.Definition
}

func (r *redisClient) NewGetPipeline(size int) store.GetPipeline {
	return &redisGetPipeline{
		pipe:   r.Pipeline(),
		prefix: r.prefix,
		codes:  make([]string, 0, size),
		cmds:   make([]*redis.StringCmd, 0, size),
	}
}

func (r *redisClient) NewSetPipeline(size int) store.SetPipeline {
	return &redisSetPipeline{
		pipe:   r.Pipeline(),
		prefix: r.prefix,
		values: make(map[string][]codes.Definition, size),
	}
}

func (r *redisClient) Ready() bool {
	return r.Ping().Err() == nil
}

// Set replaces the stored definitions of code; definitions queued for the
// same code in one pipeline are merged.
func (r *redisSetPipeline) Set(code string, defs []codes.Definition) {
	r.values[code] = append(r.values[code], defs...)
}

func (r *redisSetPipeline) ExecSet() error {
	if len(r.values) == 0 {
		return nil
	}
	for code, defs := range r.values {
		b, err := json.Marshal(defs)
		if err != nil {
			return err
		}
		r.pipe.Set(r.prefix+code, b, 0)
	}
	_, err := r.pipe.Exec()
	return err
}

func (r *redisSetPipeline) Size() int {
	return len(r.values)
}

func (r *redisGetPipeline) Get(code string) {
	r.codes = append(r.codes, code)
	r.cmds = append(r.cmds, r.pipe.Get(r.prefix+code))
}

func (r *redisGetPipeline) ExecGet(onResult func(string, []codes.Definition) error) error {
	if len(r.cmds) == 0 {
		return nil
	}

	_, err := r.pipe.Exec()
	if err != nil && err != redis.Nil {
		return err
	}

	for i, cmd := range r.cmds {
		b, err := cmd.Bytes()
		if err == redis.Nil {
			if err = onResult(r.codes[i], nil); err != nil {
				return err
			}
			continue
		} else if err != nil {
			return err
		}

		var defs []codes.Definition
		if err = json.Unmarshal(b, &defs); err != nil {
			return err
		}

		if err = onResult(r.codes[i], defs); err != nil {
			return err
		}
	}

	return nil
}

func (r *redisGetPipeline) Size() int {
	return len(r.cmds)
}
