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

package dict

import (
	"io"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/store"
)

// Import writes every entry of the dictionary to client, pipelineSize codes
// at a time, and returns the number of codes written. The redis store
// replaces a code's definitions on each write, so rows for one code should be
// kept together.
func Import(r io.Reader, conf DictConfig, client store.Client, pipelineSize int) (int, error) {
	if pipelineSize <= 0 {
		pipelineSize = 1000
	}

	written := 0
	pipe := client.NewSetPipeline(pipelineSize)
	var last string
	flush := func() error {
		if pipe.Size() == 0 {
			return nil
		}
		if err := pipe.ExecSet(); err != nil {
			return err
		}
		written += pipe.Size()
		log.Debug().Str("dictionary", conf.Name).Int("codes", written).Msg("pipeline written")
		pipe = client.NewSetPipeline(pipelineSize)
		return nil
	}

	onEntry := func(entry Entry) error {
		if entry.Code != last && pipe.Size() >= pipelineSize {
			if err := flush(); err != nil {
				return err
			}
		}
		last = entry.Code
		pipe.Set(entry.Code, entry.Definitions)
		return nil
	}

	if err := ReadWithCallback(r, conf.Format, onEntry, flush); err != nil {
		return written, err
	}
	log.Info().Str("dictionary", conf.Name).Int("codes", written).Msg("dictionary imported")
	return written, nil
}
