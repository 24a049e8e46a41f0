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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/elastic/go-elasticsearch/v7"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/store"
)

type ElasticsearchConfig struct {
	Host  string
	Port  int
	Index string
}

// esDocument is stored with the code as its id.
type esDocument struct {
	Code        string             `json:"code"`
	Definitions []codes.Definition `json:"definitions"`
}

type esResponse struct {
	Took      int `json:"took"`
	Responses []struct {
		Hits struct {
			Hits []struct {
				ID     string     `json:"_id"`
				Source esDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
		Status int             `json:"status"`
		Error  json.RawMessage `json:"error,omitempty"`
	} `json:"responses"`
}

func NewElasticsearchClient(conf ElasticsearchConfig) (store.Client, error) {
	return newElasticsearchClient(fmt.Sprintf("http://%s:%d", conf.Host, conf.Port), conf.Index)
}

func newElasticsearchClient(address, index string) (store.Client, error) {
	c, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{address},
	})
	if err != nil {
		return nil, err
	}
	return &esClient{
		Client: c,
		index:  index,
	}, nil
}

type esClient struct {
	*elasticsearch.Client
	index string
}

func (e *esClient) Ready() bool {
	res, err := e.Info()
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return res.StatusCode == 200
}

func (e *esClient) NewGetPipeline(size int) store.GetPipeline {
	return &esPipeline{
		esClient: e,
		buf:      bytes.NewBuffer(nil),
		queued:   make([]string, 0, size),
	}
}

func (e *esClient) NewSetPipeline(size int) store.SetPipeline {
	return &esPipeline{
		esClient: e,
		buf:      bytes.NewBuffer(nil),
		queued:   make([]string, 0, size),
	}
}

type esPipeline struct {
	*esClient
	buf    *bytes.Buffer
	queued []string
}

func (p *esPipeline) Set(code string, defs []codes.Definition) {
	meta, _ := json.Marshal(map[string]interface{}{"index": map[string]string{"_id": code}})
	doc, err := json.Marshal(esDocument{Code: code, Definitions: defs})
	if err != nil {
		// Definition marshalling cannot fail.
		panic(err)
	}
	p.buf.Write(meta)
	p.buf.WriteByte('\n')
	p.buf.Write(doc)
	p.buf.WriteByte('\n')
	p.queued = append(p.queued, code)
}

func (p *esPipeline) ExecSet() error {
	if len(p.queued) == 0 {
		return nil
	}
	res, err := p.Bulk(p.buf, p.Bulk.WithIndex(p.index))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.New(res.String())
	}
	return nil
}

func (p *esPipeline) Get(code string) {
	query, _ := json.Marshal(map[string]interface{}{
		"size":  1,
		"query": map[string]interface{}{"term": map[string]string{"code": code}},
	})
	p.buf.WriteString("{}\n")
	p.buf.Write(query)
	p.buf.WriteByte('\n')
	p.queued = append(p.queued, code)
}

func (p *esPipeline) ExecGet(onResult func(string, []codes.Definition) error) error {
	if len(p.queued) == 0 {
		return nil
	}
	res, err := p.Msearch(p.buf, p.Msearch.WithIndex(p.index))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.New(res.String())
	}

	b, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return err
	}
	var esresponse esResponse
	if err := json.Unmarshal(b, &esresponse); err != nil {
		return err
	}
	if len(esresponse.Responses) != len(p.queued) {
		return fmt.Errorf("msearch returned %d responses for %d codes", len(esresponse.Responses), len(p.queued))
	}

	for i, response := range esresponse.Responses {
		if len(response.Error) > 0 {
			return fmt.Errorf("msearch for %s: %s", p.queued[i], response.Error)
		}
		var defs []codes.Definition
		if len(response.Hits.Hits) > 0 {
			defs = response.Hits.Hits[0].Source.Definitions
		}
		if err := onResult(p.queued[i], defs); err != nil {
			return err
		}
	}
	return nil
}

func (p *esPipeline) Size() int {
	return len(p.queued)
}
