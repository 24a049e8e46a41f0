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

package apitest

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/lookup"
)

// These must be set for these tests to run, e.g.
// CODE_TOOLTIPS_ANNOTATION_API=http://localhost:8080 CODE_TOOLTIPS_LOOKUP_API=http://localhost:8081
const (
	annotationEnvVar = "CODE_TOOLTIPS_ANNOTATION_API"
	lookupEnvVar     = "CODE_TOOLTIPS_LOOKUP_API"
)

func TestMain(m *testing.M) {
	if os.Getenv(annotationEnvVar) == "" || os.Getenv(lookupEnvVar) == "" {
		fmt.Printf("SKIPPING API TESTS: set %s and %s to run API tests\n", annotationEnvVar, lookupEnvVar)
		return
	}

	os.Exit(m.Run())
}

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Suite")
}

var _ = Describe("Code tooltips", func() {

	Describe("lookup api", func() {

		It("resolves a known code", func() {
			results, err := lookup.NewHttpClient(os.Getenv(lookupEnvVar)+"/codes").
				Lookup(context.Background(), []string{"LHR", "QQQQ"})

			Expect(err).Should(BeNil())
			Expect(results).Should(HaveKey("LHR"))
			Expect(results).ShouldNot(HaveKey("QQQQ"))
			Expect(codes.Explain(results["LHR"])).ShouldNot(BeEmpty())
		})
	})

	Describe("annotation api", func() {

		It("decorates codes inline", func() {
			html := annotate("/annotate?renderer=inline", "<html><body><p>Arriving at LHR</p></body></html>")

			Expect(html).Should(ContainSubstring(`<span class="nastt_acronym">LHR</span><span class="nastt_explain"> (`))
		})

		It("leaves unknown codes undecorated", func() {
			html := annotate("/annotate", "<html><body><p>QQQQ</p></body></html>")

			Expect(html).Should(ContainSubstring(`<span class="nastt_match">QQQQ</span>`))
			Expect(html).ShouldNot(ContainSubstring("nastt_acronym"))
		})
	})
})

func annotate(path, source string) string {
	res, err := http.Post(os.Getenv(annotationEnvVar)+path, "text/html", strings.NewReader(source))
	Expect(err).Should(BeNil())
	defer res.Body.Close()
	Expect(res.StatusCode).Should(Equal(200))

	body, err := ioutil.ReadAll(res.Body)
	Expect(err).Should(BeNil())
	return string(body)
}
