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

package markup

import (
	"regexp"
	"strings"
)

// Names are the class and id names used for markers and overlays.
//
// Markers use <span> rather than <acronym> (removed in HTML5) or <abbr>
// (cannot carry several explanations, as happens with re-used airline or
// airfield codes).
type Names struct {
	PossibleMatchClass     string `mapstructure:"possible_match_class"`
	WrapperClass           string `mapstructure:"wrapper_class"`
	InlineExplanationClass string `mapstructure:"inline_explanation_class"`
	TooltipID              string `mapstructure:"tooltip_id"`
	OffTopEdgeClass        string `mapstructure:"off_top_edge_class"`
	OffRightEdgeClass      string `mapstructure:"off_right_edge_class"`
}

func DefaultNames() Names {
	return Names{
		PossibleMatchClass:     "nastt_match",
		WrapperClass:           "nastt_acronym",
		InlineExplanationClass: "nastt_explain",
		TooltipID:              "nastt_tooltip",
		OffTopEdgeClass:        "nastt_offtopedge",
		OffRightEdgeClass:      "nastt_offrightedge",
	}
}

// Merge returns n with every empty name taken from defaults.
func (n Names) Merge(defaults Names) Names {
	pick := func(v, d string) string {
		if strings.TrimSpace(v) == "" {
			return d
		}
		return v
	}
	return Names{
		PossibleMatchClass:     pick(n.PossibleMatchClass, defaults.PossibleMatchClass),
		WrapperClass:           pick(n.WrapperClass, defaults.WrapperClass),
		InlineExplanationClass: pick(n.InlineExplanationClass, defaults.InlineExplanationClass),
		TooltipID:              pick(n.TooltipID, defaults.TooltipID),
		OffTopEdgeClass:        pick(n.OffTopEdgeClass, defaults.OffTopEdgeClass),
		OffRightEdgeClass:      pick(n.OffRightEdgeClass, defaults.OffRightEdgeClass),
	}
}

// StripTooltipTags reduces decorated markup to plain content: inline
// explanations are removed and marker spans are unwrapped to their text.
// Useful where decorated HTML ends up being quoted or edited.
func StripTooltipTags(txt string, names Names) string {
	explanation := regexp.MustCompile(`<span class="` + regexp.QuoteMeta(names.InlineExplanationClass) + `">(.+?)</span>`)
	txt = explanation.ReplaceAllString(txt, "")

	marker := regexp.MustCompile(`<span class="(?:` +
		regexp.QuoteMeta(names.WrapperClass) + `|` + regexp.QuoteMeta(names.PossibleMatchClass) +
		`).*?">(.+?)</span>`)
	return marker.ReplaceAllString(txt, "$1")
}
