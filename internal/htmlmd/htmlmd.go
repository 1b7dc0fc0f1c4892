// Copyright 2025 Kadir Pekel
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

// Package htmlmd converts Confluence storage-representation HTML into
// Markdown for schemas whose contentFormat enum prefers it (spec §4.4 wiki
// creation, step 4). It is a fixed set of substitutions, not a general HTML
// parser: the input is always Confluence's own storage markup, never
// arbitrary third-party HTML.
package htmlmd

import (
	"regexp"
	"strings"
)

var (
	headingRegex    = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	linkRegex       = regexp.MustCompile(`(?is)<a\s+[^>]*href=["']([^"']*)["'][^>]*>(.*?)</a>`)
	boldRegex       = regexp.MustCompile(`(?is)<(b|strong)[^>]*>(.*?)</(b|strong)>`)
	italicRegex     = regexp.MustCompile(`(?is)<(i|em)[^>]*>(.*?)</(i|em)>`)
	listItemRegex   = regexp.MustCompile(`(?is)<li[^>]*>(.*?)</li>`)
	paragraphRegex  = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	brRegex         = regexp.MustCompile(`(?is)<br\s*/?>`)
	listWrapperRe   = regexp.MustCompile(`(?is)</?(ul|ol)[^>]*>`)
	residualTagRe   = regexp.MustCompile(`(?s)<[^>]+>`)
	blankRunRegex   = regexp.MustCompile(`\n{3,}`)
)

// Convert turns Confluence storage HTML into Markdown via the fixed
// substitution pipeline: headings, links, emphasis, lists, paragraphs, then
// strip anything left over and collapse blank runs.
func Convert(html string) string {
	out := html

	out = headingRegex.ReplaceAllStringFunc(out, func(m string) string {
		groups := headingRegex.FindStringSubmatch(m)
		level := len(groups[1])
		return "\n" + strings.Repeat("#", level) + " " + strings.TrimSpace(groups[2]) + "\n"
	})

	out = linkRegex.ReplaceAllString(out, "[$2]($1)")
	out = boldRegex.ReplaceAllString(out, "**$2**")
	out = italicRegex.ReplaceAllString(out, "*$2*")

	out = listItemRegex.ReplaceAllString(out, "- $1\n")
	out = listWrapperRe.ReplaceAllString(out, "\n")

	out = paragraphRegex.ReplaceAllString(out, "$1\n\n")
	out = brRegex.ReplaceAllString(out, "\n")

	out = residualTagRe.ReplaceAllString(out, "")

	out = unescapeEntities(out)

	out = blankRunRegex.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

var htmlEntities = map[string]string{
	"&amp;":  "&",
	"&lt;":   "<",
	"&gt;":   ">",
	"&quot;": `"`,
	"&#39;":  "'",
	"&nbsp;": " ",
}

func unescapeEntities(s string) string {
	for entity, replacement := range htmlEntities {
		s = strings.ReplaceAll(s, entity, replacement)
	}
	return s
}
