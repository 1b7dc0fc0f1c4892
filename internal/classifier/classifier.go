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

// Package classifier is the intent classifier (C2): keyword/regex rules
// first, an LLM fallback second, each fallback decision cached in a bounded
// FIFO map keyed by normalized input.
package classifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/kadirpekel/ticketflow/internal/llmprovider"
	"github.com/kadirpekel/ticketflow/internal/model"
)

// Capabilities reports which external capabilities are configured, since
// several rules only fire when the corresponding handler can actually act
// (spec §4.2 steps 2-4).
type Capabilities struct {
	TicketingEnabled bool
	RetrievalEnabled bool
	DelegationEnabled bool
}

// Config configures the classifier's LLM fallback stage.
type Config struct {
	UseLLM              bool
	LLMTimeout          time.Duration
	ConfidenceThreshold float64
	LLMTemperature      float64
	CacheSize           int
}

// Classifier implements the C2 pipeline.
type Classifier struct {
	cfg   Config
	caps  Capabilities
	llm   llmprovider.Provider
	cache *fifoCache
}

// New builds a Classifier. llm may be nil when cfg.UseLLM is false.
func New(cfg Config, caps Capabilities, llm llmprovider.Provider) *Classifier {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 100
	}
	return &Classifier{cfg: cfg, caps: caps, llm: llm, cache: newFIFOCache(cfg.CacheSize)}
}

// Classify runs the full pipeline for one input.
func (c *Classifier) Classify(ctx context.Context, userInput string) model.IntentDecision {
	lower := strings.ToLower(userInput)

	if _, ok := containsAny(lower, metaToolingPhrases); ok {
		return model.IntentDecision{Intent: model.IntentGeneralChat, Confidence: 1.0, Reason: "meta-tooling question", Source: model.SourceKeyword}
	}

	if matched, ok := containsAny(lower, delegationPhrases); ok && c.caps.DelegationEnabled {
		return model.IntentDecision{Intent: model.IntentAgentDelegation, Confidence: 1.0, Reason: "delegation keyword: " + matched, Source: model.SourceKeyword}
	}

	if c.matchesJiraCreation(lower) && c.caps.TicketingEnabled {
		return model.IntentDecision{Intent: model.IntentJiraCreation, Confidence: 1.0, Reason: "jira creation rule matched", Source: model.SourceKeyword}
	}

	if c.matchesRetrieval(lower, userInput) && c.caps.RetrievalEnabled {
		return model.IntentDecision{Intent: model.IntentRAGQuery, Confidence: 1.0, Reason: "retrieval keyword matched", Source: model.SourceKeyword}
	}

	if _, ok := containsAnyWord(lower, generalChatKeywords); ok {
		return model.IntentDecision{Intent: model.IntentGeneralChat, Confidence: 1.0, Reason: "greeting keyword matched", Source: model.SourceKeyword}
	}

	if c.cfg.UseLLM && c.llm != nil {
		if decision, ok := c.classifyWithLLM(ctx, userInput); ok {
			return decision
		}
	}

	return model.IntentDecision{Intent: model.IntentGeneralChat, Confidence: 0, Reason: "no rule matched, LLM fallback unavailable or inconclusive", Source: model.SourceDefault}
}

func (c *Classifier) matchesJiraCreation(lower string) bool {
	if _, ok := containsAny(lower, jiraCreationKeywords); ok {
		return true
	}
	_, ok := matchesAny(lower, jiraCreationPatterns)
	return ok
}

// matchesRetrieval checks the keyword list against the lowercased input and
// the project-key pattern against the original, since keys are upper case.
func (c *Classifier) matchesRetrieval(lower, original string) bool {
	if _, ok := containsAny(lower, retrievalKeywords); ok {
		return true
	}
	return projectKeyPattern.MatchString(original)
}

// llmIntentResult is the JSON shape the fallback prompt demands.
type llmIntentResult struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

var jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)

// classifyWithLLM consults the cache first, then launches the LLM call on
// a worker goroutine bounded by cfg.LLMTimeout. A timeout, transport error,
// or malformed response is treated as "rule 6 did not fire" (ok=false),
// letting the caller fall through to the default.
func (c *Classifier) classifyWithLLM(ctx context.Context, userInput string) (model.IntentDecision, bool) {
	key := normalizeCacheKey(userInput)
	if cached, ok := c.cache.Get(key); ok {
		decision := cached
		decision.Source = model.SourceCache
		return decision, true
	}

	llmCtx, cancel := context.WithTimeout(ctx, c.cfg.LLMTimeout)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := c.llm.Generate(llmCtx, intentSystemPrompt, userInput, c.cfg.LLMTemperature, true)
		done <- outcome{text: text, err: err}
	}()

	var text string
	select {
	case res := <-done:
		if res.err != nil {
			slog.Warn("classifier: llm call failed, falling back to default", "error", res.err)
			return model.IntentDecision{}, false
		}
		text = res.text
	case <-llmCtx.Done():
		slog.Warn("classifier: llm call timed out, falling back to default")
		return model.IntentDecision{}, false
	}

	parsed, ok := parseLLMIntentResult(text)
	if !ok {
		slog.Warn("classifier: llm response not parseable as intent json")
		return model.IntentDecision{}, false
	}

	if parsed.Confidence < c.cfg.ConfidenceThreshold {
		decision := model.IntentDecision{
			Intent:     model.IntentGeneralChat,
			Confidence: parsed.Confidence,
			Reason:     "below confidence threshold: " + parsed.Reasoning,
			Source:     model.SourceLLM,
		}
		c.cache.Put(key, decision)
		return decision, true
	}

	intent := model.Intent(parsed.Intent)
	if !isKnownIntent(intent) {
		return model.IntentDecision{}, false
	}

	decision := model.IntentDecision{
		Intent:     intent,
		Confidence: parsed.Confidence,
		Reason:     parsed.Reasoning,
		Source:     model.SourceLLM,
	}
	c.cache.Put(key, decision)
	return decision, true
}

func isKnownIntent(i model.Intent) bool {
	switch i {
	case model.IntentJiraCreation, model.IntentRAGQuery, model.IntentGeneralChat,
		model.IntentAgentDelegation, model.IntentUnknown:
		return true
	default:
		return false
	}
}

// parseLLMIntentResult strips markdown code fences and attempts a direct
// JSON parse, falling back to a balanced-brace regex extraction.
func parseLLMIntentResult(text string) (llmIntentResult, bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result llmIntentResult
	if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
		return clampConfidence(result), true
	}

	if match := jsonObjectRegex.FindString(cleaned); match != "" {
		if err := json.Unmarshal([]byte(match), &result); err == nil {
			return clampConfidence(result), true
		}
	}

	return llmIntentResult{}, false
}

func clampConfidence(r llmIntentResult) llmIntentResult {
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}
	return r
}

func normalizeCacheKey(input string) string {
	return strings.TrimSpace(strings.ToLower(input))
}

const intentSystemPrompt = `You are an intent classifier for a conversational assistant. ` +
	`Classify the user's message into exactly one of: jira_creation, rag_query, general_chat, agent_delegation, unknown. ` +
	`Respond with a JSON object: {"intent": "...", "confidence": 0.0-1.0, "reasoning": "..."}.`
