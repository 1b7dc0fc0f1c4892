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

// Package rag is the optional retrieval collaborator (spec §6): GetContext
// folds the top matches into a single context string for the rag_query
// handler, Retrieve exposes the ranked matches themselves for callers that
// want the detail. There is no indexing pipeline here — documents are
// supplied up front; ranking is plain keyword overlap, the same strategy
// the rest of this codebase's corpus uses as its no-vector-database
// fallback.
package rag

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Document is one retrievable unit of content.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// SearchResult is one ranked match.
type SearchResult struct {
	Content  string
	Score    float64
	Metadata map[string]string
}

// Retriever is the contract the router's rag_query handler depends on.
type Retriever interface {
	GetContext(ctx context.Context, query string, topK int) (string, bool)
	Retrieve(ctx context.Context, query string, topK int) ([]SearchResult, error)
}

// KeywordStore is an in-process Retriever scoring documents by keyword
// overlap. It holds its corpus in memory; there is no persistence or
// background indexing.
type KeywordStore struct {
	mu   sync.RWMutex
	docs []Document
}

// NewKeywordStore builds a store over docs.
func NewKeywordStore(docs []Document) *KeywordStore {
	store := &KeywordStore{}
	store.docs = append(store.docs, docs...)
	return store
}

// Add appends a document to the corpus.
func (s *KeywordStore) Add(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
}

// Retrieve ranks the corpus by the fraction of query terms each document
// contains, descending, and returns the top topK with score > 0.
func (s *KeywordStore) Retrieve(_ context.Context, query string, topK int) ([]SearchResult, error) {
	terms := tokenize(query)
	if len(terms) == 0 || topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	docs := make([]Document, len(s.docs))
	copy(docs, s.docs)
	s.mu.RUnlock()

	results := make([]SearchResult, 0, len(docs))
	for _, doc := range docs {
		score := keywordScore(terms, doc.Content)
		if score <= 0 {
			continue
		}
		results = append(results, SearchResult{Content: doc.Content, Score: score, Metadata: doc.Metadata})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// GetContext joins the top topK matches' content with blank lines, the
// shape the rag_query handler drops straight into its reply.
func (s *KeywordStore) GetContext(ctx context.Context, query string, topK int) (string, bool) {
	results, err := s.Retrieve(ctx, query, topK)
	if err != nil || len(results) == 0 {
		return "", false
	}

	chunks := make([]string, len(results))
	for i, r := range results {
		chunks[i] = r.Content
	}
	return strings.Join(chunks, "\n\n"), true
}

func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?:;\"'()")
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func keywordScore(terms []string, content string) float64 {
	lower := strings.ToLower(content)
	hits := 0
	for _, t := range terms {
		if strings.Contains(lower, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}
