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

package classifier

import (
	"sync"

	"github.com/kadirpekel/ticketflow/internal/model"
)

// fifoCache is a bounded, insertion-ordered map with FIFO eviction, safe
// for concurrent use from the orchestrator's request handlers (spec §4.2
// "Caching"/"Concurrency").
type fifoCache struct {
	mu       sync.Mutex
	capacity int
	order    []string
	entries  map[string]model.IntentDecision
}

func newFIFOCache(capacity int) *fifoCache {
	return &fifoCache{
		capacity: capacity,
		entries:  make(map[string]model.IntentDecision, capacity),
	}
}

func (c *fifoCache) Get(key string) (model.IntentDecision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	decision, ok := c.entries[key]
	return decision, ok
}

func (c *fifoCache) Put(key string, decision model.IntentDecision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = decision
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.order = append(c.order, key)
	c.entries[key] = decision
}

func (c *fifoCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
