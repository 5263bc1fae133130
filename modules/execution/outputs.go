// Copyright 2025 AxonFlow
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

package execution

import (
	"sync"
	"time"
)

// NodeOutput is the result one node produced
type NodeOutput struct {
	NodeID     string                 `json:"node_id"`
	NodeType   string                 `json:"node_type"`
	Data       map[string]interface{} `json:"data"`
	RecordedAt time.Time              `json:"recorded_at"`
}

// Outputs collects node outputs of one workflow run.
// Thread-safe for concurrent access.
type Outputs struct {
	byID  map[string]NodeOutput
	order []string
	mu    sync.RWMutex
}

// NewOutputs creates an empty output store
func NewOutputs() *Outputs {
	return &Outputs{byID: make(map[string]NodeOutput)}
}

// Record stores the output of nodeID, replacing any earlier output of that node
func (o *Outputs) Record(nodeID, nodeType string, data map[string]interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.byID[nodeID]; !exists {
		o.order = append(o.order, nodeID)
	}
	o.byID[nodeID] = NodeOutput{
		NodeID:     nodeID,
		NodeType:   nodeType,
		Data:       data,
		RecordedAt: time.Now(),
	}
}

// ByNodeID returns the output recorded for nodeID
func (o *Outputs) ByNodeID(nodeID string) (NodeOutput, bool) {
	if o == nil {
		return NodeOutput{}, false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	out, ok := o.byID[nodeID]
	return out, ok
}

// ByNodeType returns the most recently recorded output of a node of nodeType
func (o *Outputs) ByNodeType(nodeType string) (NodeOutput, bool) {
	if o == nil {
		return NodeOutput{}, false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()

	var latest NodeOutput
	found := false
	for _, id := range o.order {
		out := o.byID[id]
		if out.NodeType == nodeType && (!found || !out.RecordedAt.Before(latest.RecordedAt)) {
			latest = out
			found = true
		}
	}
	return latest, found
}

// Len returns the number of nodes with a recorded output
func (o *Outputs) Len() int {
	if o == nil {
		return 0
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.byID)
}
