// store/memory.go - In-memory Store for tests and local development
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// keyAttrs lists the key attributes per table. Query with no index matches
// on the first attribute; Get and Delete match on all of them.
var keyAttrs = map[string][]string{
	"Tenants":               {"tenantId"},
	"Admins":                {"adminId"},
	"QuizSessions":          {"sessionId"},
	"QuizRounds":            {"sessionId", "roundNumber"},
	"GlobalParticipants":    {"participantId"},
	"SessionParticipations": {"participationId"},
	"Answers":               {"answerId"},
}

// indexAttrs maps secondary index names to the attribute they cover.
var indexAttrs = map[string]string{
	IndexUsername:    "username",
	IndexTenant:      "tenantId",
	IndexParticipant: "participantId",
	IndexSession:     "sessionId",
	IndexSessionRnd:  "sessionId",
}

// Memory implements Store over plain maps. Items are held as decoded JSON
// documents in insertion order, so query results are deterministic.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][]map[string]any
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]map[string]any)}
}

// toDoc round-trips an arbitrary struct through JSON into a generic map.
func toDoc(item any) (map[string]any, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDoc(doc map[string]any, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func fromDocs(docs []map[string]any, out any) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// attrEqual compares via fmt.Sprint so int64(3) matches float64(3) after a
// JSON round trip.
func attrEqual(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func matchesKey(doc map[string]any, attrs []string, key Key) bool {
	for _, attr := range attrs {
		want, ok := key[attr]
		if !ok {
			return false
		}
		if !attrEqual(doc[attr], want) {
			return false
		}
	}
	return true
}

func tableKeyAttrs(table string) ([]string, error) {
	attrs, ok := keyAttrs[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return attrs, nil
}

func (m *Memory) Get(ctx context.Context, table string, key Key, out any) (bool, error) {
	attrs, err := tableKeyAttrs(table)
	if err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, doc := range m.tables[table] {
		if matchesKey(doc, attrs, key) {
			return true, fromDoc(doc, out)
		}
	}
	return false, nil
}

func (m *Memory) Put(ctx context.Context, table string, item any) error {
	attrs, err := tableKeyAttrs(table)
	if err != nil {
		return err
	}
	doc, err := toDoc(item)
	if err != nil {
		return err
	}
	key := Key{}
	for _, attr := range attrs {
		key[attr] = doc[attr]
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.tables[table] {
		if matchesKey(existing, attrs, key) {
			m.tables[table][i] = doc
			return nil
		}
	}
	m.tables[table] = append(m.tables[table], doc)
	return nil
}

func (m *Memory) Delete(ctx context.Context, table string, key Key) error {
	attrs, err := tableKeyAttrs(table)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.tables[table]
	for i, doc := range docs {
		if matchesKey(doc, attrs, key) {
			m.tables[table] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory) Query(ctx context.Context, table, index, attr string, value any, out any) error {
	if _, err := tableKeyAttrs(table); err != nil {
		return err
	}
	if index != "" {
		if _, ok := indexAttrs[index]; !ok {
			return fmt.Errorf("unknown index %q", index)
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []map[string]any
	for _, doc := range m.tables[table] {
		if attrEqual(doc[attr], value) {
			matched = append(matched, doc)
		}
	}
	return fromDocs(matched, out)
}

func (m *Memory) Scan(ctx context.Context, table string, out any) error {
	if _, err := tableKeyAttrs(table); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fromDocs(m.tables[table], out)
}

func (m *Memory) Update(ctx context.Context, table string, key Key, set map[string]any) error {
	attrs, err := tableKeyAttrs(table)
	if err != nil {
		return err
	}
	// Normalize values the same way Put does.
	patch, err := toDoc(set)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.tables[table] {
		if matchesKey(doc, attrs, key) {
			for attr, value := range patch {
				doc[attr] = value
			}
			return nil
		}
	}
	return fmt.Errorf("update %s: item not found", table)
}
