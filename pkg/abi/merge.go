package abi

import "sort"

// MergeStats counts what one Add contributed.
type MergeStats struct {
	NewFunctions       int `json:"new_functions"`
	NewEvents          int `json:"new_events"`
	DuplicateFunctions int `json:"duplicate_functions"`
}

// Merger combines ABIs from multiple deployments of the same contract into
// one deduplicated ABI. Proxies and multi-chain deployments often expose
// slightly different surfaces per chain; merging them yields the union.
type Merger struct {
	functions map[string]Entry
	events    map[string]Entry
	other     []Entry
}

// NewMerger returns an empty Merger.
func NewMerger() *Merger {
	return &Merger{
		functions: make(map[string]Entry),
		events:    make(map[string]Entry),
	}
}

// Add folds an ABI into the merger. Functions and events deduplicate on
// canonical signature with the first-seen entry kept; constructor, fallback
// and receive are kept once each.
func (m *Merger) Add(a ABI) MergeStats {
	var stats MergeStats
	for _, e := range a {
		switch e.Type {
		case "function":
			if e.Name == "" {
				continue
			}
			s := e.Signature()
			if _, ok := m.functions[s]; ok {
				stats.DuplicateFunctions++
				continue
			}
			m.functions[s] = e
			stats.NewFunctions++
		case "event":
			if e.Name == "" {
				continue
			}
			s := e.Signature()
			if _, ok := m.events[s]; ok {
				continue
			}
			m.events[s] = e
			stats.NewEvents++
		case "constructor", "fallback", "receive":
			if !m.hasOther(e.Type) {
				m.other = append(m.other, e)
			}
		}
	}
	return stats
}

func (m *Merger) hasOther(typ string) bool {
	for _, e := range m.other {
		if e.Type == typ {
			return true
		}
	}
	return false
}

// Merged returns the combined ABI: constructor first, functions sorted by
// name, events sorted by name, then fallback and receive.
func (m *Merger) Merged() ABI {
	var out ABI
	for _, e := range m.other {
		if e.Type == "constructor" {
			out = append(out, e)
		}
	}
	out = append(out, sortedByName(m.functions)...)
	out = append(out, sortedByName(m.events)...)
	for _, e := range m.other {
		if e.Type == "fallback" || e.Type == "receive" {
			out = append(out, e)
		}
	}
	return out
}

// Totals reports the size of the merged set.
func (m *Merger) Totals() (functions, events, other int) {
	return len(m.functions), len(m.events), len(m.other)
}

func sortedByName(entries map[string]Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Signature() < out[j].Signature()
	})
	return out
}
