// Package extract scans completed tool-call results for product references.
//
// The tool-result surface is unversioned by design: different tools (and
// different platform versions) return search hits in incompatible shapes.
// The extractor is therefore a best-effort adapter built as an ordered list
// of independent pure shape matchers whose outputs are unioned. Its only
// hard contract: never panics, returns 0..3 unique ids in first-seen order,
// deterministic for fixed input.
package extract

import (
	"github.com/bytedance/sonic"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/conversation"
)

// MaxReferences caps how many product references one message yields.
const MaxReferences = 3

// Reference is one extracted product identifier and the step it came from.
type Reference struct {
	ProductID string
	StepIndex int
}

// matcher probes one result value for product ids. Matchers are independent
// and non-exclusive; a value may satisfy several, dedup absorbs the overlap.
// New shapes are supported by appending a matcher, not by growing a
// conditional.
type matcher func(v interface{}) []string

var matchers = []matcher{
	matchDataReference,  // {data: {reference: {id}}}
	matchContentDocs,    // {content: <json string or object>} -> {documents: [...]}
	matchBareArray,      // [{id} | {_source: {id}}]
	matchTopLevelID,     // {_id}
	matchTopLevelSource, // {_source: {id}}
	matchReference,      // {reference: {_id} | {id}}
}

// References scans the tool-call steps of one completed message and returns
// up to MaxReferences unique product references, first-seen order.
func References(steps []conversation.Step) []Reference {
	var refs []Reference
	seen := make(map[string]bool)

	for i, step := range steps {
		if step.Kind != conversation.StepToolCall || !step.ResultsSet {
			continue
		}
		for _, item := range step.Results {
			for _, m := range matchers {
				for _, id := range m(item) {
					if id == "" || seen[id] {
						continue
					}
					seen[id] = true
					refs = append(refs, Reference{ProductID: id, StepIndex: i})
					if len(refs) == MaxReferences {
						return refs
					}
				}
			}
		}
	}
	return refs
}

// ProductIDs is References flattened to the ids alone.
func ProductIDs(steps []conversation.Step) []string {
	refs := References(steps)
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ProductID)
	}
	return ids
}

// ---- shape matchers ----

func matchDataReference(v interface{}) []string {
	data, ok := field(v, "data")
	if !ok {
		return nil
	}
	ref, ok := field(data, "reference")
	if !ok {
		return nil
	}
	return idsFrom(ref, "id")
}

func matchContentDocs(v interface{}) []string {
	content, ok := field(v, "content")
	if !ok {
		return nil
	}
	// content arrives either as an embedded object or as a JSON string
	// needing its own parse; unparseable strings contribute nothing.
	if raw, ok := content.(string); ok {
		var parsed interface{}
		if err := sonic.UnmarshalString(raw, &parsed); err != nil {
			return nil
		}
		content = parsed
	}

	docs, ok := field(content, "documents")
	if !ok {
		return nil
	}
	return docIDs(docs)
}

func matchBareArray(v interface{}) []string {
	if _, isArray := v.([]interface{}); !isArray {
		return nil
	}
	return docIDs(v)
}

func matchTopLevelID(v interface{}) []string {
	return idsFrom(v, "_id")
}

func matchTopLevelSource(v interface{}) []string {
	source, ok := field(v, "_source")
	if !ok {
		return nil
	}
	return idsFrom(source, "id")
}

func matchReference(v interface{}) []string {
	ref, ok := field(v, "reference")
	if !ok {
		return nil
	}
	if ids := idsFrom(ref, "_id"); len(ids) > 0 {
		return ids
	}
	return idsFrom(ref, "id")
}

// ---- helpers ----

// docIDs pulls ids from a document list of {id} or {_source:{id}} entries.
func docIDs(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var ids []string
	for _, item := range items {
		if found := idsFrom(item, "id"); len(found) > 0 {
			ids = append(ids, found...)
			continue
		}
		if source, ok := field(item, "_source"); ok {
			ids = append(ids, idsFrom(source, "id")...)
		}
	}
	return ids
}

func idsFrom(v interface{}, key string) []string {
	raw, ok := field(v, key)
	if !ok {
		return nil
	}
	if id, ok := raw.(string); ok && id != "" {
		return []string{id}
	}
	return nil
}

func field(v interface{}, key string) (interface{}, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	val, ok := m[key]
	return val, ok
}
