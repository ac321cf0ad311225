package effects

import (
	"encoding/json"
	"strings"
)

// qualifyingTypes are the wire event types that carry a nested "item" with
// an "id" the dispatcher must qualify. Every other event type (turn.*,
// error, ...) passes through unchanged.
var qualifyingTypes = map[string]bool{
	"item.started":   true,
	"item.updated":   true,
	"item.completed": true,
}

// qualifyEvent rewrites a raw agent event's item.id to "<scope>/<raw_id>"
// unless it already carries that scope's prefix, so that replaying a
// historical conversation's items can never collide with a live turn's.
// Events this dispatcher doesn't recognize as carrying an item id are
// returned unchanged rather than rejected -- a forward-compatible event
// shape should not fail the turn.
func qualifyEvent(scope string, raw json.RawMessage) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return raw, nil
	}

	typeRaw, ok := envelope["type"]
	if !ok {
		return raw, nil
	}
	var typeName string
	if err := json.Unmarshal(typeRaw, &typeName); err != nil || !qualifyingTypes[typeName] {
		return raw, nil
	}

	itemRaw, ok := envelope["item"]
	if !ok {
		return raw, nil
	}
	var item map[string]json.RawMessage
	if err := json.Unmarshal(itemRaw, &item); err != nil {
		return raw, nil
	}

	idRaw, ok := item["id"]
	if !ok {
		return raw, nil
	}
	var id string
	if err := json.Unmarshal(idRaw, &id); err != nil {
		return raw, nil
	}

	qualified := qualifyID(scope, id)
	idJSON, err := json.Marshal(qualified)
	if err != nil {
		return raw, err
	}
	item["id"] = idJSON
	itemJSON, err := json.Marshal(item)
	if err != nil {
		return raw, err
	}
	envelope["item"] = itemJSON

	out, err := json.Marshal(envelope)
	if err != nil {
		return raw, err
	}
	return out, nil
}

// qualifyID prefixes id with scope unless it already carries that prefix,
// so applying it twice is a no-op.
func qualifyID(scope, id string) string {
	prefix := scope + "/"
	if strings.HasPrefix(id, prefix) {
		return id
	}
	return prefix + id
}
