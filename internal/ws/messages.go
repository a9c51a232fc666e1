package ws

import "encoding/json"

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "auctions/created"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

// wrapRedisEvent turns
//
//	{"event":"updated","auction_id":"a1","data":{…}}
//
// into
//
//	{"event":"auctions/updated","body":{"auction_id":"a1","data":{…}}}
func wrapRedisEvent(payload string) ([]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, err
	}

	var evt string
	if v, ok := raw["event"]; ok {
		_ = json.Unmarshal(v, &evt)
	}
	if evt == "" {
		evt = "unknown"
	}
	delete(raw, "event")

	body, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: "auctions/" + evt, Body: body})
}
