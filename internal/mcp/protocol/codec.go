package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type idKind int

const (
	idAbsent idKind = iota
	idNumber
	idString
)

// ID is a request correlation id. It is echoed back exactly as received:
// a numeric id keeps its literal digits, a string id stays a string.
type ID struct {
	kind idKind
	num  json.Number
	str  string
}

// NumberID returns a numeric id
func NumberID(n json.Number) ID {
	return ID{kind: idNumber, num: n}
}

// StringID returns a string id
func StringID(s string) ID {
	return ID{kind: idString, str: s}
}

// IsNotification reports whether no reply may be sent for this id.
// Absent ids and empty string ids both mean "no reply expected".
func (id ID) IsNotification() bool {
	switch id.kind {
	case idNumber:
		return false
	case idString:
		return id.str == ""
	default:
		return true
	}
}

// String renders the id for logs
func (id ID) String() string {
	switch id.kind {
	case idNumber:
		return id.num.String()
	case idString:
		return fmt.Sprintf("%q", id.str)
	default:
		return "<none>"
	}
}

// MarshalJSON writes the id back in its original JSON type
func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idNumber:
		return []byte(id.num.String()), nil
	case idString:
		return json.Marshal(id.str)
	default:
		return []byte("null"), nil
	}
}

// Message is one decoded input line. All accessors are total: they report
// absence with ok=false instead of failing.
type Message struct {
	raw map[string]interface{}
}

// Parse decodes one line into a Message. Invalid JSON yields a parse error,
// valid JSON that is not an object yields an invalid request error.
func Parse(line string) (*Message, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(line)))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, NewParseError(err)
	}
	if dec.More() {
		return nil, NewParseError(fmt.Errorf("unexpected data after JSON value"))
	}

	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, NewInvalidRequestError(fmt.Sprintf("request must be a JSON object, got %s", jsonKind(v)))
	}
	return &Message{raw: obj}, nil
}

// ID extracts the correlation id. Values that are neither numbers nor
// strings normalize to an absent id.
func (m *Message) ID() ID {
	switch v := m.raw["id"].(type) {
	case json.Number:
		return NumberID(v)
	case string:
		return StringID(v)
	default:
		return ID{}
	}
}

// Method returns the method name, ok=false when missing or not a string
func (m *Message) Method() (string, bool) {
	s, ok := m.raw["method"].(string)
	return s, ok
}

// Lookup walks nested objects following path
func (m *Message) Lookup(path ...string) (interface{}, bool) {
	var cur interface{} = m.raw
	for _, key := range path {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// StringAt returns the string at path
func (m *Message) StringAt(path ...string) (string, bool) {
	v, ok := m.Lookup(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ObjectAt returns the object at path
func (m *Message) ObjectAt(path ...string) (map[string]interface{}, bool) {
	v, ok := m.Lookup(path...)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]interface{})
	return obj, ok
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	default:
		return "object"
	}
}

// EncodeSuccess serializes a result envelope as one newline-terminated line
func EncodeSuccess(id ID, result interface{}) ([]byte, error) {
	return encode(JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
	})
}

// EncodeError serializes an error envelope as one newline-terminated line.
// It does not check whether id expects a reply; callers must.
func EncodeError(id ID, rpcErr *JSONRPCError) ([]byte, error) {
	return encode(JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   rpcErr,
	})
}

func encode(resp JSONRPCResponse) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return buf.Bytes(), nil
}
