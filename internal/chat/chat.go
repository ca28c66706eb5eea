// Package chat models the request/response body the host pipeline hands to
// the filter: a message list whose content is either a plain string or a
// list of typed blocks, plus attached file references. Unknown JSON fields
// are carried through untouched so the filter never corrupts fields it does
// not understand.
package chat

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Body is one chat payload, inbound (user request) or outbound (model
// response); both directions share the same wire shape.
type Body struct {
	Messages []Message
	Files    []FileRef
	Metadata *Metadata

	raw map[string]json.RawMessage
}

// Message is one chat message.
type Message struct {
	Role    string
	Content Content

	raw map[string]json.RawMessage
}

// Content is either a plain string or a list of typed blocks.
type Content struct {
	Text   string
	Blocks []Block
	list   bool
}

// Block is one typed content block; only text blocks are interpreted, the
// rest round-trip through raw.
type Block struct {
	Type string
	Text string

	raw map[string]json.RawMessage
}

// FileRef references one attachment by host-assigned id.
type FileRef struct {
	Type string
	ID   string
	Name string

	raw map[string]json.RawMessage
}

// Metadata is the request metadata object; some hosts duplicate the file
// list here and both copies must stay in sync.
type Metadata struct {
	Files []FileRef

	raw map[string]json.RawMessage
}

// NewString builds a plain-string content value.
func NewString(text string) Content {
	return Content{Text: text}
}

// NewBlocks builds a list content value.
func NewBlocks(blocks []Block) Content {
	return Content{Blocks: blocks, list: true}
}

// IsList reports whether the content was a block list on the wire.
func (c Content) IsList() bool { return c.list }

// PlainText returns the scannable text of the content: the string itself,
// or all text-block segments joined with single spaces.
func (c Content) PlainText() string {
	if !c.list {
		return c.Text
	}
	parts := make([]string, 0, len(c.Blocks))
	for _, b := range c.Blocks {
		if b.Type == "text" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, " ")
}

// IsBlank reports whether the content has no non-whitespace text. For block
// lists this checks each text block independently, matching how the empty
// content normalization is applied per block.
func (c Content) IsBlank() bool {
	if c.list {
		for _, b := range c.Blocks {
			if b.Type == "text" && strings.TrimSpace(b.Text) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(c.Text) == ""
}

// Clone deep-copies the body so the redact path can build a new outgoing
// value without mutating the caller's copy.
func (b *Body) Clone() *Body {
	if b == nil {
		return nil
	}
	out := &Body{
		Messages: make([]Message, len(b.Messages)),
		Files:    append([]FileRef(nil), b.Files...),
		raw:      cloneRaw(b.raw),
	}
	for i, m := range b.Messages {
		out.Messages[i] = m.clone()
	}
	if b.Metadata != nil {
		out.Metadata = &Metadata{
			Files: append([]FileRef(nil), b.Metadata.Files...),
			raw:   cloneRaw(b.Metadata.raw),
		}
	}
	return out
}

func (m Message) clone() Message {
	out := Message{Role: m.Role, raw: cloneRaw(m.raw)}
	out.Content = Content{Text: m.Content.Text, list: m.Content.list}
	if m.Content.Blocks != nil {
		out.Content.Blocks = append([]Block(nil), m.Content.Blocks...)
	}
	return out
}

func cloneRaw(raw map[string]json.RawMessage) map[string]json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	return out
}

// --- JSON round-tripping -------------------------------------------------

func (b *Body) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.raw = raw
	if v, ok := raw["messages"]; ok {
		if err := json.Unmarshal(v, &b.Messages); err != nil {
			return err
		}
	}
	if v, ok := raw["files"]; ok {
		if err := json.Unmarshal(v, &b.Files); err != nil {
			return err
		}
	}
	if v, ok := raw["metadata"]; ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		b.Metadata = &Metadata{}
		if err := json.Unmarshal(v, b.Metadata); err != nil {
			return err
		}
	}
	return nil
}

func (b Body) MarshalJSON() ([]byte, error) {
	out := cloneRaw(b.raw)
	if out == nil {
		out = make(map[string]json.RawMessage, 3)
	}
	msgs, err := json.Marshal(b.Messages)
	if err != nil {
		return nil, err
	}
	out["messages"] = msgs
	if b.Files != nil {
		files, err := json.Marshal(b.Files)
		if err != nil {
			return nil, err
		}
		out["files"] = files
	} else {
		delete(out, "files")
	}
	if b.Metadata != nil {
		meta, err := json.Marshal(b.Metadata)
		if err != nil {
			return nil, err
		}
		out["metadata"] = meta
	}
	return json.Marshal(out)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.raw = raw
	if v, ok := raw["role"]; ok {
		if err := json.Unmarshal(v, &m.Role); err != nil {
			return err
		}
	}
	if v, ok := raw["content"]; ok {
		if err := json.Unmarshal(v, &m.Content); err != nil {
			return err
		}
	}
	return nil
}

func (m Message) MarshalJSON() ([]byte, error) {
	out := cloneRaw(m.raw)
	if out == nil {
		out = make(map[string]json.RawMessage, 2)
	}
	role, err := json.Marshal(m.Role)
	if err != nil {
		return nil, err
	}
	out["role"] = role
	content, err := json.Marshal(m.Content)
	if err != nil {
		return nil, err
	}
	out["content"] = content
	return json.Marshal(out)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = Content{}
		return nil
	}
	switch trimmed[0] {
	case '[':
		c.list = true
		return json.Unmarshal(trimmed, &c.Blocks)
	case '"':
		return json.Unmarshal(trimmed, &c.Text)
	default:
		// Non-string scalars are treated as their textual form, the same
		// loose coercion the original applied.
		c.Text = string(trimmed)
		return nil
	}
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.list {
		if c.Blocks == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(c.Blocks)
	}
	return json.Marshal(c.Text)
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.raw = raw
	if v, ok := raw["type"]; ok {
		if err := json.Unmarshal(v, &b.Type); err != nil {
			return err
		}
	}
	if v, ok := raw["text"]; ok {
		if err := json.Unmarshal(v, &b.Text); err != nil {
			return err
		}
	}
	return nil
}

func (b Block) MarshalJSON() ([]byte, error) {
	out := cloneRaw(b.raw)
	if out == nil {
		out = make(map[string]json.RawMessage, 2)
	}
	typ, err := json.Marshal(b.Type)
	if err != nil {
		return nil, err
	}
	out["type"] = typ
	if b.Type == "text" || b.Text != "" {
		text, err := json.Marshal(b.Text)
		if err != nil {
			return nil, err
		}
		out["text"] = text
	}
	return json.Marshal(out)
}

func (f *FileRef) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.raw = raw
	if v, ok := raw["type"]; ok {
		if err := json.Unmarshal(v, &f.Type); err != nil {
			return err
		}
	}
	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, &f.ID); err != nil {
			return err
		}
	}
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &f.Name); err != nil {
			return err
		}
	}
	return nil
}

func (f FileRef) MarshalJSON() ([]byte, error) {
	out := cloneRaw(f.raw)
	if out == nil {
		out = make(map[string]json.RawMessage, 3)
		typ, _ := json.Marshal(f.Type)
		id, _ := json.Marshal(f.ID)
		name, _ := json.Marshal(f.Name)
		out["type"] = typ
		out["id"] = id
		out["name"] = name
	}
	return json.Marshal(out)
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.raw = raw
	if v, ok := raw["files"]; ok {
		if err := json.Unmarshal(v, &m.Files); err != nil {
			return err
		}
	}
	return nil
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	out := cloneRaw(m.raw)
	if out == nil {
		out = make(map[string]json.RawMessage, 1)
	}
	if m.Files != nil {
		files, err := json.Marshal(m.Files)
		if err != nil {
			return nil, err
		}
		out["files"] = files
	} else {
		delete(out, "files")
	}
	return json.Marshal(out)
}

// HasFiles reports whether the metadata carried a files list on the wire.
func (m *Metadata) HasFiles() bool {
	if m == nil {
		return false
	}
	_, ok := m.raw["files"]
	return ok || m.Files != nil
}
