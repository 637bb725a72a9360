package chromatica

import (
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

// Message is the wire envelope for every frame exchanged with the browser:
// a Request carries method+params+sessionId, a Response carries result/error,
// an Event carries method+params+sessionId with no id. One struct covers all
// three shapes, the way cdproto.Message does in the teacher.
type Message struct {
	ID        uint64
	Method    string
	SessionID string
	Params    []byte // raw JSON object, nil when omitted
	Result    []byte // raw JSON object, nil unless this is a response
	Error     *ProtocolError
}

// IsResponse reports whether this message carries an id (and is therefore a
// Response rather than an Event).
func (m *Message) IsResponse() bool {
	return m.ID != 0
}

// MarshalEasyJSON implements easyjson.Marshaler by hand, avoiding the
// reflection-based fallback on the hot outbound path (conn.go reuses the
// same jwriter.Writer across writes).
func (m *Message) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	first := true
	comma := func() {
		if !first {
			w.RawByte(',')
		}
		first = false
	}

	if m.ID != 0 {
		comma()
		w.RawString(`"id":`)
		w.Uint64(m.ID)
	}
	if m.Method != "" {
		comma()
		w.RawString(`"method":`)
		w.String(m.Method)
	}
	if m.SessionID != "" {
		comma()
		w.RawString(`"sessionId":`)
		w.String(m.SessionID)
	}
	if len(m.Params) != 0 {
		comma()
		w.RawString(`"params":`)
		w.Raw(m.Params, nil)
	}
	if len(m.Result) != 0 {
		comma()
		w.RawString(`"result":`)
		w.Raw(m.Result, nil)
	}
	if m.Error != nil {
		comma()
		w.RawString(`"error":`)
		w.RawByte('{')
		w.RawString(`"code":`)
		w.Int64(m.Error.Code)
		w.RawString(`,"message":`)
		w.String(m.Error.Message)
		w.RawByte('}')
	}
	w.RawByte('}')
}

// UnmarshalEasyJSON implements easyjson.Unmarshaler by hand, mirroring the
// shape MarshalEasyJSON produces plus the fields the browser actually sends.
func (m *Message) UnmarshalEasyJSON(l *jlexer.Lexer) {
	if l.IsNull() {
		l.Skip()
		return
	}
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "id":
			m.ID = l.Uint64()
		case "method":
			m.Method = l.String()
		case "sessionId":
			m.SessionID = l.String()
		case "params":
			m.Params = append([]byte{}, l.Raw()...)
		case "result":
			m.Result = append([]byte{}, l.Raw()...)
		case "error":
			if l.IsNull() {
				l.Skip()
			} else {
				m.Error = new(ProtocolError)
				l.Delim('{')
				for !l.IsDelim('}') {
					ekey := l.UnsafeFieldName(false)
					l.WantColon()
					switch ekey {
					case "code":
						m.Error.Code = l.Int64()
					case "message":
						m.Error.Message = l.String()
					default:
						l.SkipRecursive()
					}
					l.WantComma()
				}
				l.Delim('}')
			}
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}
