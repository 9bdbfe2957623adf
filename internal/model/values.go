package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Unknown is the printed form of a value no source could supply.
const Unknown = "unknown"

// Number is a float that may be unknown. Zero is a valid known value.
type Number struct {
	Value float64
	Known bool
}

// Num returns a known Number.
func Num(v float64) Number { return Number{Value: v, Known: true} }

func (n Number) String() string {
	if !n.Known {
		return Unknown
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// Ptr returns nil for an unknown value.
func (n Number) Ptr() *float64 {
	if !n.Known {
		return nil
	}
	v := n.Value
	return &v
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Known {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`"`+Unknown+`"`)) {
		*n = Number{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Num(v)
	return nil
}

// Text is a string that may be unknown.
type Text struct {
	Value string
	Known bool
}

// Str returns a known Text.
func Str(v string) Text { return Text{Value: v, Known: true} }

func (t Text) String() string {
	if !t.Known {
		return Unknown
	}
	return t.Value
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Known {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Text{}
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == Unknown {
		*t = Text{}
		return nil
	}
	*t = Str(v)
	return nil
}
