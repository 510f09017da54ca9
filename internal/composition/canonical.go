package composition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MarshalCanonical produces the canonical JSON form of the composition:
// keys sorted, no whitespace, no HTML escaping.
//
//	{"Ba":2,"Cu":3,"O":7,"Y":1}
//
// This is the ONLY serialization used for content-addressed identity.
func (c Composition) MarshalCanonical() []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range c.Species() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(marshalCanonicalString(s))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.counts[s]))
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// marshalCanonicalString encodes s as a JSON string without HTML escaping.
func marshalCanonicalString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

// MarshalJSON implements json.Marshaler using the canonical form.
func (c Composition) MarshalJSON() ([]byte, error) {
	return c.MarshalCanonical(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
// Species are validated against the default registry; counts must be
// non-negative whole numbers ("2.0" is rejected). JSON null is a no-op.
func (c *Composition) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	parsed, err := parseCanonical(data)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// FromCanonical decodes a JSON species→count object, as produced by
// MarshalCanonical, and validates it.
func FromCanonical(data []byte, opts ...Option) (Composition, error) {
	return parseCanonical(data, opts...)
}

// Repr returns a textual form that ParseRepr reads back:
//
//	Composition({"H":2,"O":1})
func (c Composition) Repr() string {
	return "Composition(" + string(c.MarshalCanonical()) + ")"
}

// ParseRepr reconstructs a Composition from its Repr form. The mapping is
// decoded as JSON and validated like any other construction.
func ParseRepr(s string, opts ...Option) (Composition, error) {
	body := strings.TrimSpace(s)
	if !strings.HasPrefix(body, "Composition(") || !strings.HasSuffix(body, ")") {
		return Composition{}, &ValidationError{
			Code:    ErrCodeMalformed,
			Message: fmt.Sprintf("expected Composition({...}), got %q", s),
		}
	}
	body = strings.TrimSuffix(strings.TrimPrefix(body, "Composition("), ")")
	return parseCanonical([]byte(body), opts...)
}

// parseCanonical decodes a JSON object of species→count.
// Numbers are read as json.Number so large or fractional values are
// reported precisely instead of being rounded through float64.
func parseCanonical(data []byte, opts ...Option) (Composition, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Composition{}, &ValidationError{
			Code:    ErrCodeMalformed,
			Message: fmt.Sprintf("invalid composition JSON: %v", err),
		}
	}
	if raw == nil {
		return Composition{}, &ValidationError{
			Code:    ErrCodeMalformed,
			Message: "composition JSON must be an object",
		}
	}

	counts := make(map[string]int, len(raw))
	for s, v := range raw {
		num, ok := v.(json.Number)
		if !ok {
			return Composition{}, &ValidationError{
				Code:    ErrCodeNonInteger,
				Species: s,
				Message: fmt.Sprintf("count must be an integer, got %v", v),
			}
		}
		n, err := strconv.ParseInt(num.String(), 10, 0)
		if err != nil {
			return Composition{}, &ValidationError{
				Code:    ErrCodeNonInteger,
				Species: s,
				Message: fmt.Sprintf("count must be an integer, got %s", num),
			}
		}
		if n < 0 {
			return Composition{}, newNegativeCountError(s, n)
		}
		counts[s] = int(n)
	}
	return FromMap(counts, opts...)
}
