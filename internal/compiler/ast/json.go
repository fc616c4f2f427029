package ast

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// MarshalJSON renders a node as JSON text. Object keys keep their order and
// repeated keys are written more than once, so the output is valid JSON text
// but should not be decoded into a Go map.
func MarshalJSON(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent is like MarshalJSON but indents the output
func MarshalIndent(n Node, prefix, indent string) ([]byte, error) {
	raw, err := MarshalJSON(n)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, prefix, indent); err != nil {
		return nil, fmt.Errorf("failed to indent document: %w", err)
	}
	return out.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, n Node) error {
	switch v := n.(type) {
	case *Object:
		buf.WriteByte('{')
		for i, p := range v.Properties {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(p.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, p.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case *Array:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Scalar:
		return writeScalar(buf, v)
	default:
		return fmt.Errorf("unsupported node type %T", n)
	}
	return nil
}

func writeScalar(buf *bytes.Buffer, s *Scalar) error {
	switch s.Kind {
	case ScalarBool:
		buf.WriteString(strconv.FormatBool(s.Value.(bool)))
	case ScalarInt32:
		buf.WriteString(strconv.FormatInt(int64(s.Value.(int32)), 10))
	case ScalarInt64:
		buf.WriteString(strconv.FormatInt(s.Value.(int64), 10))
	case ScalarFloat:
		buf.WriteString(strconv.FormatFloat(s.Value.(float64), 'f', -1, 64))
	default:
		text, err := json.Marshal(s.String())
		if err != nil {
			return err
		}
		buf.Write(text)
	}
	return nil
}
