// Package source decodes wire formats into the keyed trees accepted by
// strictmodel (map[string]any, []any and primitives). Duplicate keys are
// rejected instead of silently keeping the last value, so the closed-world
// checks downstream see exactly what the document says.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"

	sm "github.com/reoring/strictmodel"
)

// JSON decodes a single JSON document. Numbers are kept as json.Number so
// integer precision survives until coercion.
func JSON(data []byte) (any, error) {
	return JSONReader(bytes.NewReader(data))
}

// JSONReader decodes a single JSON document from r. Trailing data after the
// document is an error.
func JSONReader(r io.Reader) (any, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	d := &jsonDecoder{dec: dec}
	v, err := d.value(sm.Path{})
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after document")
		}
		return nil, parseError(sm.Path{}, err)
	}
	return v, nil
}

type jsonDecoder struct {
	dec *gojson.Decoder
}

func (d *jsonDecoder) value(p sm.Path) (any, error) {
	tok, err := d.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, parseError(p, err)
	}
	switch v := tok.(type) {
	case gojson.Delim:
		switch v {
		case '{':
			return d.object(p)
		case '[':
			return d.array(p)
		}
		return nil, parseError(p, fmt.Errorf("unexpected %q", rune(v)))
	case gojson.Number:
		return json.Number(string(v)), nil
	case string, bool, float64, nil:
		return v, nil
	}
	return nil, parseError(p, fmt.Errorf("unexpected token %T", tok))
}

func (d *jsonDecoder) object(p sm.Path) (any, error) {
	m := make(map[string]any)
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, parseError(p, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, parseError(p, fmt.Errorf("object key must be a string, got %T", tok))
		}
		kp := p.Field(key)
		if _, dup := m[key]; dup {
			return nil, duplicateField(kp, key)
		}
		v, err := d.value(kp)
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
	if err := d.closing(p, '}'); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *jsonDecoder) array(p sm.Path) (any, error) {
	out := []any{}
	for d.dec.More() {
		v, err := d.value(p.Index(len(out)))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := d.closing(p, ']'); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *jsonDecoder) closing(p sm.Path, want gojson.Delim) error {
	tok, err := d.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return parseError(p, err)
	}
	if got, ok := tok.(gojson.Delim); !ok || got != want {
		return parseError(p, fmt.Errorf("expected %q", rune(want)))
	}
	return nil
}

func parseError(p sm.Path, cause error) error {
	it := sm.IssueAt(p, sm.CodeParseError, nil)
	it.Message += ": " + cause.Error()
	it.Cause = cause
	return sm.Issues{it}
}

func duplicateField(p sm.Path, key string) error {
	return sm.Issues{sm.IssueAt(p, sm.CodeDuplicateField, map[string]string{"key": key})}
}
