package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"taskdash/internal/service"
)

// ErrUnrecognizedListShape is returned when a list response is neither a
// JSON array nor an object wrapping one under content, items or data.
var ErrUnrecognizedListShape = errors.New("unrecognized task list shape")

// ListShape identifies how a list response wrapped its tasks.
type ListShape int

const (
	ShapeArray   ListShape = iota // [...]
	ShapeContent                  // {"content": [...]}, e.g. a Spring page
	ShapeItems                    // {"items": [...]}
	ShapeData                     // {"data": [...]}
)

func (s ListShape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeContent:
		return "content"
	case ShapeItems:
		return "items"
	case ShapeData:
		return "data"
	default:
		return "unknown"
	}
}

// wrapperKeys are checked in order; the first holding an array wins.
var wrapperKeys = []struct {
	key   string
	shape ListShape
}{
	{"content", ShapeContent},
	{"items", ShapeItems},
	{"data", ShapeData},
}

// ListEnvelope is a decoded list response.
type ListEnvelope struct {
	Shape ListShape
	Tasks []service.Task
}

// DecodeList decodes a list response body into an envelope.
// Any shape other than the four known ones is an error wrapping
// ErrUnrecognizedListShape.
func DecodeList(body []byte) (ListEnvelope, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ListEnvelope{}, fmt.Errorf("%w: empty body", ErrUnrecognizedListShape)
	}

	switch body[0] {
	case '[':
		tasks, err := decodeTasks(body)
		if err != nil {
			return ListEnvelope{}, err
		}
		return ListEnvelope{Shape: ShapeArray, Tasks: tasks}, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return ListEnvelope{}, fmt.Errorf("invalid list response: %w", err)
		}
		for _, w := range wrapperKeys {
			raw, ok := obj[w.key]
			if !ok || !isArray(raw) {
				continue
			}
			tasks, err := decodeTasks(raw)
			if err != nil {
				return ListEnvelope{}, err
			}
			return ListEnvelope{Shape: w.shape, Tasks: tasks}, nil
		}
		return ListEnvelope{}, fmt.Errorf("%w: object without content, items or data array", ErrUnrecognizedListShape)

	default:
		return ListEnvelope{}, fmt.Errorf("%w: %.20s", ErrUnrecognizedListShape, body)
	}
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func decodeTasks(raw []byte) ([]service.Task, error) {
	tasks := []service.Task{}
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("invalid task in list response: %w", err)
	}
	return tasks, nil
}
