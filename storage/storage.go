// Package storage loads command scripts from local files or S3.
package storage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
)

// ScriptState is a source of a newline separated command script.
type ScriptState interface {
	Load(ctx context.Context) ([]byte, error)
}

// ParseScript splits a script into commands, skipping blank lines and
// lines starting with '#'.
func ParseScript(data []byte) ([]string, error) {
	var cmds []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmds = append(cmds, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return cmds, nil
}

// LoadScript loads and parses the script held by state.
func LoadScript(ctx context.Context, state ScriptState) ([]string, error) {
	data, err := state.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

// TestScriptState is a simple in-memory implementation for testing
type TestScriptState struct {
	data []byte
	err  error
}

func NewTestScriptState(data []byte) *TestScriptState {
	return &TestScriptState{data: data}
}

func NewTestScriptStateWithError() *TestScriptState {
	return &TestScriptState{err: errors.New("not found")}
}

func (t *TestScriptState) Load(ctx context.Context) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.data, nil
}
