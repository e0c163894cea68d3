package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pantryassistant"
	"pantryassistant/storage"
	"pantryassistant/ui"
)

var errNoCommand = errors.New("missing text or script")

type Params struct {
	Text string `json:"text"`
	// Script is a path or s3://bucket/key whose lines are sent in order.
	Script string `json:"script,omitempty"`
}

type Reply struct {
	Command string                 `json:"command"`
	Text    string                 `json:"text,omitempty"`
	Action  pantryassistant.Action `json:"action,omitempty"`
	Data    json.RawMessage        `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

type Results struct {
	Replies []Reply `json:"replies"`
}

type scriptOpener interface {
	Open(ctx context.Context, location string) (storage.ScriptState, error)
}

type handler struct {
	voice   *ui.VoiceAssistant
	scripts scriptOpener
}

// handle forwards a single text command, or every command of a script.
// A failing text command fails the invocation; script commands report
// their errors per reply.
func (h *handler) handle(ctx context.Context, params Params) (Results, error) {
	if params.Script != "" {
		return h.runScript(ctx, params.Script)
	}

	text := strings.TrimSpace(params.Text)
	if text == "" {
		return Results{}, errNoCommand
	}
	resp, err := h.voice.HandleCommand(ctx, pantryassistant.SourceText, text)
	if err != nil {
		slog.Error("RESULT: Error handling command", "error", err)
		return Results{}, err
	}
	return Results{Replies: []Reply{newReply(text, resp)}}, nil
}

func (h *handler) runScript(ctx context.Context, location string) (Results, error) {
	state, err := h.scripts.Open(ctx, location)
	if err != nil {
		return Results{}, err
	}
	cmds, err := storage.LoadScript(ctx, state)
	if err != nil {
		return Results{}, fmt.Errorf("load script %s: %w", location, err)
	}
	slog.Info("SETUP: Script loaded", "location", location, "commands", len(cmds))

	results := Results{Replies: make([]Reply, 0, len(cmds))}
	for _, text := range cmds {
		resp, err := h.voice.HandleCommand(ctx, pantryassistant.SourceScript, text)
		if err != nil {
			results.Replies = append(results.Replies, Reply{Command: text, Error: err.Error()})
			continue
		}
		results.Replies = append(results.Replies, newReply(text, resp))
	}
	return results, nil
}

func newReply(command string, resp *pantryassistant.VoiceResponse) Reply {
	return Reply{Command: command, Text: resp.Text, Action: resp.Action, Data: resp.Data}
}
