// Copyright (c) Microsoft. All rights reserved.

package agentframework_test

import (
	"context"
	"encoding/json"
	"testing"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

func TestMergeChatOptions_NilBase(t *testing.T) {
	temp := 0.7
	override := &af.ChatOptions{Temperature: &temp, ModelID: "gpt-4o-mini"}
	merged := af.MergeChatOptions(nil, override)

	if merged.ModelID != "gpt-4o-mini" {
		t.Errorf("ModelID = %q", merged.ModelID)
	}
	if merged.Temperature == nil || *merged.Temperature != 0.7 {
		t.Errorf("Temperature = %v", merged.Temperature)
	}
}

func TestMergeChatOptions_BothNil(t *testing.T) {
	if merged := af.MergeChatOptions(nil, nil); merged == nil {
		t.Fatal("expected non-nil result")
	}
}

func TestMergeChatOptions_OverrideWins(t *testing.T) {
	baseTemp := 0.5
	overTemp := 0.9
	base := &af.ChatOptions{
		ModelID:      "base-model",
		Temperature:  &baseTemp,
		User:         "user1",
		Instructions: "base rules",
	}
	override := &af.ChatOptions{
		ModelID:      "override-model",
		Temperature:  &overTemp,
		Instructions: "extra rules",
		ToolChoice:   af.ToolChoiceNone,
	}
	merged := af.MergeChatOptions(base, override)

	if merged.ModelID != "override-model" {
		t.Errorf("ModelID = %q, want override-model", merged.ModelID)
	}
	if *merged.Temperature != 0.9 {
		t.Errorf("Temperature = %f, want 0.9", *merged.Temperature)
	}
	if merged.User != "user1" {
		t.Errorf("User = %q, want user1", merged.User)
	}
	if merged.Instructions != "base rules\nextra rules" {
		t.Errorf("Instructions = %q", merged.Instructions)
	}
	if merged.ToolChoice != af.ToolChoiceNone {
		t.Errorf("ToolChoice = %q", merged.ToolChoice)
	}
	if base.ModelID != "base-model" {
		t.Error("base must not be modified")
	}
}

func TestMergeChatOptions_ToolsByName(t *testing.T) {
	mk := func(name, desc string) af.Tool {
		return af.NewTool(name, desc, json.RawMessage(`{}`),
			func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil })
	}
	base := &af.ChatOptions{Tools: []af.Tool{mk("weatherTool", "old"), mk("nearbyCitiesTool", "n")}}
	override := &af.ChatOptions{Tools: []af.Tool{mk("weatherTool", "new"), mk("weatherActivitiesTool", "a")}}

	merged := af.MergeChatOptions(base, override)
	if len(merged.Tools) != 3 {
		t.Fatalf("tools = %d, want 3", len(merged.Tools))
	}
	want := []string{"weatherTool", "nearbyCitiesTool", "weatherActivitiesTool"}
	for i, name := range want {
		if merged.Tools[i].Name() != name {
			t.Errorf("tools[%d] = %q, want %q", i, merged.Tools[i].Name(), name)
		}
	}
	if merged.Tools[0].Description() != "new" {
		t.Errorf("override should replace same-named tool, got %q", merged.Tools[0].Description())
	}
}
