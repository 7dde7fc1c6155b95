package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind ActionKind
		pos  int
		ch   string
	}{
		{"click", `{"type":"click"}`, ActionClick, NoPosition, ""},
		{"position", `{"position":4}`, ActionPosition, 4, ""},
		{"position zero", `{"position":0}`, ActionPosition, 0, ""},
		{"choice", `{"choice":"rock"}`, ActionChoice, NoPosition, "rock"},
		{"choice wins over type", `{"type":"click","choice":"paper"}`, ActionChoice, NoPosition, "paper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAction(json.RawMessage(tt.in))
			if err != nil {
				t.Fatalf("ParseAction(%s) failed: %v", tt.in, err)
			}
			if a.Kind != tt.kind || a.Position != tt.pos || a.Choice != tt.ch {
				t.Errorf("Expected %v/%d/%q, got %v/%d/%q", tt.kind, tt.pos, tt.ch, a.Kind, a.Position, a.Choice)
			}
		})
	}
}

func TestParseActionRejects(t *testing.T) {
	for _, in := range []string{`{}`, `{"type":"tap"}`} {
		if _, err := ParseAction(json.RawMessage(in)); !errors.Is(err, ErrUnknownAction) {
			t.Errorf("ParseAction(%s): expected ErrUnknownAction, got %v", in, err)
		}
	}
	if _, err := ParseAction(json.RawMessage(`not json`)); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestPerspective(t *testing.T) {
	if got := Perspective("a", "a", false); got != "you" {
		t.Errorf("Expected you, got %s", got)
	}
	if got := Perspective("a", "b", false); got != "opponent" {
		t.Errorf("Expected opponent, got %s", got)
	}
	if got := Perspective("a", "", true); got != "draw" {
		t.Errorf("Expected draw, got %s", got)
	}
}

func TestOpponent(t *testing.T) {
	players := []PlayerID{"a", "b"}
	if Opponent(players, "a") != "b" || Opponent(players, "b") != "a" {
		t.Error("Opponent lookup failed")
	}
}
