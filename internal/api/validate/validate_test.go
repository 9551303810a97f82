package validate

import (
	"strings"
	"testing"
)

func TestUserID(t *testing.T) {
	valid := []string{"alice", "user_01", "A-b-C", "x"}
	for _, v := range valid {
		if err := UserID(v); err != nil {
			t.Errorf("UserID(%q) unexpected error: %v", v, err)
		}
	}
	invalid := []string{"", "has space", "über", strings.Repeat("a", 65)}
	for _, v := range invalid {
		if err := UserID(v); err == nil {
			t.Errorf("UserID(%q) expected error", v)
		}
	}
}

func TestCreateEntry(t *testing.T) {
	if err := CreateEntry("A title", "Some content"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CreateEntry("", "content"); err == nil {
		t.Error("expected error for empty title")
	}
	if err := CreateEntry("title", ""); err == nil {
		t.Error("expected error for empty content")
	}
	if err := CreateEntry(strings.Repeat("t", 201), "content"); err == nil {
		t.Error("expected error for oversize title")
	}
	if err := CreateEntry("title", strings.Repeat("c", 20001)); err == nil {
		t.Error("expected error for oversize content")
	}
}

func TestLogContent(t *testing.T) {
	if err := LogContent("a note"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := LogContent(""); err == nil {
		t.Error("expected error for empty log")
	}
	if err := LogContent(strings.Repeat("x", 5001)); err == nil {
		t.Error("expected error for oversize log")
	}
}

func TestChatMessage(t *testing.T) {
	if err := ChatMessage("hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ChatMessage(""); err == nil {
		t.Error("expected error for empty message")
	}
}

func TestDate(t *testing.T) {
	if got, err := Date("d", "2025-06-01"); err != nil || got.IsZero() {
		t.Errorf("plain date: got %v, err %v", got, err)
	}
	if got, err := Date("d", "2025-06-01T10:00:00Z"); err != nil || got.IsZero() {
		t.Errorf("rfc3339: got %v, err %v", got, err)
	}
	if got, err := Date("d", ""); err != nil || !got.IsZero() {
		t.Errorf("empty should be zero value, got %v, err %v", got, err)
	}
	if _, err := Date("d", "June 1st"); err == nil {
		t.Error("expected error for free-form date")
	}
}
