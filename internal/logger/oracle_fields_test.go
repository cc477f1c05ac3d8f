package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFieldsSkipsEmptyEntries(t *testing.T) {
	t.Parallel()

	fields := StringFields(
		StringField{Key: "provider", Value: "gemini"},
		StringField{Key: "  ", Value: "ignored"},
		StringField{Key: "model", Value: "   "},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" {
		t.Fatalf("unexpected field key: %s", fields[0].Key)
	}
}

func TestOracleFields(t *testing.T) {
	t.Parallel()

	fields := OracleFields("gemini", "gemini-2.5-flash")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldProvider || fields[1].Key != FieldModel {
		t.Fatalf("unexpected field keys: %s, %s", fields[0].Key, fields[1].Key)
	}
}

func TestWithOracleFieldsAttachesToEntries(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	logger := WithOracleFields(zap.New(core), "gemini", "gemini-2.5-flash")

	logger.Info("ranked")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" {
		t.Fatalf("expected provider field, got %v", ctx)
	}

	if ctx[FieldModel] != "gemini-2.5-flash" {
		t.Fatalf("expected model field, got %v", ctx)
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	t.Parallel()

	logger := WithFields(nil)
	if logger == nil {
		t.Fatalf("expected a usable logger")
	}
}
