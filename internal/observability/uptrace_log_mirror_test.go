package observability

import (
	"testing"

	otellog "go.opentelemetry.io/otel/log"

	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	tests := []struct {
		name  string
		level logging.Level
		msg   string
		args  []any
		want  bool
	}{
		{name: "health probe", level: logging.LevelInfo, msg: "http request", args: []any{"method", "GET", "path", "/healthz"}, want: true},
		{name: "docs", level: logging.LevelInfo, msg: "http request", args: []any{"path", "/openapi.yaml"}, want: true},
		{name: "api request", level: logging.LevelInfo, msg: "http request", args: []any{"path", "/v1/leagues/bc25/scrimmages"}, want: false},
		{name: "other event with probe path", level: logging.LevelWarn, msg: "match dispatch failed", args: []any{"path", "/healthz"}, want: false},
		{name: "debug preview", level: logging.LevelDebug, msg: "qstash publish request", args: []any{"curl", "curl -X POST"}, want: true},
		{name: "non string path", level: logging.LevelInfo, msg: "http request", args: []any{"path", 42}, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldSkipUptraceLog(tc.level, tc.msg, tc.args); got != tc.want {
				t.Fatalf("shouldSkipUptraceLog=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestBuildOTelLogAttributes(t *testing.T) {
	attrs := buildOTelLogAttributes([]any{"league_id", "bc25", "attempt", 2, "payload"})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "league_id" || attrs[0].Value.AsString() != "bc25" {
		t.Fatalf("unexpected league_id attribute")
	}
	if attrs[1].Key != "attempt" || attrs[1].Value.AsInt64() != 2 {
		t.Fatalf("unexpected attempt attribute")
	}
	if attrs[2].Key != "payload" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected payload attribute")
	}
}

func TestToOTelLogValue_Map(t *testing.T) {
	v := toOTelLogValue(map[string]any{
		"wins":   2,
		"ranked": true,
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	items := v.AsMap()
	if len(items) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(items))
	}
}

func TestToOTelLogValue_SliceAndPointers(t *testing.T) {
	winner := "bc25-gophers"
	v := toOTelLogValue([]*string{&winner, nil}, 0)
	if v.Kind() != otellog.KindSlice {
		t.Fatalf("expected slice value, got %s", v.Kind())
	}
	items := v.AsSlice()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].AsString() != winner {
		t.Fatalf("unexpected first item: %s", items[0].AsString())
	}
	if items[1].Kind() != otellog.KindEmpty {
		t.Fatalf("expected nil pointer to be empty, got %s", items[1].Kind())
	}
}

func TestToOTelLogValue_DepthLimit(t *testing.T) {
	nested := [][][][]int{{{{1}}}}
	v := toOTelLogValue(nested, 0)
	inner := v.AsSlice()[0].AsSlice()[0].AsSlice()[0]
	if inner.Kind() != otellog.KindString {
		t.Fatalf("expected values past max depth to be stringified, got %s", inner.Kind())
	}
}
