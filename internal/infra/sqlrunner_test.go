package infra

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExtractMarker(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantMarker string
		wantBody   string
		wantErr    error
	}{
		{
			name:       "valid marker",
			query:      "--sql 2f0c1a64-5f55-4b7b-9a43-63d1f6a7c001\nselect 1;",
			wantMarker: "2f0c1a64-5f55-4b7b-9a43-63d1f6a7c001",
			wantBody:   "select 1;",
		},
		{
			name:       "leading whitespace",
			query:      "\n   --sql 2f0c1a64-5f55-4b7b-9a43-63d1f6a7c001\nselect 1;\n",
			wantMarker: "2f0c1a64-5f55-4b7b-9a43-63d1f6a7c001",
			wantBody:   "select 1;",
		},
		{
			name:    "missing marker",
			query:   "select 1;",
			wantErr: errNoSQLMarker,
		},
		{
			name:    "uppercase uuid rejected",
			query:   "--sql 2F0C1A64-5F55-4B7B-9A43-63D1F6A7C001\nselect 1;",
			wantErr: errNoSQLMarker,
		},
		{
			name:    "empty",
			query:   "  ",
			wantErr: errEmptyQuery,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			marker, body, err := extractMarker(tc.query)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("extractMarker() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractMarker() unexpected error: %v", err)
			}
			if marker != tc.wantMarker {
				t.Fatalf("marker = %q, want %q", marker, tc.wantMarker)
			}
			if strings.TrimSpace(body) != tc.wantBody {
				t.Fatalf("body = %q, want %q", body, tc.wantBody)
			}
		})
	}
}

func TestSQLRunnerRejectsUnmarkedQueries(t *testing.T) {
	runner := NewSQLRunner(nil, NopLogger())

	if _, err := runner.Exec(context.Background(), "delete from trips"); !errors.Is(err, errNoSQLMarker) {
		t.Fatalf("Exec error = %v, want %v", err, errNoSQLMarker)
	}
	if _, err := runner.Query(context.Background(), "select * from trips"); !errors.Is(err, errNoSQLMarker) {
		t.Fatalf("Query error = %v, want %v", err, errNoSQLMarker)
	}
	var n int
	if err := runner.QueryRow(context.Background(), "select 1").Scan(&n); !errors.Is(err, errNoSQLMarker) {
		t.Fatalf("QueryRow error = %v, want %v", err, errNoSQLMarker)
	}
}

func TestNewRedisClientDisabled(t *testing.T) {
	client, err := NewRedisClient(context.Background(), &Config{})
	if err != nil {
		t.Fatalf("NewRedisClient returned error: %v", err)
	}
	if client != nil {
		t.Fatal("expected nil client when REDIS_ADDR is empty")
	}
}
