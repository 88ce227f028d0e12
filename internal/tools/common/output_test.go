package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestWriteCIResult(t *testing.T) {
	var buf bytes.Buffer
	writeCIResult(&buf, false, "seed verify", []string{"roles checked"}, errors.New("role 1 missing"))

	var got CIResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.OK || got.Title != "seed verify" || got.Error != "role 1 missing" || len(got.Details) != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestRunHeadlessAppliesTimeout(t *testing.T) {
	_, err := Run(true, 10*time.Millisecond, "seed", "apply", func(ctx context.Context) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
