package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"poolrebalancer/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "plans.jsonl")
	store := NewJsonlStorage(path)
	ctx := context.Background()

	first := model.PlanRecord{ChainID: 8453, Pool: "0xpool", Direction: "A_TO_B", Amount0: "0", Amount1: "100000", TargetPrice: "400"}
	second := model.PlanRecord{ChainID: 8453, Pool: "0xpool", Direction: "B_TO_A", Amount0: "500", Amount1: "0", TargetPrice: "100"}

	if err := store.PutPlanBatch(ctx, []model.PlanRecord{first}); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := store.PutPlanBatch(ctx, []model.PlanRecord{second}); err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if err := store.PutPlanBatch(ctx, nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var got []model.PlanRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record model.PlanRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		got = append(got, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan output: %v", err)
	}

	want := []model.PlanRecord{first, second}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("records mismatch: got %+v want %+v", got, want)
	}
}

func TestJsonlStorageCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.jsonl")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewJsonlStorage(path).PutPlanBatch(ctx, []model.PlanRecord{{Pool: "0xpool"}}); err == nil {
		t.Fatalf("expected context error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file should not be created, stat err=%v", err)
	}
}
