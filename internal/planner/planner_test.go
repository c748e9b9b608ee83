package planner

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const (
	testMiB = int64(1024 * 1024)
	testGiB = 1024 * testMiB
)

func checkPartition(t *testing.T, plan Plan, totalSize int64) {
	t.Helper()
	if totalSize == 0 {
		if len(plan.Chunks) != 0 {
			t.Fatalf("expected empty chunk list for size 0, got %d chunks", len(plan.Chunks))
		}
		return
	}
	if plan.Chunks[0].Start != 0 {
		t.Errorf("first chunk starts at %d, want 0", plan.Chunks[0].Start)
	}
	for i := 1; i < len(plan.Chunks); i++ {
		if plan.Chunks[i].Start != plan.Chunks[i-1].End {
			t.Errorf("gap or overlap between chunk %d and %d: %d != %d",
				i-1, i, plan.Chunks[i-1].End, plan.Chunks[i].Start)
		}
	}
	last := plan.Chunks[len(plan.Chunks)-1]
	if last.End != totalSize {
		t.Errorf("last chunk ends at %d, want %d", last.End, totalSize)
	}
}

func TestPlanPartition(t *testing.T) {
	sizes := []int64{
		0, 1, 100, 4*testMiB - 1, 4 * testMiB, 4*testMiB + 1,
		10 * testMiB, 64 * testMiB, 100 * testMiB, 512 * testMiB,
		2 * testGiB, 3 * testGiB, 3*testGiB + 7,
	}
	for _, size := range sizes {
		checkPartition(t, New(size), size)
	}
}

func TestPolicyBands(t *testing.T) {
	tests := []struct {
		size        int64
		chunkSize   int64
		concurrency int
	}{
		{0, 4 * testMiB, 4},
		{10 * testMiB, 4 * testMiB, 4},
		{64*testMiB - 1, 4 * testMiB, 4},
		{64 * testMiB, 16 * testMiB, 8}, // boundary selects higher band
		{100 * testMiB, 16 * testMiB, 8},
		{512 * testMiB, 64 * testMiB, 12},
		{testGiB, 64 * testMiB, 12},
		{2*testGiB - 1, 64 * testMiB, 12},
		{2 * testGiB, 128 * testMiB, 16},
		{10 * testGiB, 128 * testMiB, 16},
	}
	for _, tt := range tests {
		plan := New(tt.size)
		if plan.ChunkSize != tt.chunkSize {
			t.Errorf("size %d: chunk size %d, want %d", tt.size, plan.ChunkSize, tt.chunkSize)
		}
		if plan.Concurrency != tt.concurrency {
			t.Errorf("size %d: concurrency %d, want %d", tt.size, plan.Concurrency, tt.concurrency)
		}
	}
}

func TestPlanIdempotent(t *testing.T) {
	for _, size := range []int64{0, 10 * testMiB, 3 * testGiB} {
		first := New(size)
		second := New(size)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("size %d: plans differ between calls", size)
		}
	}
}

func TestPlanSingleChunk(t *testing.T) {
	plan := New(100)
	if len(plan.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(plan.Chunks))
	}
	if plan.Chunks[0].Start != 0 || plan.Chunks[0].End != 100 {
		t.Errorf("chunk %s, want [0,100)", plan.Chunks[0])
	}
}

func TestPlanTenMiB(t *testing.T) {
	plan := New(10 * testMiB)
	if plan.Concurrency != 4 {
		t.Errorf("concurrency %d, want 4", plan.Concurrency)
	}
	if len(plan.Chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(plan.Chunks))
	}
	wantLens := []int64{4 * testMiB, 4 * testMiB, 2 * testMiB}
	for i, want := range wantLens {
		if plan.Chunks[i].Len() != want {
			t.Errorf("chunk %d length %d, want %d", i, plan.Chunks[i].Len(), want)
		}
	}
	if plan.Chunks[2].End != 10485760 {
		t.Errorf("plan ends at %d, want 10485760", plan.Chunks[2].End)
	}
}

func TestPlanThreeGiB(t *testing.T) {
	plan := New(3 * testGiB)
	if plan.ChunkSize != 128*testMiB {
		t.Errorf("chunk size %d, want %d", plan.ChunkSize, 128*testMiB)
	}
	if plan.Concurrency != 16 {
		t.Errorf("concurrency %d, want 16", plan.Concurrency)
	}
	// ceil(3 GiB / 128 MiB) = 24
	if len(plan.Chunks) != 24 {
		t.Errorf("expected 24 chunks, got %d", len(plan.Chunks))
	}
}

func TestOverrideApply(t *testing.T) {
	o := Override{ChunkSize: testMiB, Concurrency: 2}
	plan := o.Apply(10 * testMiB)
	if plan.ChunkSize != testMiB || plan.Concurrency != 2 {
		t.Errorf("override not applied: chunk size %d concurrency %d", plan.ChunkSize, plan.Concurrency)
	}
	checkPartition(t, plan, 10*testMiB)

	// Zero fields fall back to the size-based policy
	partial := Override{Concurrency: 6}
	plan = partial.Apply(10 * testMiB)
	if plan.ChunkSize != 4*testMiB || plan.Concurrency != 6 {
		t.Errorf("partial override wrong: chunk size %d concurrency %d", plan.ChunkSize, plan.Concurrency)
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	content := "chunk_size: 1048576\nconcurrency: 2\nmax_attempts: 5\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	o, err := LoadOverride(path)
	if err != nil {
		t.Fatalf("LoadOverride: %v", err)
	}
	if o.ChunkSize != 1048576 || o.Concurrency != 2 || o.MaxAttempts != 5 {
		t.Errorf("unexpected override: %+v", o)
	}

	if _, err := LoadOverride(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("chunk_size: -5\n"), 0644)
	if _, err := LoadOverride(bad); err == nil {
		t.Error("expected error for negative values")
	}
}
