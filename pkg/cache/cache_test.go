package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "metric:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expected miss before Set")
	}

	// Set then Get
	if err := c.Set(ctx, "metric:abc", []byte("0.00123"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "metric:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if string(data) != "0.00123" {
		t.Errorf("Get data = %q", data)
	}

	// A negative ttl stores the entry already expired
	if err := c.Set(ctx, "metric:old", []byte("x"), -time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "metric:old")
	if hit {
		t.Error("expired entry should be a miss")
	}

	// A zero ttl stores the entry without expiry
	if err := c.Set(ctx, "metric:keep", []byte("y"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "metric:keep")
	if !hit {
		t.Error("entry without expiry should be a hit")
	}

	// Delete removes the entry; deleting a missing key is not an error
	if err := c.Delete(ctx, "metric:abc"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "metric:abc")
	if hit {
		t.Error("expected miss after Delete")
	}
	if err := c.Delete(ctx, "metric:never"); err != nil {
		t.Errorf("Delete of missing key should not error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// Different rects should produce different keys
	mk1 := k.MetricKey("sig1", "sig2", MetricKeyOpts{Left: 560, Top: 170, Width: 100, Height: 100})
	mk2 := k.MetricKey("sig1", "sig2", MetricKeyOpts{Left: 600, Top: 280, Width: 100, Height: 100})
	if mk1 == mk2 {
		t.Error("Different MetricKeyOpts should produce different keys")
	}

	// Full-image keys should differ from inset keys
	mk3 := k.MetricKey("sig1", "sig2", MetricKeyOpts{Full: true})
	if mk3 == mk1 {
		t.Error("Full-image key should differ from inset key")
	}

	// Swapping image and reference should change the key
	mk4 := k.MetricKey("sig2", "sig1", MetricKeyOpts{Full: true})
	if mk4 == mk3 {
		t.Error("Swapped signatures should produce different keys")
	}
}

func TestFileSignature(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.exr")
	if err := os.WriteFile(path, []byte("pixels"), 0644); err != nil {
		t.Fatal(err)
	}

	s1, err := FileSignature(path)
	if err != nil {
		t.Fatalf("FileSignature error: %v", err)
	}
	s2, err := FileSignature(path)
	if err != nil {
		t.Fatalf("FileSignature error: %v", err)
	}
	if s1 != s2 {
		t.Error("FileSignature should be stable for an unchanged file")
	}

	// A rewrite with different size must change the signature
	if err := os.WriteFile(path, []byte("different pixels"), 0644); err != nil {
		t.Fatal(err)
	}
	s3, err := FileSignature(path)
	if err != nil {
		t.Fatalf("FileSignature error: %v", err)
	}
	if s3 == s1 {
		t.Error("FileSignature should change when the file changes")
	}

	// Missing file is an error
	if _, err := FileSignature(filepath.Join(dir, "missing.exr")); err == nil {
		t.Error("FileSignature of missing file should error")
	}
}
