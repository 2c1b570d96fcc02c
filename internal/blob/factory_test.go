package blob

import (
	"context"
	"testing"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg := ConfigFromEnv(func(string) string { return "" })
	if cfg.Driver != DriverFilesystem {
		t.Fatalf("driver = %s", cfg.Driver)
	}
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()
	mem, err := Open(ctx, Config{Driver: DriverMemory})
	if err != nil || mem.Driver() != DriverMemory {
		t.Fatalf("memory: %v", err)
	}
	fs, err := Open(ctx, Config{Driver: DriverFilesystem, FSRoot: t.TempDir()})
	if err != nil || fs.Driver() != DriverFilesystem {
		t.Fatalf("fs: %v", err)
	}
	if _, err := Open(ctx, Config{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestOpenRoot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, prefix, err := OpenRoot(ctx, dir, Config{})
	if err != nil || st.Driver() != DriverFilesystem || prefix != "" {
		t.Fatalf("local root: %v %q", err, prefix)
	}
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")
	st, prefix, err = OpenRoot(ctx, "s3://bucket/plates/p1/", Config{})
	if err != nil || st.Driver() != DriverS3 || prefix != "plates/p1" {
		t.Fatalf("s3 root: %v %q", err, prefix)
	}
	if _, _, err := OpenRoot(ctx, "s3:///nobucket", Config{}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	if _, _, err := OpenRoot(ctx, "gs://bucket/x", Config{}); err == nil {
		t.Fatalf("expected unsupported scheme error")
	}
}
