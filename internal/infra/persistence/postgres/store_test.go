package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"hcsgrid/internal/catalog/core"
)

func TestOpenPropagatesOpenError(t *testing.T) {
	want := errors.New("boom")
	var gotDriver, gotDSN string
	restore := OverrideSQLOpen(func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return nil, want
	})
	defer restore()
	if _, err := Open(""); !errors.Is(err, want) {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
	if gotDriver != defaultDriver || gotDSN != defaultDSN {
		t.Fatalf("unexpected driver/dsn %q %q", gotDriver, gotDSN)
	}
}

func TestOpenPingFailure(t *testing.T) {
	// Port 1 on loopback refuses connections, so Ping fails fast.
	_, err := Open("postgres://user@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	if err == nil || !strings.Contains(err.Error(), "ping postgres") {
		t.Fatalf("expected ping failure, got %v", err)
	}
}

func TestUniqueViolationDetection(t *testing.T) {
	if !dialect.IsUniqueViolation(&pgconn.PgError{Code: uniqueViolation}) {
		t.Fatalf("expected unique violation to be detected")
	}
	if dialect.IsUniqueViolation(errors.New("23505")) {
		t.Fatalf("plain error must not count as unique violation")
	}
	if got := dialect.Bind(3); got != "$3" {
		t.Fatalf("bind = %q", got)
	}
}

func TestIntegration(t *testing.T) {
	dsn := os.Getenv("HCSGRID_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("HCSGRID_TEST_POSTGRES_DSN not set")
	}
	st, err := Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = st.Close() }()
	ctx := context.Background()
	root := "/it/" + uuid.NewString()
	snap := core.Snapshot{ID: uuid.NewString(), Root: root, Kind: "plate", ResolvedAt: time.Now()}
	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.Save(ctx, snap); !errors.Is(err, core.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	got, err := st.Latest(ctx, root)
	if err != nil || got.ID != snap.ID {
		t.Fatalf("latest = %+v, %v", got, err)
	}
}
