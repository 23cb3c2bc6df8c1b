package repository

import (
	"strings"
	"testing"
)

func TestDeliverySecondsExprByDialectSQLite(t *testing.T) {
	got := deliverySecondsExprByDialect("sqlite")
	if !strings.Contains(got, "julianday(delivered_at)") {
		t.Fatalf("sqlite expr should use julianday, got %s", got)
	}
	if !strings.Contains(got, "* 86400.0") {
		t.Fatalf("sqlite expr should convert days to seconds, got %s", got)
	}
}

func TestDeliverySecondsExprByDialectPostgres(t *testing.T) {
	got := deliverySecondsExprByDialect("postgres")
	want := "EXTRACT(EPOCH FROM (delivered_at - created_at))"
	if got != want {
		t.Fatalf("postgres expr mismatch, want %s got %s", want, got)
	}

	if deliverySecondsExprByDialect("postgresql") != want {
		t.Fatalf("postgresql alias should map to the postgres expr")
	}
}

func TestDeliverySecondsExprUnknownDialectFallsBack(t *testing.T) {
	if deliverySecondsExprByDialect("") != deliverySecondsExprByDialect("sqlite") {
		t.Fatalf("unknown dialect should fall back to sqlite expr")
	}
}
