package filevalidator

import (
	"strings"
	"testing"

	"github.com/gobeaver/filesniff/filetype"
)

func TestResultBuilder(t *testing.T) {
	r := NewResultBuilder("orders.csv", 2048).
		SetType(filetype.CSV).
		SetRows(12).
		Pass("size", "2 KB").
		Build()

	if !r.Valid {
		t.Fatal("result with only passed checks should be valid")
	}
	if r.Error() != nil || r.AllErrors() != nil {
		t.Error("valid result should not report errors")
	}
	if !strings.HasPrefix(r.Summary(), "✓ orders.csv (CSV, 2 KB, 12 rows)") {
		t.Errorf("Summary() = %q", r.Summary())
	}
}

func TestResultBuilderFail(t *testing.T) {
	r := NewResultBuilder("orders.csv", 10).
		Pass("size", "10 B").
		Fail(ErrorTypeDialect, "delimiter is TAB, expected COMMA").
		Fail(ErrorTypeHeader, "header is ABSENT, expected PRESENT").
		AddWarning("sampled").
		Build()

	if r.Valid {
		t.Fatal("result with a failed check should be invalid")
	}
	if !IsErrorOfType(r.Error(), ErrorTypeDialect) {
		t.Errorf("Error() = %v, want the first dialect error", r.Error())
	}
	want := "validation failed: delimiter is TAB, expected COMMA; header is ABSENT, expected PRESENT"
	if got := r.AllErrors().Error(); got != want {
		t.Errorf("AllErrors() = %q, want %q", got, want)
	}
	if got := r.Summary(); got != "✗ orders.csv failed: delimiter is TAB, expected COMMA" {
		t.Errorf("Summary() = %q", got)
	}
	if len(r.FailedChecks()) != 2 || len(r.Checks) != 3 {
		t.Errorf("checks = %+v", r.Checks)
	}
	if !r.HasWarnings() {
		t.Error("HasWarnings() = false, want true")
	}
}

func TestFormatSizeReadable(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{10 * MB, "10 MB"},
		{GB + GB/10, "1.1 GB"},
	}

	for _, tt := range tests {
		if got := FormatSizeReadable(tt.size); got != tt.want {
			t.Errorf("FormatSizeReadable(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
