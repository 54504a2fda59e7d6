package diag

import "testing"

func TestRecordString(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "warning with line",
			rec:  Record{Severity: SeverityWarning, File: "bus.cfg", Line: 12, Message: "unknown section"},
			want: "bus.cfg:12: warning: unknown section",
		},
		{
			name: "error without line",
			rec:  Record{Severity: SeverityError, File: "bus.o3d", Message: "truncated data"},
			want: "bus.o3d: error: truncated data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListCounts(t *testing.T) {
	var l List
	l.Warnf("a.cfg", 1, "first")
	l.Warnf("a.cfg", 2, "second")
	l.Errorf("a.cfg", 3, "third")

	if l.Warnings() != 2 {
		t.Errorf("expected 2 warnings, got %d", l.Warnings())
	}
	if l.Errors() != 1 {
		t.Errorf("expected 1 error, got %d", l.Errors())
	}
	if len(l.Records()) != 3 {
		t.Errorf("expected 3 records, got %d", len(l.Records()))
	}
}

func TestNilListIsSafe(t *testing.T) {
	var l *List
	l.Warnf("a.cfg", 1, "ignored")
	l.Errorf("a.cfg", 2, "ignored")
	l.Merge(nil)

	if l.Warnings() != 0 || l.Errors() != 0 || l.Records() != nil {
		t.Error("nil list should collect nothing")
	}
}

func TestMerge(t *testing.T) {
	var a, b List
	a.Warnf("a.cfg", 1, "from a")
	b.Errorf("b.cfg", 2, "from b")

	a.Merge(&b)

	if len(a.Records()) != 2 {
		t.Fatalf("expected 2 records after merge, got %d", len(a.Records()))
	}
	if a.Errors() != 1 {
		t.Errorf("merged error count wrong: %d", a.Errors())
	}
}
