package filesniff_test

import (
	"context"
	"testing"

	"github.com/gobeaver/filesniff"
	"github.com/gobeaver/filesniff/driver/memory"
)

func selectorFS(t *testing.T) *memory.Adapter {
	t.Helper()
	fs := memory.New()
	for path, content := range map[string]string{
		"in/orders.csv":          "a,b\n",
		"in/orders.tsv":          "a\tb\n",
		"in/notes.txt":           "hello\n",
		"in/2021/march.csv":      "a,b\n",
		"in/2021/q1/january.csv": "a,b\n",
		"out/report.csv":         "a,b\n",
	} {
		if err := fs.WriteBytes(path, []byte(content)); err != nil {
			t.Fatalf("WriteBytes(%s) error = %v", path, err)
		}
	}
	return fs
}

func TestListWithSelector(t *testing.T) {
	fs := selectorFS(t)
	mustGlob := func(sel filesniff.FileSelector, err error) filesniff.FileSelector {
		t.Helper()
		if err != nil {
			t.Fatalf("glob error = %v", err)
		}
		return sel
	}

	csvName := mustGlob(filesniff.Glob("*.csv"))
	textName := mustGlob(filesniff.Glob("*.{csv,tsv}"))
	topLevel := mustGlob(filesniff.PathGlob("in", "*.csv"))
	anyDepth := mustGlob(filesniff.PathGlob("/in/", "**.csv"))

	tests := []struct {
		name      string
		path      string
		selector  filesniff.FileSelector
		recursive bool
		want      []string
	}{
		{"nil selector lists children", "in", nil, false, []string{"in/notes.txt", "in/orders.csv", "in/orders.tsv"}},
		{"name glob", "in", csvName, true, []string{"in/2021/march.csv", "in/2021/q1/january.csv", "in/orders.csv"}},
		{"alternatives", "in", textName, false, []string{"in/orders.csv", "in/orders.tsv"}},
		{"path glob stays in one directory", "in", topLevel, true, []string{"in/orders.csv"}},
		{"path glob crosses directories", "in", anyDepth, true, []string{"in/2021/march.csv", "in/2021/q1/january.csv", "in/orders.csv"}},
		{"depth", "in", filesniff.And(csvName, filesniff.Depth(2, "in")), true, []string{"in/2021/march.csv", "in/orders.csv"}},
		{"not", "in", filesniff.Not(csvName), false, []string{"in/notes.txt", "in/orders.tsv"}},
		{"or", "", filesniff.Or(topLevel, mustGlob(filesniff.Glob("report.*"))), true, []string{"in/orders.csv", "out/report.csv"}},
		{
			"func",
			"in",
			filesniff.FuncSelector(func(f *filesniff.FileInfo) bool { return f.Size > 4 }),
			true,
			[]string{"in/notes.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := filesniff.ListWithSelector(context.Background(), fs, tt.path, tt.selector, tt.recursive)
			if err != nil {
				t.Fatalf("ListWithSelector() error = %v", err)
			}

			var got []string
			for _, f := range files {
				got = append(got, f.Path)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListWithSelector() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ListWithSelector()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestListWithSelectorErrors(t *testing.T) {
	fs := selectorFS(t)

	if _, err := filesniff.Glob("["); err == nil {
		t.Error("Glob() accepted an unterminated class")
	}
	if _, err := filesniff.PathGlob("in", "data/["); err == nil {
		t.Error("PathGlob() accepted an unterminated class")
	}

	if _, err := filesniff.ListWithSelector(context.Background(), fs, "missing", nil, true); !filesniff.IsNotExist(err) {
		t.Errorf("missing dir error = %v, want not exist", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := filesniff.ListWithSelector(ctx, fs, "in", nil, true); err != context.Canceled {
		t.Errorf("cancelled context error = %v", err)
	}
}
