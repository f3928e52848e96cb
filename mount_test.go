package filesniff_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gobeaver/filesniff"
	"github.com/gobeaver/filesniff/driver/memory"
)

// streamOnly hides the CanReadRange capability of the wrapped driver
type streamOnly struct {
	filesniff.FileReader
}

func mountFS(t *testing.T) (*filesniff.MountManager, *memory.Adapter, *memory.Adapter) {
	t.Helper()

	landing := memory.New()
	archive := memory.New()
	for fs, files := range map[*memory.Adapter]map[string]string{
		landing: {"in/orders.csv": "a,b\n", "in/notes.txt": "hello\n"},
		archive: {"2020/old.csv": "0123456789"},
	} {
		for p, content := range files {
			if err := fs.WriteBytes(p, []byte(content)); err != nil {
				t.Fatalf("WriteBytes(%s) error = %v", p, err)
			}
		}
	}

	mounts := filesniff.NewMountManager()
	if err := mounts.Mount("/landing", landing); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if err := mounts.Mount("cloud/archive/", streamOnly{archive}); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return mounts, landing, archive
}

func TestMount(t *testing.T) {
	mounts, landing, _ := mountFS(t)

	tests := []struct {
		name string
		path string
		fs   filesniff.FileReader
		want error
	}{
		{"duplicate", "/landing", landing, filesniff.ErrMountExists},
		{"duplicate after cleaning", "landing/", landing, filesniff.ErrMountExists},
		{"empty", "", landing, filesniff.ErrEmptyMountPath},
		{"root", "/", landing, filesniff.ErrEmptyMountPath},
		{"nil driver", "/other", nil, filesniff.ErrNilDriver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := mounts.Mount(tt.path, tt.fs); !errors.Is(err, tt.want) {
				t.Errorf("Mount(%q) error = %v, want %v", tt.path, err, tt.want)
			}
		})
	}

	got := mounts.MountPaths()
	if len(got) != 2 || got[0] != "/cloud/archive" || got[1] != "/landing" {
		t.Errorf("MountPaths() = %v", got)
	}

	if err := mounts.Unmount("/landing"); err != nil {
		t.Fatalf("Unmount() error = %v", err)
	}
	if err := mounts.Unmount("/landing"); !errors.Is(err, filesniff.ErrMountNotFound) {
		t.Errorf("second Unmount() error = %v", err)
	}
	if _, err := mounts.ReadAll(context.Background(), "/landing/in/orders.csv"); !errors.Is(err, filesniff.ErrMountNotFound) {
		t.Errorf("ReadAll() after Unmount error = %v", err)
	}
}

func TestMountRead(t *testing.T) {
	mounts, _, _ := mountFS(t)
	ctx := context.Background()

	data, err := mounts.ReadAll(ctx, "/landing/in/orders.csv")
	if err != nil || string(data) != "a,b\n" {
		t.Errorf("ReadAll() = %q, %v", data, err)
	}

	rc, err := mounts.Read(ctx, "cloud/archive/2020/old.csv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	rc.Close()

	if _, err := mounts.ReadAll(ctx, "/elsewhere/x.csv"); !errors.Is(err, filesniff.ErrMountNotFound) {
		t.Errorf("unmounted path error = %v", err)
	}
	if _, err := mounts.ReadAll(ctx, "/landing/missing.csv"); !filesniff.IsNotExist(err) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestMountReadRange(t *testing.T) {
	mounts, _, _ := mountFS(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		path   string
		offset int64
		length int64
		want   string
	}{
		{"native range", "/landing/in/orders.csv", 2, 10, "b\n"},
		{"streamed range", "/cloud/archive/2020/old.csv", 3, 4, "3456"},
		{"streamed short read", "/cloud/archive/2020/old.csv", 8, 4, "89"},
		{"streamed past end", "/cloud/archive/2020/old.csv", 20, 4, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mounts.ReadRange(ctx, tt.path, tt.offset, tt.length)
			if err != nil {
				t.Fatalf("ReadRange() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadRange() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := mounts.ReadRange(ctx, "/landing/in/orders.csv", -1, 2); !errors.Is(err, filesniff.ErrInvalidOffset) {
		t.Errorf("negative offset error = %v", err)
	}
}

func TestMountStatAndList(t *testing.T) {
	mounts, _, _ := mountFS(t)
	ctx := context.Background()

	info, err := mounts.Stat(ctx, "/landing/in/orders.csv")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Path != "/landing/in/orders.csv" || info.Size != 4 {
		t.Errorf("Stat() = %+v", info)
	}

	info, err = mounts.Stat(ctx, "/cloud")
	if err != nil || !info.IsDir || info.Name != "cloud" {
		t.Errorf("Stat(/cloud) = %+v, %v", info, err)
	}

	if _, err := mounts.Stat(ctx, "/nowhere"); !errors.Is(err, filesniff.ErrMountNotFound) {
		t.Errorf("Stat(/nowhere) error = %v", err)
	}

	tests := []struct {
		name      string
		prefix    string
		recursive bool
		want      []string
	}{
		{"mount points", "/", false, []string{"/cloud", "/landing"}},
		{"virtual dir", "/cloud", false, []string{"/cloud/archive"}},
		{"inside a mount", "/landing/in", false, []string{"/landing/in/notes.txt", "/landing/in/orders.csv"}},
		{"everything", "", true, []string{
			"/cloud", "/landing",
			"/cloud/archive",
			"/cloud/archive/2020", "/cloud/archive/2020/old.csv",
			"/landing/in", "/landing/in/notes.txt", "/landing/in/orders.csv",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := mounts.ListContents(ctx, tt.prefix, tt.recursive)
			if err != nil {
				t.Fatalf("ListContents() error = %v", err)
			}
			if len(files) != len(tt.want) {
				t.Fatalf("ListContents() = %v, want %v", files, tt.want)
			}
			for i, f := range files {
				if f.Path != tt.want[i] {
					t.Errorf("ListContents()[%d] = %s, want %s", i, f.Path, tt.want[i])
				}
			}
		})
	}

	if _, err := mounts.ListContents(ctx, "/nowhere", false); !errors.Is(err, filesniff.ErrMountNotFound) {
		t.Errorf("ListContents(/nowhere) error = %v", err)
	}
}

func TestMountWithSelector(t *testing.T) {
	mounts, _, _ := mountFS(t)

	csv, err := filesniff.PathGlob("/", "**.csv")
	if err != nil {
		t.Fatal(err)
	}
	files, err := filesniff.ListWithSelector(context.Background(), mounts, "/", csv, true)
	if err != nil {
		t.Fatalf("ListWithSelector() error = %v", err)
	}

	want := []string{"/cloud/archive/2020/old.csv", "/landing/in/orders.csv"}
	if len(files) != len(want) {
		t.Fatalf("ListWithSelector() = %v, want %v", files, want)
	}
	for i, f := range files {
		if f.Path != want[i] {
			t.Errorf("ListWithSelector()[%d] = %s, want %s", i, f.Path, want[i])
		}
	}
}
