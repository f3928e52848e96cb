package filesniff

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ============================================================================
// FileSelector Interface
// ============================================================================

// FileSelector decides which files a listing returns and which directories
// it descends into.
//
//	// every CSV below /incoming, at most two levels deep
//	csv, _ := filesniff.PathGlob("incoming", "**.csv")
//	files, err := filesniff.ListWithSelector(ctx, fs, "incoming",
//	    filesniff.And(csv, filesniff.Depth(2, "incoming")), true)
type FileSelector interface {
	// Match returns true if the file should be included in results.
	Match(file *FileInfo) bool

	// TraverseDescendants returns true if directory descendants should be
	// traversed. Only called for directories.
	TraverseDescendants(file *FileInfo) bool
}

// ============================================================================
// ListWithSelector
// ============================================================================

// ListWithSelector lists the regular files below path that selector
// matches, ordered by path. A nil selector matches everything.
func ListWithSelector(ctx context.Context, fs FileReader, path string, selector FileSelector, recursive bool) ([]FileInfo, error) {
	if selector == nil {
		selector = All()
	}

	var results []FileInfo
	if err := listRecursive(ctx, fs, path, selector, recursive, &results); err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b FileInfo) int { return strings.Compare(a.Path, b.Path) })
	return results, nil
}

func listRecursive(ctx context.Context, fs FileReader, path string, selector FileSelector, recursive bool, results *[]FileInfo) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	files, err := fs.ListContents(ctx, path, false)
	if err != nil {
		return err
	}

	for i := range files {
		file := &files[i]

		if file.IsDir {
			if recursive && selector.TraverseDescendants(file) {
				if err := listRecursive(ctx, fs, file.Path, selector, recursive, results); err != nil {
					return err
				}
			}
			continue
		}
		if selector.Match(file) {
			*results = append(*results, *file)
		}
	}

	return nil
}

// ============================================================================
// Built-in Selectors
// ============================================================================

// AllSelector matches all files and traverses all directories.
type AllSelector struct{}

func (s AllSelector) Match(file *FileInfo) bool               { return true }
func (s AllSelector) TraverseDescendants(file *FileInfo) bool { return true }

// All returns a selector that matches all files
func All() FileSelector {
	return AllSelector{}
}

// ============================================================================
// Glob - Pattern matching
// ============================================================================

type globSelector struct {
	g    glob.Glob
	base string
	name bool
}

// Glob matches file names against pattern. Besides *, ? and character
// classes it supports alternatives such as "*.{csv,tsv}".
func Glob(pattern string) (FileSelector, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &globSelector{g: g, name: true}, nil
}

// PathGlob matches paths relative to base against pattern. "*" stays within
// one directory and "**" crosses directories; an empty pattern matches
// everything.
func PathGlob(base, pattern string) (FileSelector, error) {
	if pattern == "" {
		pattern = "**"
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &globSelector{g: g, base: cleanBase(base)}, nil
}

func (s *globSelector) Match(file *FileInfo) bool {
	if s.name {
		return s.g.Match(file.Name)
	}
	return s.g.Match(relativeTo(s.base, file.Path))
}

func (s *globSelector) TraverseDescendants(file *FileInfo) bool {
	return true
}

// cleanBase turns a listing root into the prefix of the paths below it
func cleanBase(base string) string {
	return strings.Trim(path.Clean("/"+base), "/")
}

func relativeTo(base, p string) string {
	p = strings.TrimPrefix(p, "/")
	if base == "" {
		return p
	}
	return strings.TrimPrefix(p, base+"/")
}

// ============================================================================
// Depth - Depth limiting
// ============================================================================

type depthSelector struct {
	maxDepth int
	basePath string
}

// Depth limits traversal to maxDepth levels below basePath.
// Depth 1 = immediate children only.
func Depth(maxDepth int, basePath string) FileSelector {
	return &depthSelector{
		maxDepth: maxDepth,
		basePath: cleanBase(basePath),
	}
}

func (s *depthSelector) getDepth(path string) int {
	rel := relativeTo(s.basePath, path)
	if rel == "" {
		return 0
	}
	return strings.Count(rel, "/") + 1
}

func (s *depthSelector) Match(file *FileInfo) bool {
	return s.getDepth(file.Path) <= s.maxDepth
}

func (s *depthSelector) TraverseDescendants(file *FileInfo) bool {
	return s.getDepth(file.Path) < s.maxDepth
}

// ============================================================================
// Composable Selectors (And, Or, Not)
// ============================================================================

type andSelector struct {
	selectors []FileSelector
}

// And matches only if ALL selectors match.
func And(selectors ...FileSelector) FileSelector {
	return &andSelector{selectors: selectors}
}

func (s *andSelector) Match(file *FileInfo) bool {
	for _, sel := range s.selectors {
		if !sel.Match(file) {
			return false
		}
	}
	return true
}

// TraverseDescendants descends only where every selector would
func (s *andSelector) TraverseDescendants(file *FileInfo) bool {
	for _, sel := range s.selectors {
		if !sel.TraverseDescendants(file) {
			return false
		}
	}
	return true
}

type orSelector struct {
	selectors []FileSelector
}

// Or matches if ANY selector matches.
func Or(selectors ...FileSelector) FileSelector {
	return &orSelector{selectors: selectors}
}

func (s *orSelector) Match(file *FileInfo) bool {
	for _, sel := range s.selectors {
		if sel.Match(file) {
			return true
		}
	}
	return false
}

func (s *orSelector) TraverseDescendants(file *FileInfo) bool {
	for _, sel := range s.selectors {
		if sel.TraverseDescendants(file) {
			return true
		}
	}
	return false
}

type notSelector struct {
	selector FileSelector
}

// Not inverts a selector's match result.
func Not(selector FileSelector) FileSelector {
	return &notSelector{selector: selector}
}

func (s *notSelector) Match(file *FileInfo) bool {
	return !s.selector.Match(file)
}

func (s *notSelector) TraverseDescendants(file *FileInfo) bool {
	return true
}

// ============================================================================
// FuncSelector
// ============================================================================

type funcSelector struct {
	matchFn func(*FileInfo) bool
}

// FuncSelector creates a selector from a custom function, e.g. a size limit:
//
//	FuncSelector(func(f *filesniff.FileInfo) bool { return f.Size < 1<<30 })
func FuncSelector(fn func(*FileInfo) bool) FileSelector {
	return &funcSelector{matchFn: fn}
}

func (s *funcSelector) Match(file *FileInfo) bool               { return s.matchFn(file) }
func (s *funcSelector) TraverseDescendants(file *FileInfo) bool { return true }
