package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/brackenfield/quill/internal/pathutil"
)

// datePrefixRe matches a leading YYYY-MM-DD- date prefix in a filename,
// stripped before slugifying (supplemented feature, SPEC_FULL §3).
var datePrefixRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)

// listSourceFiles walks root, collecting every file matching glob
// (filepath.Match against the base name, §4.7 step 1). Files inside a page
// bundle directory (one containing "index.md") other than the index.md
// itself are excluded from the result; bundleFiles maps each bundle
// directory to its co-located non-markdown asset names.
func listSourceFiles(root, glob string) (files []SourceFile, bundleFiles map[string][]string, err error) {
	bundleDirs := make(map[string]bool)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && filepath.Base(path) == "index.md" {
			bundleDirs[filepath.Dir(path)] = true
		}
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("content: scan for bundles under %s: %w", root, walkErr)
	}

	bundleFiles = make(map[string][]string)
	for dir := range bundleDirs {
		entries, rerr := os.ReadDir(dir)
		if rerr != nil {
			continue
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) == ".md" {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		bundleFiles[dir] = names
	}

	walkErr = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		matched, _ := filepath.Match(glob, filepath.Base(path))
		if !matched {
			return nil
		}
		dir := filepath.Dir(path)
		if bundleDirs[dir] && filepath.Base(path) != "index.md" {
			return nil
		}

		info, ierr := d.Info()
		if ierr != nil {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return nil
		}

		files = append(files, SourceFile{
			AbsPath: path,
			RelPath: filepath.ToSlash(rel),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("content: walk %s: %w", root, walkErr)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, bundleFiles, nil
}

// slugFromRelPath derives a page's URL-safe slug path from its path
// relative to the content root (§4.7 step 2, §3 invariant): a date prefix
// is stripped from the final segment before slugifying, and a bundle's
// index.md takes its slug from the containing directory rather than the
// literal filename "index" (supplemented feature, SPEC_FULL §3).
func slugFromRelPath(relPath string, isBundle bool) string {
	dir := filepath.ToSlash(filepath.Dir(relPath))
	base := strings.TrimSuffix(filepath.Base(relPath), filepath.Ext(relPath))

	if isBundle {
		base = filepath.Base(dir)
		dir = filepath.ToSlash(filepath.Dir(dir))
	}
	base = datePrefixRe.ReplaceAllString(base, "")

	if dir == "." || dir == "" {
		return pathutil.Slugify(base)
	}
	return pathutil.SlugifyPath(dir) + "/" + pathutil.Slugify(base)
}
