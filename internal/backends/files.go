package backends

import (
	"bytes"
	"context"
	"dataweave/internal/models"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ledongthuc/pdf"
	gocache "github.com/patrickmn/go-cache"
	"github.com/xuri/excelize/v2"
)

// FilesSchemaContext describes the file backend's command language for the
// query translator.
const FilesSchemaContext = `File archive commands:
- "list" or "list <folder>": list files, optionally under one folder
- "search <text>": find files whose name contains the text
- "read <name>": return the text content of one file (txt, md, csv, pdf, xlsx)
- "stat <name>": return size and modification time for one file`

// maxReadBytes caps plain-text reads so one huge file cannot blow up a result.
const maxReadBytes = 256 * 1024

// FileExecutor serves the file-storage backend from a root directory.
// Listing and search results are cached with a TTL; an fsnotify watcher
// flushes the cache whenever anything under the root changes.
type FileExecutor struct {
	root       string
	translator Translator
	cache      *gocache.Cache
	watcher    *fsnotify.Watcher
}

// NewFileExecutor creates the file-storage adapter rooted at dir.
func NewFileExecutor(dir string, translator Translator, cacheTTL time.Duration) (*FileExecutor, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("files root not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("files root %s is not a directory", dir)
	}

	e := &FileExecutor{
		root:       dir,
		translator: translator,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
	}

	// Cache invalidation is best-effort: if the watcher cannot start, the
	// TTL alone bounds staleness.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("⚠️  [FILES] Could not start watcher: %v (cache falls back to TTL expiry)", err)
		return e, nil
	}
	e.watcher = watcher

	if err := watcher.Add(dir); err != nil {
		log.Printf("⚠️  [FILES] Could not watch %s: %v", dir, err)
	}
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() && path != dir {
			watcher.Add(path)
		}
		return nil
	})

	go e.watchLoop()

	return e, nil
}

// watchLoop flushes the cache on any filesystem event under the root.
func (e *FileExecutor) watchLoop() {
	for {
		select {
		case event, ok := <-e.watcher.Events:
			if !ok {
				return
			}
			e.cache.Flush()
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					e.watcher.Add(event.Name)
				}
			}
		case err, ok := <-e.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  [FILES] Watcher error: %v", err)
		}
	}
}

// Close stops the filesystem watcher.
func (e *FileExecutor) Close() error {
	if e.watcher != nil {
		return e.watcher.Close()
	}
	return nil
}

// Name returns the backend key
func (e *FileExecutor) Name() string { return models.BackendFiles }

// Available reports whether the root directory is still accessible
func (e *FileExecutor) Available() bool {
	if e == nil {
		return false
	}
	info, err := os.Stat(e.root)
	return err == nil && info.IsDir()
}

// Execute translates (if needed) and runs one file command.
func (e *FileExecutor) Execute(ctx context.Context, query string) models.ExecutionResult {
	start := time.Now()

	native := strings.TrimSpace(query)
	if !IsNativeFileCommand(native) {
		translated, err := e.translator.Translate(ctx, query, FilesSchemaContext)
		if err != nil {
			return failure("", time.Since(start).Milliseconds(), "failed to translate query: %v", err)
		}
		native = strings.TrimSpace(translated)
		log.Printf("🔄 [FILES] Translated %q -> %q", query, native)
	}

	verb, arg := splitCommand(native)

	var data []map[string]any
	var err error
	switch verb {
	case "list":
		data, err = e.cached(native, func() ([]map[string]any, error) { return e.list(arg) })
	case "search":
		data, err = e.cached(native, func() ([]map[string]any, error) { return e.search(arg) })
	case "read":
		data, err = e.read(arg)
	case "stat":
		data, err = e.stat(arg)
	default:
		err = fmt.Errorf("unknown file command: %q", native)
	}
	if err != nil {
		return failure(native, time.Since(start).Milliseconds(), "%v", err)
	}

	return models.ExecutionResult{
		Success:     true,
		NativeQuery: native,
		RowCount:    len(data),
		Data:        data,
		ElapsedMs:   time.Since(start).Milliseconds(),
	}
}

func splitCommand(native string) (verb, arg string) {
	fields := strings.SplitN(strings.TrimSpace(native), " ", 2)
	verb = strings.ToLower(fields[0])
	if len(fields) > 1 {
		arg = strings.Trim(strings.TrimSpace(fields[1]), `"'`)
	}
	return verb, arg
}

// cached serves a command from the listing cache, computing and storing the
// result on a miss.
func (e *FileExecutor) cached(key string, compute func() ([]map[string]any, error)) ([]map[string]any, error) {
	if hit, ok := e.cache.Get(key); ok {
		return hit.([]map[string]any), nil
	}
	data, err := compute()
	if err != nil {
		return nil, err
	}
	e.cache.Set(key, data, gocache.DefaultExpiration)
	return data, nil
}

// resolve joins a relative path onto the root and rejects traversal outside it.
func (e *FileExecutor) resolve(rel string) (string, error) {
	path := filepath.Join(e.root, filepath.Clean("/"+rel))
	if !strings.HasPrefix(path, filepath.Clean(e.root)) {
		return "", fmt.Errorf("path %q escapes the archive root", rel)
	}
	return path, nil
}

func fileRow(root, path string, info fs.FileInfo) map[string]any {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return map[string]any{
		"name":     info.Name(),
		"path":     rel,
		"size":     info.Size(),
		"modified": info.ModTime().UTC().Format(time.RFC3339),
		"is_dir":   info.IsDir(),
	}
}

// list returns the entries of one folder (the root when folder is empty).
func (e *FileExecutor) list(folder string) ([]map[string]any, error) {
	dir, err := e.resolve(folder)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("folder not found: %q", folder)
	}

	rows := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		rows = append(rows, fileRow(e.root, filepath.Join(dir, entry.Name()), info))
	}
	return rows, nil
}

// search walks the archive for names containing the text, case-insensitive.
func (e *FileExecutor) search(text string) ([]map[string]any, error) {
	if text == "" {
		return nil, fmt.Errorf("search needs a text argument")
	}
	needle := strings.ToLower(text)

	var rows []map[string]any
	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.Contains(strings.ToLower(d.Name()), needle) {
			info, err := d.Info()
			if err == nil {
				rows = append(rows, fileRow(e.root, path, info))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// findFile locates one file by exact name or archive-relative path.
func (e *FileExecutor) findFile(name string) (string, fs.FileInfo, error) {
	if resolved, err := e.resolve(name); err == nil {
		if info, err := os.Stat(resolved); err == nil && !info.IsDir() {
			return resolved, info, nil
		}
	}

	var found string
	var foundInfo fs.FileInfo
	filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || found != "" {
			return nil
		}
		if strings.EqualFold(d.Name(), name) {
			if info, err := d.Info(); err == nil {
				found = path
				foundInfo = info
			}
		}
		return nil
	})
	if found == "" {
		return "", nil, fmt.Errorf("file not found: %q", name)
	}
	return found, foundInfo, nil
}

// read extracts the text content of one file. PDF and XLSX get real text
// extraction; everything else is served as-is up to maxReadBytes.
func (e *FileExecutor) read(name string) ([]map[string]any, error) {
	if name == "" {
		return nil, fmt.Errorf("read needs a file name")
	}
	path, info, err := e.findFile(name)
	if err != nil {
		return nil, err
	}

	var content string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		content, err = extractPDF(path)
	case ".xlsx":
		content, err = extractXLSX(path)
	default:
		content, err = readText(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}

	return []map[string]any{{
		"name":     info.Name(),
		"size":     info.Size(),
		"modified": info.ModTime().UTC().Format(time.RFC3339),
		"content":  content,
	}}, nil
}

// stat returns metadata for one file.
func (e *FileExecutor) stat(name string) ([]map[string]any, error) {
	if name == "" {
		return nil, fmt.Errorf("stat needs a file name")
	}
	path, info, err := e.findFile(name)
	if err != nil {
		return nil, err
	}
	return []map[string]any{fileRow(e.root, path, info)}, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(data) > maxReadBytes {
		data = data[:maxReadBytes]
	}
	return string(data), nil
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	text := buf.String()
	if len(text) > maxReadBytes {
		text = text[:maxReadBytes]
	}
	return text, nil
}

func extractXLSX(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		sb.WriteString(sheet + "\n")
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
			if sb.Len() > maxReadBytes {
				return sb.String()[:maxReadBytes], nil
			}
		}
	}
	return sb.String(), nil
}
