package filesystem

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/local-mcps/devtools-mcp/internal/common"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

const defaultMaxLines = 100

type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Size         int64  `json:"size"`
	Modified     string `json:"modified"`
	ModifiedUnix int64  `json:"modified_unix"`
	Permissions  string `json:"permissions"`
	Mode         string `json:"mode"`
	IsSymlink    bool   `json:"is_symlink"`
	Extension    string `json:"extension"`
	Stem         string `json:"stem"`
}

type DirectoryEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

type DirectoryListing struct {
	Path    string           `json:"path"`
	Entries []DirectoryEntry `json:"entries"`
	Count   int              `json:"count"`
}

type FileContent struct {
	Path       string   `json:"path"`
	Content    []string `json:"content"`
	LinesRead  int      `json:"lines_read"`
	TotalLines int      `json:"total_lines"`
	Truncated  bool     `json:"truncated"`
}

func entryType(mode fs.FileMode) string {
	switch {
	case mode&fs.ModeSymlink != 0:
		return "symlink"
	case mode.IsDir():
		return "directory"
	case mode.IsRegular():
		return "file"
	default:
		return "other"
	}
}

func (s *Server) listDirectoryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_directory",
		Description: "List the entries of a directory",
		Params: []mcp.Param{
			mcp.StringParam("path", "Directory to list (default: current directory)", false),
			mcp.BoolParam("include_hidden", "Include entries whose name starts with a dot (default: true)", false),
		},
		ReadOnly: true,
		Handler:  s.handleListDirectory,
	}
}

func (s *Server) handleListDirectory(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	path, err := mcp.GetStringParam(params, "path", false, ".")
	if err != nil {
		return nil, err
	}

	includeHidden, err := mcp.GetBoolParam(params, "include_hidden", true)
	if err != nil {
		return nil, err
	}

	absPath, err := common.ResolveDirectory(path)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(absPath)
	if err != nil {
		return nil, common.ClassifyIOError(path, err)
	}

	entries := make([]DirectoryEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if !includeHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		var size int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}
		entries = append(entries, DirectoryEntry{
			Name: entry.Name(),
			Type: entryType(entry.Type()),
			Size: size,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	s.logger.Debug("listed directory", "path", absPath, "count", len(entries))
	return DirectoryListing{
		Path:    absPath,
		Entries: entries,
		Count:   len(entries),
	}, nil
}

func (s *Server) readFileTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "read_file",
		Description: "Read a UTF-8 text file, returning at most max_lines lines",
		Params: []mcp.Param{
			mcp.StringParam("path", "Path to the file", true),
			mcp.IntParam("max_lines", fmt.Sprintf("Maximum number of lines to return (default: %d)", defaultMaxLines), false),
		},
		ReadOnly: true,
		Handler:  s.handleReadFile,
	}
}

func (s *Server) handleReadFile(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	path, err := mcp.GetStringParam(params, "path", true, "")
	if err != nil {
		return nil, err
	}

	maxLines, err := mcp.GetIntParam(params, "max_lines", false, defaultMaxLines)
	if err != nil {
		return nil, err
	}
	if err := common.ValidatePositive("max_lines", maxLines); err != nil {
		return nil, err
	}

	absPath, info, err := common.ResolveExistingPath(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: '%s' is a directory", common.ErrInvalidArgument, path)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: '%s' is not a regular file", common.ErrInvalidArgument, path)
	}
	limit := s.limits.MaxFileSizeBytes()
	if err := common.CheckFileSize(path, info.Size(), limit); err != nil {
		return nil, err
	}

	data, err := readLimited(absPath, path, limit)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: '%s' is not valid UTF-8 text", common.ErrInvalidArgument, path)
	}

	lines := splitLines(string(data))
	content := lines
	if len(lines) > maxLines {
		content = lines[:maxLines]
	}

	return FileContent{
		Path:       absPath,
		Content:    content,
		LinesRead:  len(content),
		TotalLines: len(lines),
		Truncated:  len(lines) > maxLines,
	}, nil
}

// readLimited reads at most limit bytes, failing if the file holds more.
// The stat size is not trusted since the file can grow after the check.
func readLimited(absPath, path string, limit int64) ([]byte, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, common.ClassifyIOError(path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, common.ClassifyIOError(path, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: file '%s' grew above the %d byte limit while reading",
			common.ErrLimitExceeded, path, limit)
	}
	return data, nil
}

// splitLines splits on \n, dropping a trailing \r from each line. A final
// newline does not start another line.
func splitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func (s *Server) fileInfoTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_file_info",
		Description: "Get metadata about a file or directory",
		Params: []mcp.Param{
			mcp.StringParam("path", "Path to the file or directory", true),
		},
		ReadOnly: true,
		Handler:  s.handleFileInfo,
	}
}

func (s *Server) handleFileInfo(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	path, err := mcp.GetStringParam(params, "path", true, "")
	if err != nil {
		return nil, err
	}

	absPath, info, err := common.ResolveExistingPath(path)
	if err != nil {
		return nil, err
	}

	isSymlink := false
	if linfo, err := os.Lstat(absPath); err == nil {
		isSymlink = linfo.Mode()&os.ModeSymlink != 0
	}

	name := filepath.Base(absPath)
	ext := filepath.Ext(name)
	if ext == name {
		ext = ""
	}

	return FileInfo{
		Path:         absPath,
		Name:         name,
		Type:         entryType(info.Mode()),
		Size:         info.Size(),
		Modified:     info.ModTime().UTC().Format(time.RFC3339),
		ModifiedUnix: info.ModTime().Unix(),
		Permissions:  fmt.Sprintf("%04o", info.Mode().Perm()),
		Mode:         info.Mode().String(),
		IsSymlink:    isSymlink,
		Extension:    ext,
		Stem:         strings.TrimSuffix(name, ext),
	}, nil
}
