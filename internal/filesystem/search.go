package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/local-mcps/devtools-mcp/config"
	"github.com/local-mcps/devtools-mcp/internal/common"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

var errEnoughMatches = errors.New("enough matches")

type SearchMatch struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

type SearchResult struct {
	Directory string        `json:"directory"`
	Pattern   string        `json:"pattern"`
	Matches   []SearchMatch `json:"matches"`
	Count     int           `json:"count"`
	Truncated bool          `json:"truncated"`
}

func (s *Server) searchFilesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_files",
		Description: "Find files under a directory whose relative path matches a glob pattern (** matches any depth)",
		Params: []mcp.Param{
			mcp.StringParam("pattern", "Glob pattern relative to directory, e.g. *.go or **/*.md", true),
			mcp.StringParam("directory", "Directory to search (default: current directory)", false),
			mcp.IntParam("max_results", fmt.Sprintf("Maximum number of matches (default: %d)", s.limits.MaxSearchResults), false),
		},
		ReadOnly: true,
		Handler:  s.handleSearchFiles,
	}
}

func (s *Server) handleSearchFiles(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	pattern, err := mcp.GetStringParam(params, "pattern", true, "")
	if err != nil {
		return nil, err
	}

	directory, err := mcp.GetStringParam(params, "directory", false, ".")
	if err != nil {
		return nil, err
	}

	maxResults, err := mcp.GetIntParam(params, "max_results", false, s.limits.MaxSearchResults)
	if err != nil {
		return nil, err
	}
	if err := common.ValidatePositive("max_results", maxResults); err != nil {
		return nil, err
	}
	maxResults = common.ClampToCeiling(maxResults, config.MaxSearchResultsCeiling)

	if err := validatePattern(pattern); err != nil {
		return nil, err
	}

	absDir, err := common.ResolveDirectory(directory)
	if err != nil {
		return nil, err
	}

	matches := make([]SearchMatch, 0)
	truncated := false
	err = doublestar.GlobWalk(os.DirFS(absDir), pattern, func(p string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		if len(matches) == maxResults {
			truncated = true
			return errEnoughMatches
		}

		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		matches = append(matches, SearchMatch{
			Path: filepath.Join(absDir, filepath.FromSlash(p)),
			Name: d.Name(),
			Type: entryType(d.Type()),
			Size: size,
		})
		return nil
	})
	if err != nil && !errors.Is(err, errEnoughMatches) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: search cancelled: %v", common.ErrExecutionFailure, err)
		}
		return nil, common.ClassifyIOError(directory, err)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Path < matches[j].Path })

	s.logger.Debug("search completed", "directory", absDir, "pattern", pattern, "count", len(matches), "truncated", truncated)
	return SearchResult{
		Directory: absDir,
		Pattern:   pattern,
		Matches:   matches,
		Count:     len(matches),
		Truncated: truncated,
	}, nil
}

// validatePattern keeps the search inside the requested directory.
func validatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("%w: empty pattern", common.ErrInvalidArgument)
	}
	if strings.HasPrefix(pattern, "/") || filepath.IsAbs(pattern) {
		return fmt.Errorf("%w: pattern '%s' must be relative to the search directory", common.ErrInvalidArgument, pattern)
	}
	for _, segment := range strings.Split(pattern, "/") {
		if segment == ".." {
			return fmt.Errorf("%w: pattern '%s' must not contain '..'", common.ErrInvalidArgument, pattern)
		}
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: invalid glob pattern '%s': %v", common.ErrInvalidArgument, pattern, doublestar.ErrBadPattern)
	}
	return nil
}
