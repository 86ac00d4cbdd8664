// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/khatulistiwa/khatdev/pkg/khapp"
)

// SourceExtension is the extension of Khatulistiwa source files.
const SourceExtension = ".khat"

// ExecutableCandidates returns the entry point file names searched at the
// project root, in priority order.
func ExecutableCandidates(appName string) []string {
	return []string{
		strings.ToLower(appName) + SourceExtension,
		"main" + SourceExtension,
		"app" + SourceExtension,
	}
}

// CompileExecutable produces the executable section for a project. The first
// existing candidate is tagged with the KHAT header and its file name is
// returned as source. When none exists the placeholder is returned with an
// empty source.
func CompileExecutable(dir, appName string) (exe []byte, source string, err error) {
	for _, name := range ExecutableCandidates(appName) {
		path := filepath.Join(dir, name)
		data, readErr := os.ReadFile(path)
		if errors.Is(readErr, fs.ErrNotExist) {
			continue
		}
		if readErr != nil {
			return nil, "", fmt.Errorf("reading executable %s: %w", name, readErr)
		}
		return khapp.TagExecutable(data), name, nil
	}
	return []byte(khapp.PlaceholderExecutable), "", nil
}
