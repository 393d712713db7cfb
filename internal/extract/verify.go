package extract

import (
	"bytes"
	"fmt"
	"os"

	"github.com/git-pkgs/electron-types/internal/core"
)

// DefaultRequiredDeclarations are the declarations a usable electron.d.ts must contain.
var DefaultRequiredDeclarations = []string{
	"declare namespace Electron",
	"interface App",
	"interface BrowserWindow",
	"interface WebContents",
	"interface IpcMain",
	"interface IpcRenderer",
}

// Verify checks a mirrored artifact: it must exist, be at least minBytes long
// and contain every entry of required. The first failure is returned as an
// *core.OutputValidationError.
func Verify(path string, minBytes int64, required []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &core.OutputValidationError{Path: path, Reason: "artifact not readable: " + err.Error()}
	}
	if int64(len(data)) < minBytes {
		return &core.OutputValidationError{
			Path:   path,
			Reason: fmt.Sprintf("artifact is %d bytes, want at least %d", len(data), minBytes),
		}
	}
	for _, decl := range required {
		if !bytes.Contains(data, []byte(decl)) {
			return &core.OutputValidationError{Path: path, Reason: fmt.Sprintf("missing declaration %q", decl)}
		}
	}
	return nil
}
