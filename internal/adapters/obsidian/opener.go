package obsidian

import (
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Opener implements ports.ObsidianOpener
type Opener struct {
	vaultPath string
	vaultName string
}

// NewOpener creates an Obsidian opener for a vault directory. An empty
// vaultName uses the directory name, which is what Obsidian registers by
// default.
func NewOpener(vaultPath, vaultName string) *Opener {
	if vaultName == "" {
		vaultName = filepath.Base(vaultPath)
	}
	return &Opener{
		vaultPath: vaultPath,
		vaultName: vaultName,
	}
}

// OpenFile opens a document in Obsidian using the obsidian:// URI scheme
func (o *Opener) OpenFile(filePath string) error {
	uri, err := o.BuildURI(filePath)
	if err != nil {
		return err
	}
	return o.openURI(uri)
}

// BuildURI constructs the obsidian:// URI for a document. Relative paths are
// taken as vault-relative; absolute paths must lie inside the vault.
func (o *Opener) BuildURI(filePath string) (string, error) {
	relPath := filePath
	if filepath.IsAbs(filePath) {
		rel, err := filepath.Rel(o.vaultPath, filePath)
		if err != nil {
			return "", fmt.Errorf("failed to get relative path: %w", err)
		}
		relPath = rel
	}

	relPath = filepath.ToSlash(filepath.Clean(relPath))
	if relPath == "." || relPath == ".." || strings.HasPrefix(relPath, "../") {
		return "", fmt.Errorf("file is outside the vault: %s", filePath)
	}

	uri := fmt.Sprintf("obsidian://open?vault=%s&file=%s",
		escape(o.vaultName),
		escape(relPath),
	)
	return uri, nil
}

// escape query-escapes s with spaces as %20, which Obsidian requires
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (o *Opener) openURI(uri string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", uri)
	case "linux":
		cmd = exec.Command("xdg-open", uri)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", uri)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return cmd.Run()
}
