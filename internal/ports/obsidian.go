package ports

// ObsidianOpener defines the interface for opening files in Obsidian
type ObsidianOpener interface {
	// OpenFile opens the specified file in Obsidian using the obsidian:// URI scheme
	// filePath is vault-relative or an absolute path inside the vault
	OpenFile(filePath string) error
}
