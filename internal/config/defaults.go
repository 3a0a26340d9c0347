package config

const (
	defaultConfigPath        = "~/.config/mangashelf/config.toml"
	defaultLibraryDir        = ""
	defaultStateDir          = "~/.local/share/mangashelf"
	defaultLogDir            = "~/.local/share/mangashelf/logs"
	defaultLedgerPath        = "~/.local/share/mangashelf/ledger.db"
	defaultTagFormat         = TagFormatSizeCRC
	defaultIntegrityCommand  = "7z"
	defaultIntegrityTimeout  = 600
	defaultFolderScheme      = FolderSchemeTitle
	defaultVerifiedSuffix    = "[v]"
	defaultNtfyTimeout       = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
	libraryDirEnvironmentKey = "MANGASHELF_LIBRARY_DIR"
)

// Tag format names accepted by tagging.format.
const (
	TagFormatSizeCRC = "size_crc"
	TagFormatCRC     = "crc"
	TagFormatBare    = "bare"
)

// Folder naming schemes accepted by organize.folder_scheme.
const (
	FolderSchemeTitle    = "title"
	FolderSchemeDetailed = "detailed"
)

func defaultArchiveExtensions() []string {
	return []string{".zip", ".rar", ".7z", ".cbz", ".cbr"}
}

func defaultOrganizeExtensions() []string {
	return []string{".cbz", ".cbr"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
		},
		Scan: Scan{
			Extensions: defaultArchiveExtensions(),
		},
		Tagging: Tagging{
			Format:       defaultTagFormat,
			AcceptLegacy: true,
		},
		Integrity: Integrity{
			Command:        defaultIntegrityCommand,
			Args:           []string{"t"},
			TimeoutSeconds: defaultIntegrityTimeout,
		},
		Organize: Organize{
			Extensions:      defaultOrganizeExtensions(),
			FolderScheme:    defaultFolderScheme,
			VerifiedSuffix:  defaultVerifiedSuffix,
			RemoveEmptyDirs: true,
		},
		Ledger: Ledger{
			Enabled: true,
			Path:    defaultLedgerPath,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
