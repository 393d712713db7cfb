package config

const (
	defaultRegistryURL      = "https://registry.npmjs.org"
	defaultUpstream         = "pkg:npm/electron"
	defaultPublished        = "pkg:npm/electron-types"
	defaultFeedURL          = "https://releases.electronjs.org/releases.json"
	defaultTopMajors        = 3
	defaultOutputDir        = "dist"
	defaultArtifactPath     = "package/electron.d.ts"
	defaultArtifactName     = "electron.d.ts"
	defaultMetadataName     = "version.json"
	defaultMinArtifactBytes = 1000
	defaultManifest         = "package.json"
	defaultUserAgent        = "electron-types"
	defaultTimeoutSeconds   = 30
	defaultDownloadTimeout  = 600
	defaultMaxRetries       = 5
	defaultRetryDelayMillis = 500
	defaultBreakerThreshold = 5
	defaultStaleAfterHours  = 24
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
)

var defaultRequiredDeclarations = []string{
	"declare namespace Electron",
	"interface App",
	"interface BrowserWindow",
	"interface WebContents",
	"interface IpcMain",
	"interface IpcRenderer",
}

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		Registry: Registry{
			URL:       defaultRegistryURL,
			Upstream:  defaultUpstream,
			Published: defaultPublished,
		},
		Feed: Feed{URL: defaultFeedURL},
		Catalog: Catalog{
			TopMajors: defaultTopMajors,
		},
		Output: Output{
			Dir:                  defaultOutputDir,
			ArtifactPath:         defaultArtifactPath,
			ArtifactName:         defaultArtifactName,
			MetadataName:         defaultMetadataName,
			MinArtifactBytes:     defaultMinArtifactBytes,
			RequiredDeclarations: append([]string(nil), defaultRequiredDeclarations...),
			Manifest:             defaultManifest,
		},
		HTTP: HTTP{
			UserAgent:              defaultUserAgent,
			TimeoutSeconds:         defaultTimeoutSeconds,
			DownloadTimeoutSeconds: defaultDownloadTimeout,
			MaxRetries:             defaultMaxRetries,
			RetryDelayMillis:       defaultRetryDelayMillis,
			BreakerThreshold:       defaultBreakerThreshold,
		},
		Workspace: Workspace{
			StaleAfterHours: defaultStaleAfterHours,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
