package config

import "time"

// Defaults for the release pinned by this build.
const (
	DefaultVersion         = "7.1.0"
	DefaultCDNBaseURL      = "https://developer.salesforce.com/media/salesforce-cli"
	DefaultProductName     = "sfdx-cli"
	DefaultVersionFlag     = "--version"
	DefaultBinaryPath      = "sfdx/bin/sfdx"
	DefaultVersionTimeout  = 10 * time.Second
	DefaultDownloadTimeout = 5 * time.Minute
	DefaultRetries         = 3
)

// EnvCDNBaseURL overrides the CDN base URL.
const EnvCDNBaseURL = "SFDX_INSTALLER_CDN"

// EnvInstallDir overrides the install directory.
const EnvInstallDir = "SFDX_INSTALLER_DIR"

// installDirName is the directory created under the user cache dir when no
// install directory is configured.
const installDirName = "sfdxinstall"
