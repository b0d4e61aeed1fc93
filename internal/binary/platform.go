package binary

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/config"
	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/platform"
)

// downloadEntry is one row of the release table.
type downloadEntry struct {
	// suffix completes "sfdx-v<version>-" to the archive name.
	suffix string
	// checksum is the SHA-256 of the archive for the pinned release.
	checksum string
}

// PinnedVersion is the only release downloadTable has checksums for.
const PinnedVersion = config.DefaultVersion

// downloadTable maps exact platform/arch pairs to the archives of
// PinnedVersion.
var downloadTable = map[platform.Spec]downloadEntry{
	{Platform: platform.Darwin, Arch: platform.X64}: {
		suffix:   "darwin-amd64.tar.xz",
		checksum: "677bdd11ada750a492b0d66c7047deed9209218a7204d1385bd94757da779aab",
	},
	{Platform: platform.Linux, Arch: platform.X64}: {
		suffix:   "linux-amd64.tar.xz",
		checksum: "a8c62f2dd950d099c4f869bd8cb68f73fb484068d45dee1f88aec6905db7c577",
	},
	{Platform: platform.Linux, Arch: platform.ARM}: {
		suffix:   "linux-arm.tar.xz",
		checksum: "7c14864954820b02fe2664fd9f3ec2efdcd65e215a1c8eaeee94ffbf24294a97",
	},
	{Platform: platform.Win32, Arch: platform.X64}: {
		suffix:   "windows-amd64.tar.xz",
		checksum: "ebfbc5a1281beb142fb840a11f8e0d5b2f7683dbb8abb176937f0c3b934bbe69",
	},
	{Platform: platform.Win32, Arch: platform.X86}: {
		suffix:   "windows-386.tar.xz",
		checksum: "5ffc29f154c3b9d40f0586fb9112f56a6ee90b286429515f58a76b741715736b",
	},
}

var checksumPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ResolveDownloadSpec returns the archive URL and expected checksum for a
// version and platform/arch, or nil when no checksum is known for that
// combination: the pair has no release or version isn't PinnedVersion.
// Pattern: {baseURL}/sfdx-v{version}-{suffix}
func ResolveDownloadSpec(baseURL, version, platformName, arch string) *DownloadSpec {
	if version != PinnedVersion {
		return nil
	}

	entry, ok := downloadTable[platform.Spec{Platform: platformName, Arch: arch}]
	if !ok {
		return nil
	}

	return &DownloadSpec{
		URL:      fmt.Sprintf("%s/sfdx-v%s-%s", strings.TrimRight(baseURL, "/"), version, entry.suffix),
		Checksum: entry.checksum,
	}
}

// ValidateDownloadTable checks that every checksum in the table is exactly
// 64 lowercase hex characters. A bad row is a build error.
func ValidateDownloadTable() error {
	return validateTable(downloadTable)
}

func validateTable(table map[platform.Spec]downloadEntry) error {
	var bad []string
	for spec, entry := range table {
		if !checksumPattern.MatchString(entry.checksum) {
			bad = append(bad, fmt.Sprintf("%s (%d chars)", spec, len(entry.checksum)))
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("%w: non-conforming checksum for %s", ErrInvalidChecksumTable, strings.Join(bad, ", "))
	}
	return nil
}

// SupportedPlatforms lists the platform/arch pairs that have a release,
// sorted for display.
func SupportedPlatforms() []platform.Spec {
	specs := make([]platform.Spec, 0, len(downloadTable))
	for spec := range downloadTable {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool {
		return specs[i].String() < specs[j].String()
	})
	return specs
}
