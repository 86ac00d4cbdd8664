// SPDX-License-Identifier: MPL-2.0

package project

import (
	"time"

	"github.com/khatulistiwa/khatdev/pkg/khapp"
)

const (
	// DefaultBuildVersion is recorded in the metadata section.
	DefaultBuildVersion = "1.0.0"
	// DefaultUIFramework is used when the manifest does not name one.
	DefaultUIFramework = "KhatUI"
	// DefaultMinOSVersion is used when the manifest does not name one.
	DefaultMinOSVersion = "1.0.0"
)

// GenerateMetadata derives the build metadata record from the manifest.
func GenerateMetadata(info ManifestInfo, buildTime time.Time, buildVersion string) khapp.BuildMetadata {
	if buildVersion == "" {
		buildVersion = DefaultBuildVersion
	}
	md := khapp.BuildMetadata{
		BuildTime:        buildTime,
		BuildVersion:     buildVersion,
		PackageFormat:    khapp.FormatVersion,
		CulturalElements: info.Cultural.IndonesianElements,
		UIFramework:      info.UIFramework,
		MinOSVersion:     info.MinOSVersion,
	}
	if md.UIFramework == "" {
		md.UIFramework = DefaultUIFramework
	}
	if md.MinOSVersion == "" {
		md.MinOSVersion = DefaultMinOSVersion
	}
	return md
}
