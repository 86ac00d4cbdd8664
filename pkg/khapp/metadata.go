// SPDX-License-Identifier: MPL-2.0

package khapp

import "time"

// BuildMetadata is the informational record written to the metadata section.
// None of it is covered by the digest.
type BuildMetadata struct {
	BuildTime        time.Time
	BuildVersion     string
	PackageFormat    uint32
	CulturalElements bool
	UIFramework      string
	MinOSVersion     string
}

// Map returns the metadata in its stored key order.
func (b BuildMetadata) Map() *Map {
	return NewMap().
		Set("build_time", Int(b.BuildTime.Unix())).
		Set("build_version", String(b.BuildVersion)).
		Set("package_format", Int(int64(b.PackageFormat))).
		Set("cultural_elements", Bool(b.CulturalElements)).
		Set("ui_framework", String(b.UIFramework)).
		Set("min_os_version", String(b.MinOSVersion))
}

// MetadataFromMap reads the known fields from a decoded metadata section.
// Fields that are absent or of an unexpected type keep their zero value.
func MetadataFromMap(m *Map) BuildMetadata {
	var b BuildMetadata
	if v, ok := m.Get("build_time"); ok {
		if n, isInt := v.Int64(); isInt {
			b.BuildTime = time.Unix(n, 0).UTC()
		}
	}
	b.BuildVersion = m.GetString("build_version", "")
	if v, ok := m.Get("package_format"); ok {
		if n, isInt := v.Int64(); isInt && n >= 0 {
			b.PackageFormat = uint32(n)
		}
	}
	if v, ok := m.Get("cultural_elements"); ok {
		b.CulturalElements, _ = v.BoolValue()
	}
	b.UIFramework = m.GetString("ui_framework", "")
	b.MinOSVersion = m.GetString("min_os_version", "")
	return b
}
