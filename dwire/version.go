package dwire

import (
	"strings"

	"github.com/pkg/errors"
)

// Version is a declared DXF format version. Versions are ordered, so gates
// can be written as v >= R13.
type Version int

// DXF versions understood by this package.
const (
	_ Version = iota
	R10
	R11
	R12
	R13
	R14
	R2000
	R2004
	R2007
	R2010
	R2013
	R2018
)

var ErrUnknownVersion = errors.New("unknown DXF version")

var versionNames = map[Version]string{
	R10:   "R10",
	R11:   "R11",
	R12:   "R12",
	R13:   "R13",
	R14:   "R14",
	R2000: "R2000",
	R2004: "R2004",
	R2007: "R2007",
	R2010: "R2010",
	R2013: "R2013",
	R2018: "R2018",
}

// R11 and R12 share AC1009; it parses as R12.
var acadVers = map[Version]string{
	R10:   "AC1006",
	R11:   "AC1009",
	R12:   "AC1009",
	R13:   "AC1012",
	R14:   "AC1014",
	R2000: "AC1015",
	R2004: "AC1018",
	R2007: "AC1021",
	R2010: "AC1024",
	R2013: "AC1027",
	R2018: "AC1032",
}

// ParseVersion parses either a release name ("R14", "r2000") or a
// $ACADVER header value ("AC1014").
func ParseVersion(s string) (Version, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if strings.HasPrefix(s, "AC") {
		if s == "AC1009" {
			return R12, nil
		}
		for v, acad := range acadVers {
			if acad == s {
				return v, nil
			}
		}
		return 0, errors.Wrapf(ErrUnknownVersion, "%q", s)
	}
	for v, name := range versionNames {
		if name == s {
			return v, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownVersion, "%q", s)
}

func (v Version) String() string {
	if name, ok := versionNames[v]; ok {
		return name
	}
	return "unknown"
}

// ACADVer returns the $ACADVER header value for v.
func (v Version) ACADVer() string {
	return acadVers[v]
}

func (v Version) Valid() bool {
	_, ok := versionNames[v]
	return ok
}
