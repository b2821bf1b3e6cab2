package featureflag

import (
	"sort"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

const ErrTypeUnknownFlag = "unknown_feature_flag"

// FeatureFlag is a lookup map for features that are enabled or disabled.
type FeatureFlag map[Flag]struct{}

// New returns feature flags initialized with a list of flag names. Names are
// case insensitive and empty names are skipped.
func New(flags []string) FeatureFlag {
	featureFlag := make(FeatureFlag)
	for _, f := range flags {
		if flag := normalize(f); flag != "" {
			featureFlag[flag] = struct{}{}
		}
	}
	return featureFlag
}

// Parse is like New but fails on flags that are not known.
func Parse(flags []string) (FeatureFlag, error) {
	featureFlag := New(flags)
	for flag := range featureFlag {
		if _, ok := knownFlags[flag]; !ok {
			return nil, errors.New("unknown feature flag").
				WithType(ErrTypeUnknownFlag).
				WithTag("flag", string(flag))
		}
	}
	return featureFlag, nil
}

func (f FeatureFlag) IsSet(flag Flag) bool {
	_, ok := f[flag]
	return ok
}

// IfSet runs function `do` if flag is set in the feature flags.
func (f FeatureFlag) IfSet(flag Flag, do func()) {
	if f.IsSet(flag) {
		do()
	}
}

// IfNotSet runs function `do` if flag is not set in the feature flags.
func (f FeatureFlag) IfNotSet(flag Flag, do func()) {
	if !f.IsSet(flag) {
		do()
	}
}

// Flags returns the set flags, sorted.
func (f FeatureFlag) Flags() []string {
	flags := make([]string, 0, len(f))
	for flag := range f {
		flags = append(flags, string(flag))
	}
	sort.Strings(flags)
	return flags
}

func normalize(s string) Flag {
	return Flag(strings.ToUpper(strings.TrimSpace(s)))
}
