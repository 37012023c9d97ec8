package domain

import (
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Pattern classifies a screen definition. The pattern drives how long a
// screen may be cached.
type Pattern string

const (
	PatternDashboard    Pattern = "dashboard"
	PatternList         Pattern = "list"
	PatternForm         Pattern = "form"
	PatternDetail       Pattern = "detail"
	PatternSettings     Pattern = "settings"
	PatternLogin        Pattern = "login"
	PatternSearch       Pattern = "search"
	PatternProfile      Pattern = "profile"
	PatternModal        Pattern = "modal"
	PatternNotification Pattern = "notification"
	PatternOnboarding   Pattern = "onboarding"
	PatternEmptyState   Pattern = "emptyState"
)

// ParsePattern converts a wire string into a Pattern.
func ParsePattern(s string) (Pattern, error) {
	switch p := Pattern(s); p {
	case PatternDashboard, PatternList, PatternForm, PatternDetail,
		PatternSettings, PatternLogin, PatternSearch, PatternProfile,
		PatternModal, PatternNotification, PatternOnboarding, PatternEmptyState:
		return p, nil
	default:
		return "", zerr.With(ErrUnknownPattern, "pattern", s)
	}
}

// Screen is a parsed server-driven screen definition. The caching layer
// treats the template as opaque; only Pattern influences cache policy.
//
// ETag is present when the screen was fetched individually over HTTP.
// BundleVersion is present when the screen was seeded from a sync bundle;
// the two provenance paths are mutually exclusive.
type Screen struct {
	Key        string  `json:"screenKey"`
	Name       string  `json:"screenName"`
	Pattern    Pattern `json:"pattern"`
	HandlerKey string  `json:"handlerKey"`
	Version    int     `json:"version"`
	Template   Value   `json:"template"`
	SlotData   Value   `json:"slotData"`

	ETag          string `json:"-"`
	BundleVersion string `json:"-"`
}

// BundleScreen is the sync-bundle descriptor for one screen. Template is
// carried opaquely and re-decoded into the internal Screen shape during
// seeding.
type BundleScreen struct {
	ScreenKey  string `json:"screenKey"`
	ScreenName string `json:"screenName"`
	Pattern    string `json:"pattern"`
	HandlerKey string `json:"handlerKey"`
	Version    string `json:"version"`
	Template   Value  `json:"template"`
	SlotData   Value  `json:"slotData"`
}

// MajorVersion parses the leading numeric segment of the bundle's dotted
// version string ("2.1.0" => 2).
func (b BundleScreen) MajorVersion() (int, error) {
	head, _, _ := strings.Cut(b.Version, ".")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "invalid bundle version"), "version", b.Version)
	}
	return n, nil
}
