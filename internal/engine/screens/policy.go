package screens

import (
	"time"

	"go.trai.ch/stash/internal/core/domain"
)

// PatternTTL resolves the cache lifetime for a screen pattern. A zero
// defaultTTL disables caching globally and wins over everything else; login
// screens are never cached regardless of the default.
func PatternTTL(p domain.Pattern, defaultTTL time.Duration) time.Duration {
	if defaultTTL == 0 {
		return 0
	}

	switch p {
	case domain.PatternDashboard:
		return 60 * time.Second
	case domain.PatternList:
		return 300 * time.Second
	case domain.PatternForm:
		return 3600 * time.Second
	case domain.PatternDetail:
		return 600 * time.Second
	case domain.PatternSettings:
		return 1800 * time.Second
	case domain.PatternLogin:
		return 0
	case domain.PatternSearch, domain.PatternProfile, domain.PatternModal,
		domain.PatternNotification, domain.PatternOnboarding, domain.PatternEmptyState:
		return 300 * time.Second
	default:
		return 300 * time.Second
	}
}
