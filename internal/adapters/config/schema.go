package config

// Stashfile represents the structure of the stash.yaml configuration file.
type Stashfile struct {
	Version string `yaml:"version"`

	MobileBaseURL string `yaml:"mobileBaseURL"`
	AdminBaseURL  string `yaml:"adminBaseURL"`

	Screens    ScreensDTO    `yaml:"screens"`
	Data       DataDTO       `yaml:"data"`
	ReadModels ReadModelsDTO `yaml:"readModels"`
	Prefetch   PrefetchDTO   `yaml:"prefetch"`
}

// ScreensDTO configures the screen-definition cache.
type ScreensDTO struct {
	Capacity int `yaml:"capacity"`
	// DefaultTTLSeconds set to an explicit zero disables screen caching.
	DefaultTTLSeconds *int `yaml:"defaultTTLSeconds"`
}

// DataDTO configures the remote data cache.
type DataDTO struct {
	Capacity    int    `yaml:"capacity"`
	LimitParam  string `yaml:"limitParam"`
	OffsetParam string `yaml:"offsetParam"`
	PageSize    int    `yaml:"pageSize"`
}

// ReadModelsDTO configures the read-model store.
type ReadModelsDTO struct {
	Capacity   int `yaml:"capacity"`
	TTLSeconds int `yaml:"ttlSeconds"`
}

// PrefetchDTO configures the look-ahead prefetcher.
type PrefetchDTO struct {
	Threshold int `yaml:"threshold"`
}
