package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	Port    string
	BaseUrl string

	// Shared secrets
	AdminPassword string
	RankingSecret string

	// Object storage (Supabase Storage compatible)
	StorageURL    string
	StorageKey    string
	StorageBucket string

	// Background reconciliation
	ReconcileInterval int
	WorkerCount       int

	// Application metadata
	SiteTitle       string
	SiteDescription string
	Timezone        string
	Debug           bool
	Version         string
}
