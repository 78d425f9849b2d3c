package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"60"`

	// Register storage: "postgres" or "memory"
	StoreBackend   string `envconfig:"STORE_BACKEND" default:"postgres"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	DatabaseSchema string `envconfig:"DATABASE_SCHEMA" default:"doccontrol"`
	AutoMigrate    bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	DatabaseMaxConns int32 `envconfig:"DATABASE_MAX_CONNS" default:"10"`

	// How long to keep retrying the first database ping.
	DatabaseConnectTimeoutSec uint `envconfig:"DATABASE_CONNECT_TIMEOUT_SEC" default:"30"`

	// File storage: "local", "s3" or "supabase"
	StorageBackend    string `envconfig:"STORAGE_BACKEND" default:"local"`
	UploadDir         string `envconfig:"UPLOAD_DIR" default:"uploads"`
	S3Bucket          string `envconfig:"S3_BUCKET"`
	S3Prefix          string `envconfig:"S3_PREFIX" default:"revisions"`
	SupabaseProjectID string `envconfig:"SUPABASE_PROJECT_ID"`
	SupabaseAPIKey    string `envconfig:"SUPABASE_API_KEY"`
	SupabaseBucket    string `envconfig:"SUPABASE_BUCKET" default:"revisions"`

	// Comma separated origins allowed to call the API from a browser.
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// Auth Configuration
	CookieName       string `envconfig:"SESSION_COOKIE_NAME" default:"session_id"`
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"7200"` // 2 hours

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	BootstrapAdminEmail    string `envconfig:"BOOTSTRAP_ADMIN_EMAIL" default:"admin@example.com"`
	BootstrapAdminPassword string `envconfig:"BOOTSTRAP_ADMIN_PASSWORD" default:"admin"`
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
