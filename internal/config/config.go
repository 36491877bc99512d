package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"
)

const (
	AuthModeNone   = "none"
	AuthModeDev    = "dev"
	AuthModeGoogle = "google"
)

const (
	AIModeMock   = "mock"
	AIModeOpenAI = "openai"
)

// Response modes decide whether a generation endpoint parses the completion
// as JSON or hands the text back untouched.
const (
	ResponseModeStructured = "structured"
	ResponseModeRaw        = "raw"
)

type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PublicBaseURL     string
	PresignTTLSeconds int
	PreferPublicURL   bool
	UsePathStyle      bool
}

// MissingRequired lists the env keys that must be set before the S3 store can
// be built. S3_PUBLIC_BASE_URL is optional: without it images are served
// through presigned URLs.
func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "S3_REGION")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

func (c S3Config) Diagnostics() (level string, code string, msg string) {
	allEmpty := strings.TrimSpace(c.Endpoint) == "" &&
		strings.TrimSpace(c.Region) == "" &&
		strings.TrimSpace(c.Bucket) == "" &&
		strings.TrimSpace(c.AccessKeyID) == "" &&
		strings.TrimSpace(c.SecretAccessKey) == ""

	if allEmpty {
		return "info", "s3_not_configured", "not configured (all empty)"
	}

	missing := c.MissingRequired()
	if len(missing) > 0 {
		return "warn", "s3_partial_config", fmt.Sprintf("partial config, missing=%v", missing)
	}

	return "info", "s3_ready", "ready"
}

// DiagnosticsSummary returns a loggable summary without secrets.
func (c S3Config) DiagnosticsSummary() string {
	return fmt.Sprintf("endpoint=%s region=%s bucket=%s public_base_url=%s presign_ttl=%ds prefer_public_url=%t path_style=%t access_key_id=%s secret_access_key=%s",
		nonEmptyOrDash(c.Endpoint),
		nonEmptyOrDash(c.Region),
		nonEmptyOrDash(c.Bucket),
		nonEmptyOrDash(c.PublicBaseURL),
		c.PresignTTLSeconds,
		c.PreferPublicURL,
		c.UsePathStyle,
		SecretStatus(c.AccessKeyID),
		SecretStatus(c.SecretAccessKey),
	)
}

// SecretStatus reports whether a secret is present without printing it.
func SecretStatus(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

type BlobConfig struct {
	Mode string // local|s3|auto
	S3   S3Config
}

// GenerationConfig holds per-endpoint completion settings.
type GenerationConfig struct {
	ResponseMode string   // structured|raw
	MaxTokens    int      // 0 leaves the provider default
	Temperature  *float64 // nil leaves the provider default
}

type Config struct {
	Env      string // local | staging | prod
	Port     int
	LogLevel string

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string
	DatabaseURLPooled string
	DatabaseURLDirect string

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	RateLimitRPS   int
	RateLimitBurst int

	Blob BlobConfig

	// Screenshot uploads
	UploadMaxMB       int
	UploadAllowedMime string

	PlansPageLimit int

	// Authentication
	AuthMode           string // none | dev | google
	AuthRequired       bool
	JWTSecret          string
	JWTIssuer          string
	JWTTTLMinutes      int
	GoogleClientID     string
	GoogleClientSecret string
	AppURL             string
	SessionSecret      string

	// AI
	AIMode              string // mock | openai
	AITimeoutSeconds    int
	AIStructuredOutputs bool
	OpenAIAPIKey        string
	OpenAIModel         string
	OpenAIBaseURL       string
	Workout             GenerationConfig
	Meal                GenerationConfig

	MetricsEnabled bool

	RunMigrationsOnStartup bool
}

// Load reads the configuration from environment variables.
func Load() *Config {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	port := envInt("PORT", 8080)

	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "debug"
	}

	// ---------- Database ----------
	// Runtime priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	// ---------- CORS / rate limiting ----------
	corsOrigins := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	corsAllowCreds := parseBoolEnv("CORS_ALLOW_CREDENTIALS")

	rateLimitRPS := envInt("RATE_LIMIT_RPS", 0)
	rateLimitBurst := envInt("RATE_LIMIT_BURST", 0)

	// ---------- Blob / S3 ----------
	s3PresignTTL := envInt("S3_PRESIGN_TTL_SECONDS", 900)
	if s3PresignTTL <= 0 {
		s3PresignTTL = 900
	}

	blobCfg := BlobConfig{
		Mode: parseEnum("BLOB_MODE", BlobModeLocal, BlobModeLocal, BlobModeS3, BlobModeAuto),
		S3: S3Config{
			Endpoint:          strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
			Region:            strings.TrimSpace(os.Getenv("S3_REGION")),
			Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
			AccessKeyID:       strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
			SecretAccessKey:   strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
			PublicBaseURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")), "/"),
			PresignTTLSeconds: s3PresignTTL,
			PreferPublicURL:   parseBoolEnv("S3_PREFER_PUBLIC_URL"),
			UsePathStyle:      parseBoolEnv("S3_USE_PATH_STYLE"),
		},
	}

	uploadMaxMB := envInt("UPLOAD_MAX_MB", 5)
	if uploadMaxMB <= 0 {
		uploadMaxMB = 5
	}
	uploadAllowedMime := strings.TrimSpace(os.Getenv("UPLOAD_ALLOWED_MIME"))
	if uploadAllowedMime == "" {
		uploadAllowedMime = "image/png,image/jpeg"
	}

	plansPageLimit := envInt("PLANS_PAGE_LIMIT", 50)
	if plansPageLimit <= 0 {
		plansPageLimit = 50
	}

	// ---------- Auth ----------
	authMode := parseEnum("AUTH_MODE", AuthModeNone, AuthModeNone, AuthModeDev, AuthModeGoogle)
	authRequired := authMode != AuthModeNone && parseBoolEnv("AUTH_REQUIRED")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "change_me"
	}
	if jwtSecret == "change_me" && env != "local" {
		log.Warn().Msg("JWT_SECRET is set to 'change_me' in non-local environment")
	}

	jwtIssuer := strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	if jwtIssuer == "" {
		jwtIssuer = "fitplan"
	}

	// 10080 = 7 days
	jwtTTLMinutes := envInt("JWT_TTL_MINUTES", 10080)
	if jwtTTLMinutes <= 0 {
		jwtTTLMinutes = 10080
	}

	googleClientID := strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID"))
	googleClientSecret := strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET"))
	appURL := strings.TrimRight(strings.TrimSpace(os.Getenv("APP_URL")), "/")
	if appURL == "" {
		appURL = fmt.Sprintf("http://localhost:%d", port)
	}
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = jwtSecret
	}

	if authMode == AuthModeGoogle && (googleClientID == "" || googleClientSecret == "") {
		log.Fatal().Msg("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required when AUTH_MODE=google")
	}

	// ---------- AI ----------
	aiMode := parseEnum("AI_MODE", AIModeMock, AIModeMock, AIModeOpenAI)

	aiTimeoutSeconds := envInt("AI_TIMEOUT_SECONDS", 60)
	if aiTimeoutSeconds <= 0 {
		aiTimeoutSeconds = 60
	}

	openAIAPIKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	openAIModel := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if openAIModel == "" {
		openAIModel = "gpt-3.5-turbo"
	}
	openAIBaseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")), "/")

	if aiMode == AIModeOpenAI && openAIAPIKey == "" {
		log.Fatal().Msg("OPENAI_API_KEY is required when AI_MODE=openai")
	}

	workout := GenerationConfig{
		ResponseMode: parseEnum("WORKOUT_RESPONSE_MODE", ResponseModeStructured, ResponseModeStructured, ResponseModeRaw),
		MaxTokens:    positiveOr(envInt("WORKOUT_MAX_TOKENS", 1000), 1000),
		Temperature:  envOptionalFloat("WORKOUT_TEMPERATURE"),
	}

	mealTemperature := 0.7
	if t := envOptionalFloat("MEAL_TEMPERATURE"); t != nil {
		mealTemperature = *t
	}
	meal := GenerationConfig{
		ResponseMode: parseEnum("MEAL_RESPONSE_MODE", ResponseModeStructured, ResponseModeStructured, ResponseModeRaw),
		MaxTokens:    positiveOr(envInt("MEAL_MAX_TOKENS", 1500), 1500),
		Temperature:  &mealTemperature,
	}

	metricsEnabled := true
	if raw := strings.TrimSpace(os.Getenv("METRICS_ENABLED")); raw != "" {
		metricsEnabled = parseBoolEnv("METRICS_ENABLED")
	}

	return &Config{
		Env:               env,
		Port:              port,
		LogLevel:          logLevel,
		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,

		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: corsAllowCreds,

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,

		Blob: blobCfg,

		UploadMaxMB:       uploadMaxMB,
		UploadAllowedMime: uploadAllowedMime,
		PlansPageLimit:    plansPageLimit,

		AuthMode:           authMode,
		AuthRequired:       authRequired,
		JWTSecret:          jwtSecret,
		JWTIssuer:          jwtIssuer,
		JWTTTLMinutes:      jwtTTLMinutes,
		GoogleClientID:     googleClientID,
		GoogleClientSecret: googleClientSecret,
		AppURL:             appURL,
		SessionSecret:      sessionSecret,

		AIMode:              aiMode,
		AITimeoutSeconds:    aiTimeoutSeconds,
		AIStructuredOutputs: parseBoolEnv("AI_STRUCTURED_OUTPUTS"),
		OpenAIAPIKey:        openAIAPIKey,
		OpenAIModel:         openAIModel,
		OpenAIBaseURL:       openAIBaseURL,
		Workout:             workout,
		Meal:                meal,

		MetricsEnabled: metricsEnabled,

		RunMigrationsOnStartup: parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP"),
	}
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:5173"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// parseEnum reads a lower-cased env value and falls back to defaultVal when
// it is empty or not one of allowed.
func parseEnum(key, defaultVal string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	log.Warn().Str("key", key).Str("value", v).Str("fallback", defaultVal).Msg("unknown config value")
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// envOptionalFloat returns nil when the key is unset or unparsable.
// Values are clamped to the [0, 2] sampling temperature range.
func envOptionalFloat(key string) *float64 {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v = min(max(v, 0), 2)
	return &v
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
