package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts. The request timeout must outlive a full multi-image
// generation call, which can take minutes per unit upstream.
const (
	ServerRequestTimeout  = 15 * time.Minute
	ServerReadTimeout     = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 15 * time.Minute

// Credit economy
const (
	RegisterBonusPoints = 10
	CheckInBonusPoints  = 10
	MaxImagesPerRequest = 4
	MaxEditInputImages  = 3
)

// Prompt length bound, matching the text column in the creations table.
const MaxPromptLength = 2000

// InspirationFeedLimit caps the public inspiration gallery feed.
const InspirationFeedLimit = 20

// Credential validation bounds
const (
	MinPasswordLength = 6
	MinAPIKeyLength   = 10
)

// Verification codes
const (
	VerificationCodeLength = 6
	VerificationCodeTTL    = 5 * time.Minute
)

// JWT lifetime
const TokenLifetime = 7 * 24 * time.Hour

// Upload limits
const MaxUploadBodyBytes = 32 << 20 // 32 MiB, covers 3 reference images
