package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "STOREFRONT_APP_ENV"
	EnvPort     = "STOREFRONT_APP_PORT"
	EnvLogLevel = "STOREFRONT_LOG_LEVEL"

	EnvDBDSN  = "STOREFRONT_DB_DSN"
	EnvDBHost = "STOREFRONT_DB_HOST"
	EnvDBPort = "STOREFRONT_DB_PORT"
	EnvDBUser = "STOREFRONT_DB_USER"
	EnvDBPass = "STOREFRONT_DB_PASSWORD"
	EnvDBName = "STOREFRONT_DB_NAME"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret  = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer  = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins = "STOREFRONT_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite   = "STOREFRONT_USE_SQLITE"
	EnvAutoMigrate = "STOREFRONT_AUTO_MIGRATE"

	EnvOfferCodeUsagePolicy = "STOREFRONT_OFFER_CODE_USAGE_POLICY"
	EnvOfferCodeUsageWindow = "STOREFRONT_OFFER_CODE_USAGE_WINDOW"
	EnvOfferCodeCacheTTL    = "STOREFRONT_OFFER_CODE_CACHE_TTL"
)

// Offer code usage policies accepted by STOREFRONT_OFFER_CODE_USAGE_POLICY.
const (
	UsagePolicyRedeemed  = "redeemed"
	UsagePolicyWindowed  = "windowed"
	UsagePolicyExhausted = "exhausted"
)

var usagePolicies = []string{UsagePolicyRedeemed, UsagePolicyWindowed, UsagePolicyExhausted}

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
