package config

// EnvPrefix is the prefix shared by every environment variable the service reads.
const EnvPrefix = "GLAMSPOT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "GLAMSPOT_DB_DSN"
	EnvDBHost = "GLAMSPOT_DB_HOST"
	EnvDBUser = "GLAMSPOT_DB_USER"
	EnvDBName = "GLAMSPOT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
