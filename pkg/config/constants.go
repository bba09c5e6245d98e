package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "GIGWORKS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "GIGWORKS_DB_DSN"
	EnvDBHost = "GIGWORKS_DB_HOST"
	EnvDBUser = "GIGWORKS_DB_USER"
	EnvDBName = "GIGWORKS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
