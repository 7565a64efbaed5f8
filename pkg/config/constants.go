package config

const (
	EnvPrefix = "COLLEGEBITES"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "COLLEGEBITES_DB_DSN"
	EnvDBHost = "COLLEGEBITES_DB_HOST"
	EnvDBUser = "COLLEGEBITES_DB_USER"
	EnvDBName = "COLLEGEBITES_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
