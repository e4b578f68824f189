package config

type Config struct {
	Environment string
	Port        string

	MongoURI           string
	MongoDatabase      string
	PostgresConnString string
	RedisURL           string

	JWTSecret         string
	BasicAuthUsername string
	BasicAuthPassword string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool

	// requests per window, formatted for the limiter (e.g. "100-M")
	RateLimit string
	LogDir    string

	// empty means any origin is reflected back
	CORSOrigins []string
}
