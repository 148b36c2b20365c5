package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	StoreBackend   string // "redis" | "dynamo"
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTable    string

	VerificationTTL             time.Duration
	VerificationKeyPrefix       string
	VerificationKeyDigest       string
	VerificationMessageTemplate string

	Notifier              string // "sns" | "aliyun" | "kafka"
	SNSRegion             string
	AliyunRegion          string
	AliyunAccessKeyID     string
	AliyunAccessKeySecret string
	AliyunSignName        string
	AliyunTemplateCode    string
	KafkaBrokers          []string
	KafkaTopic            string

	BreakerEnabled     bool
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	AllowedOrigins []string // CORS allowed origins
	TrustedProxies []string // addresses or CIDRs whose forwarding headers are honoured
}

// Load reads all configuration from environment variables.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		AppPort:  v.GetString("APP_PORT"),
		AppEnv:   v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),

		StoreBackend:   strings.ToLower(v.GetString("STORE_BACKEND")),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		AWSRegion:      v.GetString("AWS_REGION"),
		AWSEndpointURL: v.GetString("AWS_ENDPOINT_URL"),
		AWSAccessKeyID: v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:   v.GetString("AWS_SECRET_ACCESS_KEY"),
		DynamoTable:    v.GetString("DYNAMO_TABLE_VALIDITY"),

		VerificationTTL:             time.Duration(v.GetInt("VERIFICATION_TTL_SECONDS")) * time.Second,
		VerificationKeyPrefix:       v.GetString("VERIFICATION_KEY_PREFIX"),
		VerificationKeyDigest:       v.GetString("VERIFICATION_KEY_DIGEST"),
		VerificationMessageTemplate: v.GetString("VERIFICATION_MESSAGE_TEMPLATE"),

		Notifier:              strings.ToLower(v.GetString("NOTIFIER")),
		SNSRegion:             v.GetString("SNS_REGION"),
		AliyunRegion:          v.GetString("ALIYUN_REGION"),
		AliyunAccessKeyID:     v.GetString("ALIYUN_ACCESS_KEY_ID"),
		AliyunAccessKeySecret: v.GetString("ALIYUN_ACCESS_KEY_SECRET"),
		AliyunSignName:        v.GetString("ALIYUN_SIGN_NAME"),
		AliyunTemplateCode:    v.GetString("ALIYUN_TEMPLATE_CODE"),
		KafkaBrokers:          splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:            v.GetString("KAFKA_TOPIC"),

		BreakerEnabled:     v.GetBool("BREAKER_ENABLED"),
		BreakerMaxFailures: v.GetUint32("BREAKER_MAX_FAILURES"),
		BreakerTimeout:     time.Duration(v.GetInt("BREAKER_TIMEOUT_SECONDS")) * time.Second,

		JWTPrivateKeyPath: v.GetString("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:  v.GetString("JWT_PUBLIC_KEY_PATH"),
		JWTExpiry:         time.Duration(v.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,

		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_BACKEND", "redis")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("DYNAMO_TABLE_VALIDITY", "mobile_verifications")
	v.SetDefault("VERIFICATION_TTL_SECONDS", 120)
	v.SetDefault("VERIFICATION_KEY_PREFIX", "mobile_verification_")
	v.SetDefault("VERIFICATION_KEY_DIGEST", "sha1")
	v.SetDefault("NOTIFIER", "sns")
	v.SetDefault("SNS_REGION", "us-east-1")
	v.SetDefault("ALIYUN_REGION", "cn-hangzhou")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "sms.outbound")
	v.SetDefault("BREAKER_ENABLED", true)
	v.SetDefault("BREAKER_MAX_FAILURES", 5)
	v.SetDefault("BREAKER_TIMEOUT_SECONDS", 30)
	v.SetDefault("JWT_PRIVATE_KEY_PATH", "./private_key.pem")
	v.SetDefault("JWT_PUBLIC_KEY_PATH", "./public_key.pem")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("ALLOWED_ORIGINS", "*")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
