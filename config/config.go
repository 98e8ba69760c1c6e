package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PhotoFailurePolicy decides what a failed individual photo upload does to a
// wizard submission. "lenient" logs and keeps going, "strict" aborts.
type PhotoFailurePolicy string

const (
	PhotoLenient PhotoFailurePolicy = "lenient"
	PhotoStrict  PhotoFailurePolicy = "strict"
)

type Config struct {
	WebOrigin string
	RPID      string
	RPOrigins []string

	RedisAddr string
	RedisPwd  string

	SessionTTL time.Duration
	WizardTTL  time.Duration

	JWTSecret string
	JWTIssuer string

	// Identity broker (federated login)
	BrokerTokenURL     string
	BrokerDirectoryURL string
	BrokerClientID     string
	BrokerClientSecret string
	// group name -> role (admin/gestor); anything else maps to agente
	BrokerAdminGroup  string
	BrokerGestorGroup string

	// Blob object store
	StorageURL    string
	StorageBucket string
	StorageKey    string

	PhotoPolicy PhotoFailurePolicy

	BootstrapEmail string
}

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process env")
	}
}

func Load() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}

	ttl := 10 * time.Minute
	if d, err := time.ParseDuration(get("SESSION_TTL_SECONDS", "600") + "s"); err == nil {
		ttl = d
	}
	wizTTL := 2 * time.Hour
	if d, err := time.ParseDuration(get("WIZARD_TTL_SECONDS", "7200") + "s"); err == nil {
		wizTTL = d
	}

	originsCSV := get("RP_ORIGINS", "http://localhost:3000")
	var origins []string
	for _, o := range strings.Split(originsCSV, ",") {
		if s := strings.TrimSpace(o); s != "" {
			origins = append(origins, s)
		}
	}

	policy := PhotoLenient
	if get("PHOTO_FAILURE_POLICY", "lenient") == string(PhotoStrict) {
		policy = PhotoStrict
	}

	return Config{
		WebOrigin:  get("WEB_ORIGIN", "http://localhost:3000"),
		RPID:       get("RP_ID", "localhost"),
		RPOrigins:  origins,
		RedisAddr:  get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:   os.Getenv("REDIS_PASSWORD"),
		SessionTTL: ttl,
		WizardTTL:  wizTTL,

		JWTSecret: get("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer: get("JWT_ISSUER", "frota-custodia"),

		BrokerTokenURL:     os.Getenv("BROKER_TOKEN_URL"),
		BrokerDirectoryURL: os.Getenv("BROKER_DIRECTORY_URL"),
		BrokerClientID:     os.Getenv("BROKER_CLIENT_ID"),
		BrokerClientSecret: os.Getenv("BROKER_CLIENT_SECRET"),
		BrokerAdminGroup:   get("BROKER_ADMIN_GROUP", "frota-admin"),
		BrokerGestorGroup:  get("BROKER_GESTOR_GROUP", "frota-gestores"),

		StorageURL:    os.Getenv("STORAGE_URL"),
		StorageBucket: get("STORAGE_BUCKET", "fotos-viaturas"),
		StorageKey:    os.Getenv("STORAGE_SERVICE_KEY"),

		PhotoPolicy: policy,

		BootstrapEmail: os.Getenv("BOOTSTRAP_EMAIL"),
	}
}
