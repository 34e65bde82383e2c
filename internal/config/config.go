// config.go
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDBName       string
	RabbitURL         string
	JWTSecret         string
	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	Port              string
}

func Load() *Config {
	// .env es opcional; en contenedores las variables vienen del entorno.
	_ = godotenv.Load()

	return &Config{
		MongoURI:          getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName:       getEnv("MONGO_DB_NAME", "freshbasket_db"),
		RabbitURL:         getEnv("RABBIT_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayBaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
		Port:              getEnv("PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
