package cmd

import "time"

// Config carries every runtime setting of the service. Values come from the
// environment; see cmd/app/main.go for the variable names.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaHosts             []string
	KafkaNotificationTopic string
	KafkaOrderChangedTopic string

	RedisAddr     string
	RedisPassword string

	JWTSecret         string
	PaymentServiceURL string

	OtpTTL                     time.Duration
	OtpLockCoolDown            time.Duration
	AssignmentAcceptanceWindow time.Duration
	PartnerSearchRadiusKm      float64
}
