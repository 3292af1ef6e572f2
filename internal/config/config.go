package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	OAuth2Google OAuth2GoogleConfig
	SMTP         SMTPConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	Approval     ApprovalConfig
	Payroll      PayrollConfig
	Attendance   AttendanceConfig
	Storage      StorageConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	AccessExpiration  time.Duration
	RefreshExpiration time.Duration
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether Google sign-in is configured.
func (c OAuth2GoogleConfig) Enabled() bool {
	return c.ClientID != ""
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether the workflow cache is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type RateLimitConfig struct {
	// limiter formatted rates, e.g. "120-M" = 120 requests per minute
	APIRate  string
	AuthRate string
}

// ApprovalConfig controls workflow resolution policy.
type ApprovalConfig struct {
	// Tiebreak decides between a department-only and a position-only
	// workflow match: "department" or "position".
	Tiebreak string
	// NoWorkflowPolicy applies when no workflow matches a submission:
	// "default" (built-in manager -> HR chain), "auto_approve", "reject".
	NoWorkflowPolicy string
	ScanInterval     time.Duration
	CacheTTL         time.Duration
}

// PayrollConfig holds statutory rates applied to gross pay.
type PayrollConfig struct {
	TaxRate            decimal.Decimal
	InsuranceRate      decimal.Decimal
	PensionRate        decimal.Decimal
	OvertimeMultiplier decimal.Decimal
	// Divisor turning a monthly salary into an hourly rate.
	StandardMonthlyHours decimal.Decimal
}

type AttendanceConfig struct {
	// Workday length used when an employee has no shift assigned.
	StandardWorkHours float64
	// Open attendances are auto-closed this many hours after the expected
	// end of day.
	AutoCloseAfterHours int
}

type StorageConfig struct {
	PayslipDir string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hrm"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// JWT configuration
	accessExp, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	refreshExp, err := time.ParseDuration(getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration:  accessExp,
		RefreshExpiration: refreshExp,
	}

	// OAuth2 Google configuration (optional)
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		Scopes:       getEnvSlice("GOOGLE_SCOPES"),
	}

	// SMTP configuration (optional; emails are skipped when unset)
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		FromName: getEnv("SMTP_FROM_NAME", "HRM"),
	}

	// Redis configuration (optional; empty addr disables the cache)
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	config.RateLimit = RateLimitConfig{
		APIRate:  getEnv("RATE_LIMIT_API", "120-M"),
		AuthRate: getEnv("RATE_LIMIT_AUTH", "10-M"),
	}

	// Approval workflow policy
	scanInterval, err := time.ParseDuration(getEnv("APPROVAL_SCAN_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid APPROVAL_SCAN_INTERVAL: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("APPROVAL_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid APPROVAL_CACHE_TTL: %w", err)
	}
	config.Approval = ApprovalConfig{
		Tiebreak:         getEnv("APPROVAL_TIEBREAK", "department"),
		NoWorkflowPolicy: getEnv("APPROVAL_NO_WORKFLOW_POLICY", "default"),
		ScanInterval:     scanInterval,
		CacheTTL:         cacheTTL,
	}

	// Payroll statutory rates (percentages of gross pay)
	taxRate, err := getEnvDecimal("PAYROLL_TAX_RATE", "5")
	if err != nil {
		return nil, err
	}
	insuranceRate, err := getEnvDecimal("PAYROLL_INSURANCE_RATE", "2")
	if err != nil {
		return nil, err
	}
	pensionRate, err := getEnvDecimal("PAYROLL_PENSION_RATE", "3")
	if err != nil {
		return nil, err
	}
	overtimeMultiplier, err := getEnvDecimal("PAYROLL_OVERTIME_MULTIPLIER", "1.5")
	if err != nil {
		return nil, err
	}
	standardHours, err := getEnvDecimal("PAYROLL_STANDARD_MONTHLY_HOURS", "173")
	if err != nil {
		return nil, err
	}
	config.Payroll = PayrollConfig{
		TaxRate:              taxRate,
		InsuranceRate:        insuranceRate,
		PensionRate:          pensionRate,
		OvertimeMultiplier:   overtimeMultiplier,
		StandardMonthlyHours: standardHours,
	}

	workHours, err := strconv.ParseFloat(getEnv("ATTENDANCE_STANDARD_WORK_HOURS", "8"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_STANDARD_WORK_HOURS: %w", err)
	}
	autoCloseAfter, err := strconv.Atoi(getEnv("ATTENDANCE_AUTO_CLOSE_AFTER_HOURS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_AUTO_CLOSE_AFTER_HOURS: %w", err)
	}
	config.Attendance = AttendanceConfig{
		StandardWorkHours:   workHours,
		AutoCloseAfterHours: autoCloseAfter,
	}

	config.Storage = StorageConfig{
		PayslipDir: getEnv("PAYSLIP_STORAGE_DIR", "storage/payslips"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.OAuth2Google.Enabled() {
		if c.OAuth2Google.ClientSecret == "" {
			return fmt.Errorf("GOOGLE_CLIENT_SECRET is required when GOOGLE_CLIENT_ID is set")
		}
		if c.OAuth2Google.RedirectURL == "" {
			return fmt.Errorf("GOOGLE_REDIRECT_URL is required when GOOGLE_CLIENT_ID is set")
		}
		if len(c.OAuth2Google.Scopes) == 0 {
			return fmt.Errorf("GOOGLE_SCOPES is required when GOOGLE_CLIENT_ID is set")
		}
	}
	switch c.Approval.Tiebreak {
	case "department", "position":
	default:
		return fmt.Errorf("APPROVAL_TIEBREAK must be 'department' or 'position', got %q", c.Approval.Tiebreak)
	}
	switch c.Approval.NoWorkflowPolicy {
	case "default", "auto_approve", "reject":
	default:
		return fmt.Errorf("APPROVAL_NO_WORKFLOW_POLICY must be 'default', 'auto_approve' or 'reject', got %q", c.Approval.NoWorkflowPolicy)
	}
	if c.Payroll.StandardMonthlyHours.IsZero() {
		return fmt.Errorf("PAYROLL_STANDARD_MONTHLY_HOURS must be non-zero")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}

func getEnvDecimal(key, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
