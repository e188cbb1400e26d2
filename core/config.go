package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the application configuration, loaded once at start-up.
var Conf = NewConfig()

type (
	Config struct {
		Env        string
		Build      string
		Debug      bool
		TestMode   bool
		AppName    string
		CenterName string
		SecretKey  string
		WorkDir    string

		DefaultFromEmail mail.Address
		NotifyEmails     []mail.Address
		RollbarToken     string
		SendgridApiKey   string

		Server   ServerConfig
		Database DatabaseConfig
		Risk     RiskConfig
	}

	ServerConfig struct {
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Driver        string // postgres (lib/pq) | pgx
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// RiskConfig holds the absentee risk thresholds.
	RiskConfig struct {
		StreakThreshold int
		WeeklyWindow    int
		WeeklyLimit     int
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Rollcall")
	v.SetDefault("centerName", "Wings Coaching Center")
	v.SetDefault("secretKey", "k2!v9-zq$e7h+3m)lr8w(t0&ups6c#x4*dy%fj@g1nba=o5")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("notifyEmails", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("serverHost", ":8080")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 12*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 7*24*time.Hour)

	v.SetDefault("dbDriver", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "rollcall")
	v.SetDefault("dbUser", "rollcall")
	v.SetDefault("dbPassword", "rollcall")
	v.SetDefault("dbAdminUser", "postgres")
	v.SetDefault("dbAdminPassword", "postgres")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("riskStreakThreshold", 3)
	v.SetDefault("riskWeeklyWindow", 6)
	v.SetDefault("riskWeeklyLimit", 2)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd, _ := os.Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:            env,
		Build:          v.GetString("build"),
		Debug:          v.GetBool("debug"),
		TestMode:       v.GetBool("testMode"),
		AppName:        v.GetString("appName"),
		CenterName:     v.GetString("centerName"),
		SecretKey:      v.GetString("secretKey"),
		WorkDir:        wd,
		RollbarToken:   v.GetString("rollbarToken"),
		SendgridApiKey: v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Driver:        v.GetString("dbDriver"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Risk: RiskConfig{
			StreakThreshold: v.GetInt("riskStreakThreshold"),
			WeeklyWindow:    v.GetInt("riskWeeklyWindow"),
			WeeklyLimit:     v.GetInt("riskWeeklyLimit"),
		},
	}

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}
	conf.DefaultFromEmail = *from

	if raw := CleanString(v.GetString("notifyEmails")); raw != "" {
		addrs, err := mail.ParseAddressList(raw)
		if err != nil {
			log.Fatalf("config.notifyEmails: %v", err)
		}
		for _, a := range addrs {
			conf.NotifyEmails = append(conf.NotifyEmails, *a)
		}
	}
	return conf
}

func (c *Config) String() string {
	return fmt.Sprintf("%s[%s] env=%s debug=%t", c.AppName, c.Build, c.Env, c.Debug)
}
