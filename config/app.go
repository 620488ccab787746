package config

type App struct {
	Port          string `env:"APP_PORT" default:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	JWTSecret     string `env:"JWT_SECRET,required"`
	TokenTTLHours int    `env:"TOKEN_TTL_HOURS" default:"24"`
	AdminUsername string `env:"ADMIN_USERNAME" default:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" default:"admin123"`
	Env           string `env:"APP_ENV" default:"dev"`
}
