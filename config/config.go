package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMODE  string `mapstructure:"SSLMODE"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Upstream struct {
		OpenWeather struct {
			BaseURL    string `mapstructure:"baseURL"`
			GeoBaseURL string `mapstructure:"geoBaseURL"`
			APIKey     string `mapstructure:"apiKey"`
		} `mapstructure:"openweather"`
		Overpass struct {
			BaseURL string `mapstructure:"baseURL"`
		} `mapstructure:"overpass"`
		News struct {
			BaseURL    string `mapstructure:"baseURL"`
			APIKey     string `mapstructure:"apiKey"`
			DailyLimit int    `mapstructure:"dailyLimit"`
			PageSize   int    `mapstructure:"pageSize"`
		} `mapstructure:"news"`
		Gemini struct {
			Model string `mapstructure:"model"`
		} `mapstructure:"gemini"`
	} `mapstructure:"upstream"`
	Spiral struct {
		RadiusKm    float64 `mapstructure:"radiusKm"`
		NumPoints   int     `mapstructure:"numPoints"`
		Concurrency int     `mapstructure:"concurrency"`
	} `mapstructure:"spiral"`
	Cache struct {
		NewsTTL   time.Duration `mapstructure:"newsTTL"`
		SpiralTTL time.Duration `mapstructure:"spiralTTL"`
	} `mapstructure:"cache"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")
	v.AddConfigPath("/usr/local/bin")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	// Secrets come from the environment, never from the YAML
	if key := os.Getenv("OPENWEATHERMAP_API_KEY"); key != "" {
		config.Upstream.OpenWeather.APIKey = key
	}
	if key := os.Getenv("NEWS_API_KEY"); key != "" {
		config.Upstream.News.APIKey = key
	}

	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
