package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// DBFile is the path to the harvest SQLite database
	DBFile string
	// BaseURL is the WorldCat site root records are fetched from
	BaseURL string
	// UserAgent identifies the harvester to the site
	UserAgent string
	// RequestsPerSecond paces outgoing page fetches
	RequestsPerSecond float64
	// Workers is the number of concurrent fetch pipelines
	Workers int
	// CoverDir is where downloaded cover images are stored
	CoverDir string
)

// InitConfig initializes the global configuration from viper.
func InitConfig() {
	viper.SetDefault("db.file", "./worldcat.db")
	viper.SetDefault("worldcat.baseurl", "https://www.worldcat.org")
	viper.SetDefault("worldcat.useragent", "bibcat/1.0")
	viper.SetDefault("harvest.ratelimit", 1.0)
	viper.SetDefault("harvest.workers", 2)
	viper.SetDefault("covers.dir", "./covers/")

	DBFile = viper.GetString("db.file")
	BaseURL = viper.GetString("worldcat.baseurl")
	UserAgent = viper.GetString("worldcat.useragent")
	RequestsPerSecond = viper.GetFloat64("harvest.ratelimit")
	Workers = viper.GetInt("harvest.workers")
	CoverDir = viper.GetString("covers.dir")
}
