package core

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains all of the configuration options available to any of the
// server components.
type Config struct {
	// Hostname or IP address on which the servers will listen for connections.
	Hostname string `mapstructure:"hostname"`
	// IP broadcast to clients for the peer-to-peer relay handshake.
	ExternalIP string `mapstructure:"external_ip"`
	// Maximum number of players that may be logged in at once.
	PlayerLimit int `mapstructure:"player_limit"`
	// Minimum account security level required to log in to this server.
	SecurityLevel int `mapstructure:"security_level"`
	// Full path to file to which logs will be written. Blank will write to stdout.
	LogFilePath string `mapstructure:"log_file_path"`
	// Minimum level of a log required to be written. Options: debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`

	GameServer struct {
		// Port on which the GAME server will listen.
		Port int `mapstructure:"port"`
	} `mapstructure:"game_server"`

	ChatServer struct {
		// Port on which the CHAT server will listen.
		Port int `mapstructure:"port"`
	} `mapstructure:"chat_server"`

	RelayServer struct {
		// Port on which the RELAY server will listen.
		Port int `mapstructure:"port"`
	} `mapstructure:"relay_server"`

	Database struct {
		// Hostname of the Postgres database instance.
		Host string `mapstructure:"host"`
		// Port on db_host on which the Postgres instance is accepting connections.
		Port int `mapstructure:"port"`
		// Name of the database in Postgres for slipgate.
		Name string `mapstructure:"name"`
		// Username and password of a user with full RW privileges to ${db_name}.
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		// Set to verify-full if the Postgres instance supports SSL.
		SSLMode string `mapstructure:"sslmode"`
	} `mapstructure:"database"`

	Redis struct {
		// URL of the redis instance holding auth session tickets.
		URL string `mapstructure:"url"`
	} `mapstructure:"redis"`

	Maintenance struct {
		// Period of the maintenance tick.
		TickInterval time.Duration `mapstructure:"tick_interval"`
		// How long a connection may sit at the pre-login state before it is reaped.
		LoginGraceWindow time.Duration `mapstructure:"login_grace_window"`
		// Interval between full-roster player saves.
		SaveInterval time.Duration `mapstructure:"save_interval"`
	} `mapstructure:"maintenance"`

	Game struct {
		// Number of channels the server advertises.
		NumChannels int `mapstructure:"num_channels"`
		// Maximum number of players per channel.
		ChannelPlayerLimit int `mapstructure:"channel_player_limit"`
		// Starting state for players connecting for the first time.
		StartLevel int  `mapstructure:"start_level"`
		StartPEN   uint `mapstructure:"start_pen"`
		StartAP    uint `mapstructure:"start_ap"`
	} `mapstructure:"game"`

	Debugging struct {
		// Enable extra info-providing mechanisms for the server.
		PprofEnabled bool `mapstructure:"pprof_enabled"`
		// Port on which a pprof server will be started if debug mode is enabled.
		PprofPort int `mapstructure:"pprof_port"`
		// Log packets to stdout.
		PacketLoggingEnabled bool `mapstructure:"packet_logging_enabled"`
		// Enable database-level query logging.
		DatabaseLoggingEnabled bool `mapstructure:"database_logging_enabled"`
	} `mapstructure:"debugging"`
}

const envVarPrefix = "SLIPGATE"

// LoadConfig initializes Viper with the contents of the config file under configPath.
func LoadConfig(configPath string) *Config {
	viper.AddConfigPath(configPath)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix(envVarPrefix)
	viper.AutomaticEnv()

	setConfigDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if errors.Is(err, viper.ConfigFileNotFoundError{}) {
			fmt.Printf("error reading config file: no config file in path %s", configPath)
		} else {
			fmt.Printf("error reading config file: %v", err)
		}
		os.Exit(1)
	}

	// This allows us to set nested yaml config options through environment
	// variables. For example, database.host can be set using: <envVarPrefix>_DATABASE_HOST
	for _, k := range viper.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := viper.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			fmt.Printf("error binding %s to %s", k, envVarPrefix+"_"+envVar)
			os.Exit(1)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		fmt.Printf("error unmarshaling config object: %v", err)
		os.Exit(1)
	}
	return config
}

func setConfigDefaults() {
	viper.SetDefault("maintenance.tick_interval", 100*time.Millisecond)
	viper.SetDefault("maintenance.login_grace_window", 5*time.Minute)
	viper.SetDefault("maintenance.save_interval", time.Minute)
	viper.SetDefault("game.num_channels", 4)
	viper.SetDefault("game.channel_player_limit", 300)
	viper.SetDefault("game.start_level", 1)
}

const databaseURITemplate = "host=%s port=%d dbname=%s user=%s password=%s sslmode=%s"

// DatabaseURL returns a database URL generated from the provided config values.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		databaseURITemplate,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Username,
		c.Database.Password,
		c.Database.SSLMode,
	)
}
