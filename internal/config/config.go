package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"go.uber.org/zap/zapcore"
	"net/url"
	"os"
	"time"
)

type JsonUrl struct {
	*url.URL
}

func (j *JsonUrl) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	configUrl, err := url.Parse(s)
	j.URL = configUrl
	return err
}

func (j *JsonUrl) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.URL.String())
}

type JsonDuration struct {
	time.Duration
}

func (j *JsonDuration) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	var duration time.Duration
	duration, err = time.ParseDuration(s)
	if err != nil {
		return err
	}
	j.Duration = duration
	return err
}

type Configuration struct {
	Logging struct {
		MaxSize         int
		MaxBackups      int
		MaxAge          int
		Level           zapcore.Level
		ConsoleLogLevel zapcore.Level
		File            string
		HttpAccessFile  string
		DbLogFile       string
		LogAlerts       bool
	}
	ListeningPort    string
	ListeningAddress string
	Database         struct {
		Host            string
		Port            uint
		Username        string
		Password        string
		DatabaseName    string
		MaxIdleConns    int
		MaxOpenConns    int
		ConnMaxLifetime *JsonDuration
	}
	Content struct {
		Dir                     string
		Source                  string
		Sidenavs                []string
		DefaultExcerptSeparator string
		Watch                   bool
		WatchDebounce           *JsonDuration
	}
	BitBucket struct {
		Url         *JsonUrl
		User        string
		Password    string
		AccessToken string
		ProjectName string
		Repository  string
		RootPath    string
	}
	Auth struct {
		SigningKey string
	}
}

var config *Configuration

func InitConfig() *Configuration {
	configFile := flag.String("config", "config.json", "Path to config file (json)")
	flag.Parse()
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "\nUsage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		_, _ = fmt.Fprint(os.Stderr, "\n")
	}

	file, _ := os.Open(*configFile)
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		flag.Usage()
		panic("Error parsing config file: " + err.Error())
	}

	//defaults
	if config.Logging.MaxSize <= 0 {
		config.Logging.MaxSize = 500
	}
	if config.Logging.MaxBackups <= 0 {
		config.Logging.MaxBackups = 3
	}
	if config.Logging.MaxAge <= 0 {
		config.Logging.MaxAge = 28
	}
	if len(config.Content.Dir) == 0 {
		config.Content.Dir = "content"
	}
	if len(config.Content.Source) == 0 {
		config.Content.Source = "filesystem"
	}
	if len(config.Content.DefaultExcerptSeparator) == 0 {
		config.Content.DefaultExcerptSeparator = "\n\n"
	}
	if config.Content.WatchDebounce == nil {
		config.Content.WatchDebounce = &JsonDuration{Duration: 2 * time.Second}
	}
	if config.Database.ConnMaxLifetime == nil {
		config.Database.ConnMaxLifetime = &JsonDuration{Duration: time.Hour}
	}

	return config
}

func Config() *Configuration {
	return config
}

func Port() string {
	return config.ListeningPort
}

func Address() string {
	return config.ListeningAddress
}

func DbHost() string {
	return config.Database.Host
}

func DbName() string {
	return config.Database.DatabaseName
}

func DbUser() string {
	return config.Database.Username
}

func DbPassword() string {
	return config.Database.Password
}

func ContentDir() string {
	return config.Content.Dir
}

func ContentSource() string {
	return config.Content.Source
}
