package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	log "github.com/go-pkgz/lgr"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"github.com/umputun/jobport/app/console"
	"github.com/umputun/jobport/app/portal"
	"github.com/umputun/jobport/app/store"
)

var opts struct {
	DB struct {
		Driver   string `long:"driver" env:"DRIVER" default:"mysql" choice:"mysql" choice:"sqlite" description:"database driver"`
		Host     string `long:"host" env:"HOST" default:"localhost" description:"database server address"`
		Port     int    `long:"port" env:"PORT" default:"3306" description:"database server port"`
		User     string `long:"user" env:"USER" default:"root" description:"database user"`
		Password string `long:"password" env:"PASSWORD" description:"database password"`
		Name     string `long:"name" env:"NAME" default:"job_portal" description:"target database name"`
		File     string `long:"file" env:"FILE" default:"jobport.db" description:"sqlite database file"`
	} `group:"db" namespace:"db" env-namespace:"JOBPORT_DB"`

	Employer struct {
		Name  string `long:"name" env:"NAME" default:"CompanyXYZ" description:"company posting jobs"`
		Email string `long:"email" env:"EMAIL" default:"hr@companyxyz.com" description:"company contact email"`
	} `group:"employer" namespace:"employer" env-namespace:"JOBPORT_EMPLOYER"`

	Conf    string `long:"conf" env:"JOBPORT_CONF" description:"yaml file overriding db settings"`
	Workers int    `long:"workers" env:"JOBPORT_WORKERS" default:"0" description:"max concurrent db operations, 0 for no limit"`

	Log struct {
		Enabled         bool   `long:"enabled" env:"ENABLED" description:"enable logging"`
		Filename        string `long:"file" env:"FILE" description:"log to file instead of stdout"`
		MaxSize         int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max size of log file (MB)"`
		MaxBackups      int    `long:"max-backups" env:"MAX_BACKUPS" default:"7" description:"max number of rotated files"`
		MaxAge          int    `long:"max-age" env:"MAX_AGE" default:"0" description:"max age of rotated files (days)"`
		EnabledCompress bool   `long:"enabled-compress" env:"ENABLED_COMPRESS" description:"enable compression of rotated files"`
	} `group:"log" namespace:"log" env-namespace:"JOBPORT_LOG"`

	Dbg bool `long:"dbg" env:"JOBPORT_DEBUG" description:"debug mode"`
}

var revision = "unknown"

func main() {
	fmt.Printf("jobport %s\n", revision)

	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(2)
	}
	setupLogs()

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	signals(cancel) // handle SIGQUIT, SIGINT and SIGTERM

	cfg, err := makeDBConfig()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
	log.Printf("[DEBUG] db config: driver=%s host=%s port=%d name=%s", cfg.Driver, cfg.Host, cfg.Port, cfg.DBName)

	connector := store.NewConnector(cfg)
	svc := &portal.Service{
		Jobs:   &store.Jobs{Provider: connector},
		Runner: portal.NewRunner(opts.Workers),
	}
	ctrl := &console.Controller{
		Portal:   svc,
		Employer: portal.NewEmployer(opts.Employer.Name, opts.Employer.Email),
		In:       os.Stdin,
		Out:      os.Stdout,
	}

	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[ERROR] terminated with error: %v", err)
		os.Exit(1)
	}
	log.Printf("[INFO] terminated")
}

// makeDBConfig builds the store config from flags and env, with the optional
// yaml file winning for every field it sets.
func makeDBConfig() (store.Config, error) {
	cfg := store.Config{
		Driver:   opts.DB.Driver,
		Host:     opts.DB.Host,
		Port:     opts.DB.Port,
		User:     opts.DB.User,
		Password: opts.DB.Password,
		DBName:   opts.DB.Name,
		File:     opts.DB.File,
	}
	if opts.Conf == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(opts.Conf)
	if err != nil {
		return store.Config{}, fmt.Errorf("failed to read config %s: %w", opts.Conf, err)
	}
	fileCfg := store.Config{}
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return store.Config{}, fmt.Errorf("failed to parse config %s: %w", opts.Conf, err)
	}

	if fileCfg.Driver != "" {
		cfg.Driver = fileCfg.Driver
	}
	if fileCfg.Host != "" {
		cfg.Host = fileCfg.Host
	}
	if fileCfg.Port != 0 {
		cfg.Port = fileCfg.Port
	}
	if fileCfg.User != "" {
		cfg.User = fileCfg.User
	}
	if fileCfg.Password != "" {
		cfg.Password = fileCfg.Password
	}
	if fileCfg.DBName != "" {
		cfg.DBName = fileCfg.DBName
	}
	if fileCfg.File != "" {
		cfg.File = fileCfg.File
	}
	return cfg, nil
}

// setupLogs configures lgr, returns the log destination writer
func setupLogs() io.Writer {
	if !opts.Log.Enabled {
		log.Setup(log.Out(io.Discard), log.Err(io.Discard))
		return os.Stdout
	}

	logOpts := []log.Option{log.Msec}
	if opts.Dbg {
		logOpts = []log.Option{log.Debug, log.Msec, log.CallerFunc, log.CallerPkg, log.CallerFile}
	}

	if opts.Log.Filename != "" {
		fileLogger := &lumberjack.Logger{
			Filename:   opts.Log.Filename,
			MaxSize:    opts.Log.MaxSize,
			MaxBackups: opts.Log.MaxBackups,
			MaxAge:     opts.Log.MaxAge,
			Compress:   opts.Log.EnabledCompress,
		}
		logOpts = append(logOpts, log.Out(fileLogger), log.Err(fileLogger))
		log.Setup(logOpts...)
		return fileLogger
	}

	log.Setup(logOpts...)
	return os.Stdout
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for sig := range sigChan {
			if sig == syscall.SIGQUIT { // catch SIGQUIT and print stack traces
				length := runtime.Stack(stacktrace, true)
				fmt.Println(string(stacktrace[:length]))
				continue
			}
			cancel() // terminate on SIGINT and SIGTERM
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGTERM)
}
